// Package movecmder provides the move command for reattaching a subtree
// under a new parent.
package movecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
)

const moveLongDesc string = `Move a node (and its whole subtree) under a new parent.

The move is rejected when it would create a cycle: a node cannot be moved
under itself or under any of its own descendants, and the root cannot be
moved at all. A rejected move leaves the tree untouched.

The tree is checkpointed after the change.

Examples:
  dtree move a1b2c3d4 root
  dtree move a1b2c3d4 e5f6a7b8`

const moveShortDesc string = "Move a subtree under a new parent"

type moveCommander struct {
	project string
}

func NewMoveCmd() *cobra.Command {
	cmder := &moveCommander{}

	cmd := &cobra.Command{
		Use:   "move <node-id> <new-parent-id>",
		Short: moveShortDesc,
		Long:  moveLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			return cmder.run(settings, args[0], args[1])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)

	return cmd
}

func (c *moveCommander) run(settings *wire.Settings, nodeID, newParentID string) error {
	manager, err := settings.Attach()
	if err != nil {
		return err
	}

	mut := manager.Tree()
	if newParentID == "root" {
		newParentID = mut.Store().RootID()
	}

	if err := mut.Move(nodeID, newParentID); err != nil {
		return err
	}

	if err := manager.Checkpoint(); err != nil {
		return err
	}

	fmt.Printf("\n  %s Moved %s under %s\n\n",
		cliui.SuccessMark,
		cliui.IDStyle.Render(nodeID),
		cliui.IDStyle.Render(newParentID),
	)

	return nil
}
