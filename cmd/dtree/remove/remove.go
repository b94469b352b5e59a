// Package removecmder provides the remove command for deleting leaf nodes.
package removecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
)

const removeLongDesc string = `Remove a leaf node from the active session's tree.

Only leaves can be removed: deleting a node with children would silently
orphan a subtree, so such a remove is rejected. The root cannot be removed.
Removed node ids are retired and never reused within the session.

The tree is checkpointed after the change.

Examples:
  dtree remove a1b2c3d4`

const removeShortDesc string = "Remove a leaf node"

type removeCommander struct {
	project string
}

func NewRemoveCmd() *cobra.Command {
	cmder := &removeCommander{}

	cmd := &cobra.Command{
		Use:   "remove <node-id>",
		Short: removeShortDesc,
		Long:  removeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			return cmder.run(settings, args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)

	return cmd
}

func (c *removeCommander) run(settings *wire.Settings, nodeID string) error {
	manager, err := settings.Attach()
	if err != nil {
		return err
	}

	if err := manager.Tree().RemoveLeaf(nodeID); err != nil {
		return err
	}

	if err := manager.Checkpoint(); err != nil {
		return err
	}

	fmt.Printf("\n  %s Removed %s\n\n", cliui.SuccessMark, cliui.IDStyle.Render(nodeID))

	return nil
}
