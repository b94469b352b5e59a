// Package addcmder provides the add command for creating a node under an
// existing parent in the active session's tree.
package addcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
)

const addLongDesc string = `Add a node under an existing parent in the active session's tree.

The parent is referenced by its id as shown by "dtree show". The literal
parent "root" resolves to the tree's root node. The optional body may carry
inline markers (Decision:, Important:, TODO:, KEY:) which are indexed
automatically.

The tree is checkpointed after the change.

Examples:
  dtree add root "Investigate bug"
  dtree add a1b2c3d4 "Try cache invalidation" --body "TODO: measure hit rate"`

const addShortDesc string = "Add a node under a parent"

type addCommander struct {
	project string
	body    string
}

func NewAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <parent-id> <title>",
		Short: addShortDesc,
		Long:  addLongDesc,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			return cmder.run(settings, args[0], strings.Join(args[1:], " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)
	cmd.Flags().StringVarP(&cmder.body, "body", "b", "", "Node body text (may contain markers)")

	return cmd
}

func (c *addCommander) run(settings *wire.Settings, parentID, title string) error {
	manager, err := settings.Attach()
	if err != nil {
		return err
	}

	mut := manager.Tree()
	if parentID == "root" {
		parentID = mut.Store().RootID()
	}

	id, err := mut.AddChild(parentID, title, c.body)
	if err != nil {
		return err
	}

	if err := manager.Checkpoint(); err != nil {
		return err
	}

	fmt.Printf("\n  %s Added %s %s\n",
		cliui.SuccessMark,
		cliui.IDStyle.Render(id),
		cliui.TitleStyle.Render(title),
	)
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Parent:"), cliui.IDStyle.Render(parentID))

	return nil
}
