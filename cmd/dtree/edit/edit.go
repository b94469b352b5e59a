// Package editcmder provides the edit command for updating a node's title or
// body in the active session's tree.
package editcmder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
)

const editLongDesc string = `Update a node's title, body, or both.

Markers are re-extracted from the new body, so adding or removing a
"Decision:", "Important:", "TODO:", or "KEY:" tag updates the marker index
in the same step.

The tree is checkpointed after the change.

Examples:
  dtree edit a1b2c3d4 --title "Root cause found"
  dtree edit a1b2c3d4 --body "Decision: roll back to v2. KEY: config drift"`

const editShortDesc string = "Edit a node's title or body"

type editCommander struct {
	project string
	title   string
	body    string
}

func NewEditCmd() *cobra.Command {
	cmder := &editCommander{}

	cmd := &cobra.Command{
		Use:   "edit <node-id>",
		Short: editShortDesc,
		Long:  editLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}

			titleSet := cmd.Flags().Changed("title")
			bodySet := cmd.Flags().Changed("body")
			if !titleSet && !bodySet {
				return errors.New("nothing to edit: provide --title, --body, or both")
			}

			return cmder.run(settings, args[0], titleSet, bodySet)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)
	cmd.Flags().StringVarP(&cmder.title, "title", "t", "", "New node title")
	cmd.Flags().StringVarP(&cmder.body, "body", "b", "", "New node body (may contain markers)")

	return cmd
}

func (c *editCommander) run(settings *wire.Settings, nodeID string, titleSet, bodySet bool) error {
	manager, err := settings.Attach()
	if err != nil {
		return err
	}

	mut := manager.Tree()
	if titleSet {
		if err := mut.SetTitle(nodeID, c.title); err != nil {
			return err
		}
	}
	if bodySet {
		if err := mut.SetBody(nodeID, c.body); err != nil {
			return err
		}
	}

	if err := manager.Checkpoint(); err != nil {
		return err
	}

	markers, err := mut.Store().MarkersOf(nodeID)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Updated %s\n", cliui.SuccessMark, cliui.IDStyle.Render(nodeID))
	if len(markers) > 0 {
		kinds := make([]string, 0, len(markers))
		for _, k := range markers.Kinds() {
			kinds = append(kinds, string(k))
		}
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Markers:"), cliui.MarkerStyle.Render(strings.Join(kinds, ", ")))
	}
	fmt.Println()

	return nil
}
