// Package checkpointcmder provides the checkpoint command for persisting the
// active session's tree on demand.
package checkpointcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
)

const checkpointLongDesc string = `Serialize the active session's tree to its markdown file.

The write is atomic (temp file renamed over the target), so a crash mid-write
never leaves a corrupt tree file behind. Session state is unchanged.

Examples:
  dtree checkpoint
  dtree checkpoint --project myproject`

const checkpointShortDesc string = "Persist the session tree now"

type checkpointCommander struct {
	project string
}

func NewCheckpointCmd() *cobra.Command {
	cmder := &checkpointCommander{}

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: checkpointShortDesc,
		Long:  checkpointLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			return cmder.run(settings)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)

	return cmd
}

func (c *checkpointCommander) run(settings *wire.Settings) error {
	manager, err := settings.Attach()
	if err != nil {
		return err
	}

	if err := manager.Checkpoint(); err != nil {
		return err
	}

	fmt.Printf("\n  %s Checkpoint written (%d nodes)\n", cliui.SuccessMark, manager.Tree().Store().Len())
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Tree:"), cliui.DimStyle.Render(manager.Path()))

	return nil
}
