// Package byecmder provides the bye command for closing the active session.
package byecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/dotdir"
)

const byeLongDesc string = `Close the active session for a project.

The tree is serialized one final time, the session lock is released, and
tree files older than the retention window are swept into the project's
archive/ directory. Archival is best-effort: a failed sweep is reported but
never blocks the close.

Examples:
  dtree bye
  dtree bye myproject`

const byeShortDesc string = "Close the active session"

func NewByeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bye [project]",
		Short: byeShortDesc,
		Long:  byeLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				settings.Project = args[0]
			}
			return runBye(settings)
		},
	}

	return cmd
}

func runBye(settings *wire.Settings) error {
	manager, err := settings.Attach()
	if err != nil {
		return err
	}

	if err := manager.Close(); err != nil {
		return err
	}

	ddm := dotdir.NewManager()
	state, err := ddm.LoadSessionState(settings.ConfigDir)
	if err == nil && state != nil && state.Project == settings.Project {
		_ = ddm.ClearSessionState(settings.ConfigDir)
	}

	fmt.Printf("\n  %s Session closed for %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(settings.Project))
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Tree:"), cliui.DimStyle.Render(manager.Path()))

	return nil
}
