// Package activatecmder provides the activate command for starting or
// resuming a project's daily decision-tree session.
package activatecmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/dotdir"
)

const activateLongDesc string = `Start (or resume) today's decision-tree session for a project.

If a tree file already exists for today it is loaded and the session resumes
where it left off. Otherwise a fresh tree is created with a single root node
and persisted immediately.

Only one session per project can be active at a time; a second activate
fails until the first session is closed with bye.

The activated project is remembered, so later commands (add, show, bye, ...)
can omit the project name.

Examples:
  dtree activate myproject
  dtree activate`

const activateShortDesc string = "Start or resume today's session"

func NewActivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate [project]",
		Short: activateShortDesc,
		Long:  activateLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				settings.Project = args[0]
			}
			return runActivate(settings)
		},
	}

	return cmd
}

func runActivate(settings *wire.Settings) error {
	manager := settings.Manager()
	if err := manager.Activate(); err != nil {
		return err
	}

	state := &dotdir.SessionState{
		Project:     settings.Project,
		ActivatedAt: time.Now(),
	}
	if err := dotdir.NewManager().SaveSessionState(state, settings.ConfigDir); err != nil {
		return fmt.Errorf("recording active project: %w", err)
	}

	store := manager.Tree().Store()
	fmt.Printf("\n  %s Session %s active\n", cliui.SuccessMark, cliui.KeyStyle.Render(store.SessionID()))
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Tree:"), cliui.DimStyle.Render(manager.Path()))
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Root:"), cliui.IDStyle.Render(store.RootID()))

	return nil
}
