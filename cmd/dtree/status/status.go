// Package statuscmder provides the status command for displaying the current
// session state of a project.
package statuscmder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
	"github.com/opsbrain/dtree/pkg/dotdir"
)

const statusLongDesc string = `Show the session state for a project.

Reports whether a session is active (the project lock is held), which
project was last activated, and the size of today's tree if one exists.

Examples:
  dtree status
  dtree status --project myproject`

const statusShortDesc string = "Show session state"

type statusCommander struct {
	project string
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
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

func (c *statusCommander) run(settings *wire.Settings) error {
	fmt.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Project:"), cliui.TitleStyle.Render(settings.Project))

	state, err := dotdir.NewManager().LoadSessionState(settings.ConfigDir)
	if err != nil {
		return err
	}
	if state != nil {
		fmt.Printf("  %s %s %s\n",
			cliui.KeyStyle.Render("Last activated:"),
			cliui.TitleStyle.Render(state.Project),
			cliui.DimStyle.Render("("+state.ActivatedAt.Local().Format("2006-01-02 15:04:05")+")"),
		)
	}

	lockPath := filepath.Join(settings.ProjectDir(), "session.lock")
	if _, err := os.Stat(lockPath); err == nil {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Session:"), cliui.MarkerStyle.Render("active"))
	} else if errors.Is(err, os.ErrNotExist) {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Session:"), cliui.DimStyle.Render("not active"))
	} else {
		return fmt.Errorf("checking session lock: %w", err)
	}

	store, err := settings.OpenStore()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Tree:"), cliui.DimStyle.Render("no tree file for today"))
			return nil
		}
		return err
	}

	fmt.Printf("  %s %s %s\n\n",
		cliui.KeyStyle.Render("Tree:"),
		cliui.TitleStyle.Render(store.SessionID()),
		cliui.DimStyle.Render(fmt.Sprintf("(%d nodes)", store.Len())),
	)

	return nil
}
