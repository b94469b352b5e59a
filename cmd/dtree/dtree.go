// Package dtreecmder
package dtreecmder

import (
	activatecmder "github.com/opsbrain/dtree/cmd/dtree/activate"
	addcmder "github.com/opsbrain/dtree/cmd/dtree/add"
	byecmder "github.com/opsbrain/dtree/cmd/dtree/bye"
	checkpointcmder "github.com/opsbrain/dtree/cmd/dtree/checkpoint"
	configcmder "github.com/opsbrain/dtree/cmd/dtree/config"
	editcmder "github.com/opsbrain/dtree/cmd/dtree/edit"
	exportcmder "github.com/opsbrain/dtree/cmd/dtree/export"
	initcmder "github.com/opsbrain/dtree/cmd/dtree/init"
	markerscmder "github.com/opsbrain/dtree/cmd/dtree/markers"
	mcpcmder "github.com/opsbrain/dtree/cmd/dtree/mcp"
	movecmder "github.com/opsbrain/dtree/cmd/dtree/move"
	removecmder "github.com/opsbrain/dtree/cmd/dtree/remove"
	showcmder "github.com/opsbrain/dtree/cmd/dtree/show"
	statuscmder "github.com/opsbrain/dtree/cmd/dtree/status"
	versioncmder "github.com/opsbrain/dtree/cmd/dtree/version"
	watchcmder "github.com/opsbrain/dtree/cmd/dtree/watch"
	"github.com/spf13/cobra"
)

const dtreeLongDesc string = `Dtree is a decision-tree journal for working sessions.

Each working day gets one tree per project: nodes capture the paths you
explore, inline markers (Decision:, Important:, TODO:, KEY:) capture what
matters, and the whole tree round-trips through a plain markdown file you
can read, grep, and commit.

Typical flow:
  dtree activate myproject            Start (or resume) today's session
  dtree add <parent-id> "Try X"       Add a node under a parent
  dtree edit <id> -b "Decision: X"    Record a decision in a node body
  dtree show                          Print the session tree
  dtree bye                           Close the session and archive old trees`

const dtreeShortDesc string = "Dtree - Decision Tree Session Journal"

func NewDtreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dtree",
		Short: dtreeShortDesc,
		Long:  dtreeLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .dtree/ config directory")

	// Add subcommands
	cmd.AddCommand(activatecmder.NewActivateCmd())
	cmd.AddCommand(addcmder.NewAddCmd())
	cmd.AddCommand(byecmder.NewByeCmd())
	cmd.AddCommand(checkpointcmder.NewCheckpointCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(editcmder.NewEditCmd())
	cmd.AddCommand(exportcmder.NewExportCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(markerscmder.NewMarkersCmd())
	cmd.AddCommand(mcpcmder.NewMcpCmd())
	cmd.AddCommand(movecmder.NewMoveCmd())
	cmd.AddCommand(removecmder.NewRemoveCmd())
	cmd.AddCommand(showcmder.NewShowCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())

	return cmd
}
