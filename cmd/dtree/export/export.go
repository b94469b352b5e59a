// Package exportcmder provides the export command for rendering the session
// tree to interchange and diagram formats.
package exportcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
	"github.com/opsbrain/dtree/pkg/export"
)

const exportLongDesc string = `Export today's session tree to another format.

Supported formats: json, yaml, mermaid, dot, ascii. Output goes to stdout
unless --output names a file.

Export reads the tree file directly, so it also works after the session has
been closed with bye.

Examples:
  dtree export --format json
  dtree export -f mermaid -o tree.mmd
  dtree export -f dot | dot -Tpng -o tree.png`

const exportShortDesc string = "Export the session tree"

type exportCommander struct {
	project string
	format  string
	output  string
}

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: exportShortDesc,
		Long:  exportLongDesc,
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
	config.AddStringFlag(cmd, config.Flags, config.FlagFormat, &cmder.format)
	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "Write output to a file instead of stdout")

	return cmd
}

func (c *exportCommander) run(settings *wire.Settings) error {
	format, err := export.ParseFormat(settings.Format)
	if err != nil {
		return err
	}

	store, err := settings.OpenStore()
	if err != nil {
		return err
	}

	if c.output == "" {
		return export.Render(os.Stdout, store, format)
	}

	f, err := os.Create(c.output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := export.Render(f, store, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	fmt.Printf("\n  %s Exported %s to %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(string(format)),
		cliui.DimStyle.Render(c.output),
	)

	return nil
}
