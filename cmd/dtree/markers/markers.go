// Package markerscmder provides the markers command for querying the
// annotation tags extracted from node bodies.
package markerscmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
	"github.com/opsbrain/dtree/pkg/marker"
	"github.com/opsbrain/dtree/pkg/utils"
)

const markersLongDesc string = `List markers extracted from today's session tree.

Without arguments, counts per marker kind are shown. With a kind (decision,
important, todo, key), every node carrying that marker is listed in tree
order with a body preview.

Markers are derived from node bodies: a body containing the literal text
"Decision:", "Important:", "TODO:", or "KEY:" carries that marker.

Examples:
  dtree markers
  dtree markers decision
  dtree markers todo`

const markersShortDesc string = "List markers in the session tree"

type markersCommander struct {
	project string
}

func NewMarkersCmd() *cobra.Command {
	cmder := &markersCommander{}

	cmd := &cobra.Command{
		Use:   "markers [kind]",
		Short: markersShortDesc,
		Long:  markersLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			kind := ""
			if len(args) == 1 {
				kind = args[0]
			}
			return cmder.run(settings, kind)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				names := make([]string, 0, len(marker.Kinds()))
				for _, k := range marker.Kinds() {
					names = append(names, strings.ToLower(string(k)))
				}
				return names, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)

	return cmd
}

func (c *markersCommander) run(settings *wire.Settings, kindName string) error {
	store, err := settings.OpenStore()
	if err != nil {
		return err
	}

	if kindName == "" {
		fmt.Printf("\n  %s\n\n", cliui.KeyStyle.Render(store.SessionID()))
		for _, k := range marker.Kinds() {
			count := len(store.NodesWith(k))
			fmt.Printf("  %s %s\n",
				cliui.MarkerStyle.Render(fmt.Sprintf("%-10s", k.Label())),
				cliui.DimStyle.Render(fmt.Sprintf("%d node(s)", count)),
			)
		}
		fmt.Println()
		return nil
	}

	kind, ok := marker.ParseKind(kindName)
	if !ok {
		return fmt.Errorf("unknown marker kind %q (available: decision, important, todo, key)", kindName)
	}

	ids := store.NodesWith(kind)
	if len(ids) == 0 {
		fmt.Printf("\n  %s No nodes carry %s\n\n", cliui.DimStyle.Render("●"), cliui.MarkerStyle.Render(kind.Label()))
		return nil
	}

	fmt.Printf("\n  %s %s\n\n", cliui.MarkerStyle.Render(kind.Label()), cliui.DimStyle.Render(fmt.Sprintf("%d node(s)", len(ids))))
	for _, id := range ids {
		node, err := store.Get(id)
		if err != nil {
			return err
		}

		fmt.Printf("  %s %s\n", cliui.IDStyle.Render(id), cliui.TitleStyle.Render(node.Title))
		if node.Body != "" {
			preview := utils.Truncate(strings.ReplaceAll(node.Body, "\n", " "), 72)
			fmt.Printf("    %s\n", cliui.PreviewStyle.Render(preview))
		}
	}
	fmt.Println()

	return nil
}
