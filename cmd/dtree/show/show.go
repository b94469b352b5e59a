// Package showcmder provides the show command for printing the session tree
// or a single node.
package showcmder

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/cliui"
	"github.com/opsbrain/dtree/pkg/config"
	"github.com/opsbrain/dtree/pkg/export"
	"github.com/opsbrain/dtree/pkg/tree"
)

const showLongDesc string = `Show today's session tree, or one node in detail.

Without arguments the whole tree is drawn with node ids and markers. With a
node id, the node's title, timestamps, markers, and rendered body are shown.

Show reads the tree file directly, so it also works after the session has
been closed with bye.

Examples:
  dtree show
  dtree show a1b2c3d4`

const showShortDesc string = "Show the session tree or one node"

type showCommander struct {
	project string
}

func NewShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show [node-id]",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			nodeID := ""
			if len(args) == 1 {
				nodeID = args[0]
			}
			return cmder.run(settings, nodeID)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)

	return cmd
}

func (c *showCommander) run(settings *wire.Settings, nodeID string) error {
	store, err := settings.OpenStore()
	if err != nil {
		return err
	}

	if nodeID == "" {
		fmt.Println()
		return export.Render(os.Stdout, store, export.ASCII)
	}

	if nodeID == "root" {
		nodeID = store.RootID()
	}

	node, err := store.Get(nodeID)
	if err != nil {
		return err
	}

	return printNode(store, node)
}

func printNode(store *tree.Store, node *tree.Node) error {
	fmt.Printf("\n  %s %s\n", cliui.TitleStyle.Render(node.Title), cliui.IDStyle.Render("("+node.ID+")"))

	if node.ParentID != "" {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Parent: "), cliui.IDStyle.Render(node.ParentID))
	}
	if len(node.Children) > 0 {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Children:"), cliui.IDStyle.Render(strings.Join(node.Children, ", ")))
	}

	markers, err := store.MarkersOf(node.ID)
	if err != nil {
		return err
	}
	if len(markers) > 0 {
		kinds := make([]string, 0, len(markers))
		for _, k := range markers.Kinds() {
			kinds = append(kinds, string(k))
		}
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Markers: "), cliui.MarkerStyle.Render(strings.Join(kinds, ", ")))
	}

	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Created: "), cliui.DimStyle.Render(node.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Updated: "), cliui.DimStyle.Render(node.UpdatedAt.Local().Format("2006-01-02 15:04:05")))

	if node.Body != "" {
		rendered, err := cliui.RenderMarkdown(node.Body)
		if err != nil {
			// Fall back to the raw body if the terminal renderer fails.
			rendered = "\n" + node.Body + "\n"
		}
		fmt.Println(rendered)
	} else {
		fmt.Println()
	}

	return nil
}
