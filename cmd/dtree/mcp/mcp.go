// Package mcpcmder provides the mcp command for serving the decision tree
// over the Model Context Protocol.
package mcpcmder

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/api/mcp"
	"github.com/opsbrain/dtree/cmd/dtree/internal/wire"
	"github.com/opsbrain/dtree/pkg/config"
	"github.com/opsbrain/dtree/pkg/logger"
)

const mcpLongDesc string = `Serve the decision tree to an MCP client over stdio.

Exposes add_node, move_node, remove_node, edit_node, export_tree,
visualize, and list_markers as MCP tools against today's session tree, so
an agent can drive the journal directly. Mutations are checkpointed to the
tree file after every call.

Requires an active session for the project (run dtree activate first).
Runs until the client disconnects or the process is interrupted.

Examples:
  dtree mcp
  dtree mcp --project myproject`

const mcpShortDesc string = "Serve the decision tree over MCP (stdio)"

type mcpCommander struct {
	project string
}

func NewMcpCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := wire.Resolve(cmd)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), settings)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)

	return cmd
}

func (c *mcpCommander) run(parent context.Context, settings *wire.Settings) error {
	// stdout belongs to the stdio transport; all logging goes to stderr.
	log := logger.New(logger.WithDebug(settings.Debug), logger.WithPretty(true), logger.WithWriter(os.Stderr))

	manager, err := settings.Attach()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(mcp.Config{
		Manager: manager,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("serving MCP tools", "project", settings.Project, "tree", manager.Path())

	err = server.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
