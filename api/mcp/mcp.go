// Package mcp provides an MCP (Model Context Protocol) server for the
// decision tree, so an agent can drive the session journal as a tool.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsbrain/dtree/pkg/session"
	"github.com/opsbrain/dtree/pkg/utils"
)

type Config struct {
	// Manager is the attached session the tools operate on. Mutating tools
	// checkpoint through it after every change.
	Manager *session.Manager

	// Logger is the configured logger. It must not write to stdout: the
	// stdio transport owns that stream.
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
}

// NewServer creates a new MCP server with the decision tree tools.
func NewServer(c Config) (*Server, error) {
	if c.Manager == nil {
		return nil, errors.New("session manager is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "dtree",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	// Add tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        addNodeToolName,
		Description: addNodeDescription,
	}, s.handleAddNode)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        moveNodeToolName,
		Description: moveNodeDescription,
	}, s.handleMoveNode)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        removeNodeToolName,
		Description: removeNodeDescription,
	}, s.handleRemoveNode)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        editNodeToolName,
		Description: editNodeDescription,
	}, s.handleEditNode)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        exportTreeToolName,
		Description: exportTreeDescription,
	}, s.handleExportTree)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        visualizeToolName,
		Description: visualizeDescription,
	}, s.handleVisualize)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listMarkersToolName,
		Description: listMarkersDescription,
	}, s.handleListMarkers)

	s.mcpServer = mcpServer

	return s, nil
}

// Run serves the tools over stdio until ctx is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
