package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsbrain/dtree/pkg/export"
	"github.com/opsbrain/dtree/pkg/marker"
	"github.com/opsbrain/dtree/pkg/tree"
	"github.com/opsbrain/dtree/pkg/utils"
)

var (
	addNodeToolName    = "add_node"
	addNodeDescription = "Add a child node to the active decision tree. The parent id may be a node id or the literal \"root\". Returns the new node's id."

	moveNodeToolName    = "move_node"
	moveNodeDescription = "Move a node (and its subtree) under a new parent in the active decision tree. Rejects moves that would create a cycle."

	removeNodeToolName    = "remove_node"
	removeNodeDescription = "Remove a leaf node from the active decision tree. Nodes with children and the root cannot be removed."

	editNodeToolName    = "edit_node"
	editNodeDescription = "Edit a node's title and/or body in the active decision tree. Markers (Decision:, Important:, TODO:, KEY:) are re-extracted from the new body."

	exportTreeToolName    = "export_tree"
	exportTreeDescription = "Export the active decision tree in the given format: json, yaml, mermaid, dot, or ascii."

	visualizeToolName    = "visualize"
	visualizeDescription = "Render the active decision tree as a Mermaid diagram for display."

	listMarkersToolName    = "list_markers"
	listMarkersDescription = "List marker annotations in the active decision tree. With a kind (decision, important, todo, key) returns the nodes carrying it; without, returns per-kind counts."
)

// AddNodeInput represents the input arguments for the add_node tool.
type AddNodeInput struct {
	ParentID string `json:"parent_id" jsonschema:"the parent node id, or \"root\" for the session root"`
	Title    string `json:"title" jsonschema:"the new node's title"`
	Body     string `json:"body,omitempty" jsonschema:"optional markdown body; may carry marker labels"`
}

// AddNodeOutput represents the output of the add_node tool.
type AddNodeOutput struct {
	ID      string   `json:"id"`
	Markers []string `json:"markers"`
}

// MoveNodeInput represents the input arguments for the move_node tool.
type MoveNodeInput struct {
	NodeID      string `json:"node_id" jsonschema:"the node to move"`
	NewParentID string `json:"new_parent_id" jsonschema:"the new parent node id, or \"root\""`
}

// MoveNodeOutput represents the output of the move_node tool.
type MoveNodeOutput struct {
	NodeID      string `json:"node_id"`
	NewParentID string `json:"new_parent_id"`
}

// RemoveNodeInput represents the input arguments for the remove_node tool.
type RemoveNodeInput struct {
	NodeID string `json:"node_id" jsonschema:"the leaf node to remove"`
}

// RemoveNodeOutput represents the output of the remove_node tool.
type RemoveNodeOutput struct {
	NodeID string `json:"node_id"`
}

// EditNodeInput represents the input arguments for the edit_node tool.
type EditNodeInput struct {
	NodeID string `json:"node_id" jsonschema:"the node to edit"`
	Title  string `json:"title,omitempty" jsonschema:"new title; empty leaves the title unchanged"`
	Body   string `json:"body,omitempty" jsonschema:"new body; empty leaves the body unchanged"`
}

// EditNodeOutput represents the output of the edit_node tool.
type EditNodeOutput struct {
	NodeID  string   `json:"node_id"`
	Markers []string `json:"markers"`
}

// ExportTreeInput represents the input arguments for the export_tree tool.
type ExportTreeInput struct {
	Format string `json:"format,omitempty" jsonschema:"export format: json, yaml, mermaid, dot, or ascii (default: ascii)"`
}

// ListMarkersInput represents the input arguments for the list_markers tool.
type ListMarkersInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"marker kind to list: decision, important, todo, or key; empty for per-kind counts"`
}

// MarkedNode is one node carrying the requested marker kind.
type MarkedNode struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
}

// ListMarkersOutput represents the output of the list_markers tool.
type ListMarkersOutput struct {
	Kind   string         `json:"kind,omitempty"`
	Nodes  []MarkedNode   `json:"nodes,omitempty"`
	Counts map[string]int `json:"counts,omitempty"`
}

// handleAddNode processes an add_node request.
func (s *Server) handleAddNode(ctx context.Context, req *mcp.CallToolRequest, input AddNodeInput) (*mcp.CallToolResult, AddNodeOutput, error) {
	mut, errResult := s.mutator()
	if errResult != nil {
		return errResult, AddNodeOutput{}, nil
	}

	parent := input.ParentID
	if parent == "" || parent == "root" {
		parent = mut.Store().RootID()
	}

	id, err := mut.AddChild(parent, input.Title, input.Body)
	if err != nil {
		return toolError("Failed to add node: %v", err), AddNodeOutput{}, nil
	}
	if result := s.checkpoint(); result != nil {
		return result, AddNodeOutput{}, nil
	}

	s.config.Logger.Debug("MCP add_node", "id", id, "parent", parent)

	return result(s.config.Logger, AddNodeOutput{
		ID:      id,
		Markers: markerNames(mut.Store(), id),
	})
}

// handleMoveNode processes a move_node request.
func (s *Server) handleMoveNode(ctx context.Context, req *mcp.CallToolRequest, input MoveNodeInput) (*mcp.CallToolResult, MoveNodeOutput, error) {
	mut, errResult := s.mutator()
	if errResult != nil {
		return errResult, MoveNodeOutput{}, nil
	}

	newParent := input.NewParentID
	if newParent == "root" {
		newParent = mut.Store().RootID()
	}

	if err := mut.Move(input.NodeID, newParent); err != nil {
		return toolError("Failed to move node: %v", err), MoveNodeOutput{}, nil
	}
	if result := s.checkpoint(); result != nil {
		return result, MoveNodeOutput{}, nil
	}

	return result(s.config.Logger, MoveNodeOutput{NodeID: input.NodeID, NewParentID: newParent})
}

// handleRemoveNode processes a remove_node request.
func (s *Server) handleRemoveNode(ctx context.Context, req *mcp.CallToolRequest, input RemoveNodeInput) (*mcp.CallToolResult, RemoveNodeOutput, error) {
	mut, errResult := s.mutator()
	if errResult != nil {
		return errResult, RemoveNodeOutput{}, nil
	}

	if err := mut.RemoveLeaf(input.NodeID); err != nil {
		return toolError("Failed to remove node: %v", err), RemoveNodeOutput{}, nil
	}
	if result := s.checkpoint(); result != nil {
		return result, RemoveNodeOutput{}, nil
	}

	return result(s.config.Logger, RemoveNodeOutput{NodeID: input.NodeID})
}

// handleEditNode processes an edit_node request.
func (s *Server) handleEditNode(ctx context.Context, req *mcp.CallToolRequest, input EditNodeInput) (*mcp.CallToolResult, EditNodeOutput, error) {
	mut, errResult := s.mutator()
	if errResult != nil {
		return errResult, EditNodeOutput{}, nil
	}

	if input.Title == "" && input.Body == "" {
		return toolError("Nothing to edit: provide a title, a body, or both"), EditNodeOutput{}, nil
	}

	if input.Title != "" {
		if err := mut.SetTitle(input.NodeID, input.Title); err != nil {
			return toolError("Failed to edit node: %v", err), EditNodeOutput{}, nil
		}
	}
	if input.Body != "" {
		if err := mut.SetBody(input.NodeID, input.Body); err != nil {
			return toolError("Failed to edit node: %v", err), EditNodeOutput{}, nil
		}
	}
	if result := s.checkpoint(); result != nil {
		return result, EditNodeOutput{}, nil
	}

	return result(s.config.Logger, EditNodeOutput{
		NodeID:  input.NodeID,
		Markers: markerNames(mut.Store(), input.NodeID),
	})
}

// handleExportTree processes an export_tree request.
func (s *Server) handleExportTree(ctx context.Context, req *mcp.CallToolRequest, input ExportTreeInput) (*mcp.CallToolResult, struct{}, error) {
	mut, errResult := s.mutator()
	if errResult != nil {
		return errResult, struct{}{}, nil
	}

	name := input.Format
	if name == "" {
		name = string(export.ASCII)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return toolError("Failed to export: %v", err), struct{}{}, nil
	}

	var sb strings.Builder
	if err := export.Render(&sb, mut.Store(), format); err != nil {
		return toolError("Failed to export: %v", err), struct{}{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: sb.String()},
		},
	}, struct{}{}, nil
}

// handleVisualize processes a visualize request.
func (s *Server) handleVisualize(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, struct{}, error) {
	mut, errResult := s.mutator()
	if errResult != nil {
		return errResult, struct{}{}, nil
	}

	var sb strings.Builder
	if err := export.Render(&sb, mut.Store(), export.Mermaid); err != nil {
		return toolError("Failed to visualize: %v", err), struct{}{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("```mermaid\n%s```", sb.String())},
		},
	}, struct{}{}, nil
}

// handleListMarkers processes a list_markers request.
func (s *Server) handleListMarkers(ctx context.Context, req *mcp.CallToolRequest, input ListMarkersInput) (*mcp.CallToolResult, ListMarkersOutput, error) {
	mut, errResult := s.mutator()
	if errResult != nil {
		return errResult, ListMarkersOutput{}, nil
	}
	store := mut.Store()

	if input.Kind == "" {
		counts := make(map[string]int, len(marker.Kinds()))
		for _, k := range marker.Kinds() {
			counts[string(k)] = len(store.NodesWith(k))
		}
		return result(s.config.Logger, ListMarkersOutput{Counts: counts})
	}

	kind, ok := marker.ParseKind(input.Kind)
	if !ok {
		return toolError("Unknown marker kind %q (use decision, important, todo, or key)", input.Kind), ListMarkersOutput{}, nil
	}

	ids := store.NodesWith(kind)
	nodes := make([]MarkedNode, 0, len(ids))
	for _, id := range ids {
		n, err := store.Get(id)
		if err != nil {
			continue
		}
		nodes = append(nodes, MarkedNode{
			ID:      n.ID,
			Title:   n.Title,
			Preview: utils.Truncate(n.Body, 72),
		})
	}

	return result(s.config.Logger, ListMarkersOutput{Kind: string(kind), Nodes: nodes})
}

// mutator returns the active session's mutation surface, or an error result
// when no session is attached.
func (s *Server) mutator() (*tree.Mutator, *mcp.CallToolResult) {
	mut := s.config.Manager.Tree()
	if mut == nil {
		return nil, toolError("No active session: run `dtree activate` first")
	}
	return mut, nil
}

// checkpoint persists the tree after a mutation, returning an error result on
// failure so the client sees the tree was not saved.
func (s *Server) checkpoint() *mcp.CallToolResult {
	if err := s.config.Manager.Checkpoint(); err != nil {
		s.config.Logger.Error("MCP checkpoint failed", "error", err)
		return toolError("Failed to checkpoint tree: %v", err)
	}
	return nil
}

// result serializes the structured output as JSON for the text field.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
func result[T any](log *slog.Logger, output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		log.Error("failed to marshal tool output", "error", err)
		return toolError("Failed to serialize result: %v", err), output, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func markerNames(s *tree.Store, id string) []string {
	set, err := s.MarkersOf(id)
	if err != nil {
		return []string{}
	}

	kinds := set.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
