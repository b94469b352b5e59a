// Package export renders a session tree to interchange and diagram formats:
// JSON, YAML, Mermaid, Graphviz DOT, and an ASCII tree for terminals.
//
// Exports are one-way views for downstream tooling; the tree file written by
// treefile remains the durable representation.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opsbrain/dtree/pkg/tree"
)

// Format names a supported export format.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	Mermaid Format = "mermaid"
	DOT     Format = "dot"
	ASCII   Format = "ascii"
)

// Formats returns all supported formats in display order.
func Formats() []Format {
	return []Format{JSON, YAML, Mermaid, DOT, ASCII}
}

// ParseFormat resolves a user-supplied format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats() {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (available: json, yaml, mermaid, dot, ascii)", name)
}

// Render writes the tree to w in the given format.
func Render(w io.Writer, s *tree.Store, format Format) error {
	switch format {
	case JSON:
		return renderJSON(w, s)
	case YAML:
		return renderYAML(w, s)
	case Mermaid:
		return renderMermaid(w, s)
	case DOT:
		return renderDOT(w, s)
	case ASCII:
		return renderASCII(w, s)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// treeDoc is the interchange shape shared by the JSON and YAML exports.
type treeDoc struct {
	SessionID string    `json:"session_id" yaml:"session_id"`
	RootID    string    `json:"root_id" yaml:"root_id"`
	Nodes     []nodeDoc `json:"nodes" yaml:"nodes"`
}

type nodeDoc struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body,omitempty" yaml:"body,omitempty"`
	ParentID  string    `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Children  []string  `json:"children" yaml:"children"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
	Markers   []string  `json:"markers,omitempty" yaml:"markers,omitempty"`
}

func document(s *tree.Store) treeDoc {
	doc := treeDoc{
		SessionID: s.SessionID(),
		RootID:    s.RootID(),
		Nodes:     []nodeDoc{},
	}

	s.Walk(func(n *tree.Node) bool {
		markers := []string{}
		for _, k := range n.Markers.Kinds() {
			markers = append(markers, string(k))
		}

		doc.Nodes = append(doc.Nodes, nodeDoc{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			ParentID:  n.ParentID,
			Children:  n.Children,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
			Markers:   markers,
		})
		return true
	})

	return doc
}

func renderJSON(w io.Writer, s *tree.Store) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document(s))
}

func renderYAML(w io.Writer, s *tree.Store) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(document(s))
}
