package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/opsbrain/dtree/pkg/tree"
)

// renderMermaid writes a Mermaid "graph TD" diagram. Marker-carrying nodes
// get the decision class so they stand out in rendered docs.
func renderMermaid(w io.Writer, s *tree.Store) error {
	lines := []string{"graph TD"}

	if s.RootID() == "" {
		lines = append(lines, `    empty["Empty Tree"]`)
	}

	s.Walk(func(n *tree.Node) bool {
		lines = append(lines, fmt.Sprintf("    %s[%q]", n.ID, mermaidText(n.Title)))
		if len(n.Markers) > 0 {
			lines = append(lines, fmt.Sprintf("    %s:::marked", n.ID))
		}
		for _, child := range n.Children {
			lines = append(lines, fmt.Sprintf("    %s --> %s", n.ID, child))
		}
		return true
	})

	lines = append(lines, "    classDef marked fill:#90EE90,stroke:#006400,stroke-width:2px")

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func mermaidText(text string) string {
	text = strings.ReplaceAll(text, `"`, "'")
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

// renderDOT writes a Graphviz digraph.
func renderDOT(w io.Writer, s *tree.Store) error {
	lines := []string{
		"digraph DecisionTree {",
		"    rankdir=TD;",
		"    node [shape=box, style=rounded];",
	}

	if s.RootID() == "" {
		lines = append(lines, `    empty [label="Empty Tree"];`)
	}

	s.Walk(func(n *tree.Node) bool {
		label := strings.ReplaceAll(n.Title, `"`, `\"`)
		if len(n.Markers) > 0 {
			kinds := make([]string, 0, len(n.Markers))
			for _, k := range n.Markers.Kinds() {
				kinds = append(kinds, string(k))
			}
			lines = append(lines, fmt.Sprintf(
				`    %q [label="%s\n[%s]", fillcolor=lightgreen, style="rounded,filled"];`,
				n.ID, label, strings.Join(kinds, ", "),
			))
		} else {
			lines = append(lines, fmt.Sprintf(`    %q [label="%s"];`, n.ID, label))
		}
		return true
	})

	s.Walk(func(n *tree.Node) bool {
		for _, child := range n.Children {
			lines = append(lines, fmt.Sprintf("    %q -> %q;", n.ID, child))
		}
		return true
	})

	lines = append(lines, "}")

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// renderASCII writes a box-drawing tree for terminal display.
func renderASCII(w io.Writer, s *tree.Store) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", s.SessionID())

	rootID := s.RootID()
	if rootID == "" {
		b.WriteString("(empty tree)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	root, err := s.Get(rootID)
	if err != nil {
		return err
	}

	fmt.Fprintf(&b, "%s\n", asciiLabel(root))
	drawChildren(&b, s, root, "")

	_, err = io.WriteString(w, b.String())
	return err
}

func drawChildren(b *strings.Builder, s *tree.Store, n *tree.Node, prefix string) {
	for i, childID := range n.Children {
		child, err := s.Get(childID)
		if err != nil {
			continue
		}

		last := i == len(n.Children)-1
		connector, extension := "├── ", "│   "
		if last {
			connector, extension = "└── ", "    "
		}

		fmt.Fprintf(b, "%s%s%s\n", prefix, connector, asciiLabel(child))
		drawChildren(b, s, child, prefix+extension)
	}
}

func asciiLabel(n *tree.Node) string {
	label := fmt.Sprintf("%s (%s)", n.Title, n.ID)
	if len(n.Markers) == 0 {
		return label
	}

	kinds := make([]string, 0, len(n.Markers))
	for _, k := range n.Markers.Kinds() {
		kinds = append(kinds, string(k))
	}
	return fmt.Sprintf("%s [%s]", label, strings.Join(kinds, ", "))
}
