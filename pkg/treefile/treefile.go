// Package treefile serializes a session tree to and from its on-disk
// markdown representation.
//
// The format is a structured text document: a file header followed by one
// block per node in tree pre-order. Node bodies are fenced so arbitrary
// text (including lines that look like headers) round-trips byte-exact.
// Markers are never persisted; they are derived data re-extracted on load.
package treefile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opsbrain/dtree/pkg/tree"
)

// ErrMalformedTree indicates that a tree file could not be loaded into a
// valid structure: a syntax error, an id referenced but never defined, a
// duplicate root, or a cycle. Nothing is partially loaded.
var ErrMalformedTree = errors.New("malformed tree file")

const (
	headerPrefix = "# decision tree: "
	nodePrefix   = "## node "
	fieldPrefix  = "- "

	// noParent marks the root's parent field on disk.
	noParent = "-"
)

// timeLayout is RFC3339 with nanoseconds so load/save round-trips compare
// equal down to the stored precision.
const timeLayout = time.RFC3339Nano

// Encode writes the store's tree to w. Nodes are emitted in pre-order, which
// both keeps the file readable top-down and guarantees parents appear before
// their children.
func Encode(w io.Writer, s *tree.Store) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s%s\n\n", headerPrefix, s.SessionID())

	var encodeErr error
	s.Walk(func(n *tree.Node) bool {
		if err := encodeNode(bw, n); err != nil {
			encodeErr = err
			return false
		}
		return true
	})
	if encodeErr != nil {
		return encodeErr
	}

	return bw.Flush()
}

func encodeNode(w io.Writer, n *tree.Node) error {
	parent := n.ParentID
	if parent == "" {
		parent = noParent
	}

	children := noParent
	if len(n.Children) > 0 {
		children = strings.Join(n.Children, ", ")
	}

	fence := bodyFence(n.Body)

	// The body is written verbatim followed by exactly one newline before
	// the closing fence; Decode strips exactly one, so trailing newlines
	// in the body itself survive the round-trip.
	_, err := fmt.Fprintf(w, "%s%s\n%stitle: %s\n%sparent: %s\n%schildren: %s\n%screated: %s\n%supdated: %s\n\n%s\n%s\n%s\n\n",
		nodePrefix, n.ID,
		fieldPrefix, escapeTitle(n.Title),
		fieldPrefix, parent,
		fieldPrefix, children,
		fieldPrefix, n.CreatedAt.UTC().Format(timeLayout),
		fieldPrefix, n.UpdatedAt.UTC().Format(timeLayout),
		fence, n.Body, fence,
	)
	return err
}

// Titles live on a single `- title:` line, so newlines (and the backslashes
// that escape them) must be encoded or a multi-line title would shear the
// node block apart and make the file undecodable.
var (
	titleEscaper   = strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\r", "\\r")
	titleUnescaper = strings.NewReplacer("\\\\", "\\", "\\n", "\n", "\\r", "\r")
)

func escapeTitle(title string) string {
	return titleEscaper.Replace(title)
}

func unescapeTitle(title string) string {
	return titleUnescaper.Replace(title)
}

// bodyFence returns a backtick fence strictly longer than any backtick run
// in the body, so the body can never terminate its own fence early.
func bodyFence(body string) string {
	longest := 0
	run := 0
	for _, r := range body {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	n := longest + 1
	if n < 3 {
		n = 3
	}
	return strings.Repeat("`", n)
}

// Decode parses a tree file and rebuilds a validated store. Any structural
// problem fails with ErrMalformedTree rather than loading a partially valid
// tree.
func Decode(r io.Reader) (*tree.Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tree file: %w", err)
	}

	p := &parser{lines: strings.Split(string(data), "\n")}

	sessionID, err := p.header()
	if err != nil {
		return nil, err
	}

	var nodes []*tree.Node
	for {
		n, ok, err := p.node()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		nodes = append(nodes, n)
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrMalformedTree)
	}

	s, err := tree.Load(sessionID, nodes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}

	return s, nil
}

// parser is a line-oriented cursor over the file contents.
type parser struct {
	lines []string
	pos   int
}

func (p *parser) next() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	line := p.lines[p.pos]
	p.pos++
	return line, true
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	return p.lines[p.pos], true
}

func (p *parser) skipBlank() {
	for {
		line, ok := p.peek()
		if !ok || strings.TrimSpace(line) != "" {
			return
		}
		p.pos++
	}
}

func (p *parser) header() (string, error) {
	p.skipBlank()
	line, ok := p.next()
	if !ok || !strings.HasPrefix(line, headerPrefix) {
		return "", fmt.Errorf("%w: missing file header", ErrMalformedTree)
	}

	sessionID := strings.TrimSpace(strings.TrimPrefix(line, headerPrefix))
	if sessionID == "" {
		return "", fmt.Errorf("%w: empty session id", ErrMalformedTree)
	}
	return sessionID, nil
}

// node parses the next node block. Returns ok=false at end of input.
func (p *parser) node() (*tree.Node, bool, error) {
	p.skipBlank()
	line, ok := p.peek()
	if !ok {
		return nil, false, nil
	}
	if !strings.HasPrefix(line, nodePrefix) {
		return nil, false, fmt.Errorf("%w: unexpected line %q", ErrMalformedTree, line)
	}
	p.pos++

	id := strings.TrimSpace(strings.TrimPrefix(line, nodePrefix))
	if id == "" {
		return nil, false, fmt.Errorf("%w: node block without id", ErrMalformedTree)
	}

	n := &tree.Node{ID: id, Children: []string{}}
	fields := map[string]bool{}

	for {
		line, ok := p.peek()
		if !ok {
			return nil, false, fmt.Errorf("%w: node %s truncated", ErrMalformedTree, id)
		}
		if strings.TrimSpace(line) == "" {
			p.pos++
			break
		}
		if !strings.HasPrefix(line, fieldPrefix) {
			return nil, false, fmt.Errorf("%w: node %s: bad field line %q", ErrMalformedTree, id, line)
		}
		p.pos++

		key, value, found := strings.Cut(strings.TrimPrefix(line, fieldPrefix), ": ")
		if !found {
			// A field with an empty value ends with ":".
			key, value = strings.TrimSuffix(strings.TrimPrefix(line, fieldPrefix), ":"), ""
		}
		if err := setField(n, key, value); err != nil {
			return nil, false, fmt.Errorf("%w: node %s: %v", ErrMalformedTree, id, err)
		}
		fields[key] = true
	}

	for _, required := range []string{"parent", "children", "created", "updated"} {
		if !fields[required] {
			return nil, false, fmt.Errorf("%w: node %s missing field %s", ErrMalformedTree, id, required)
		}
	}

	body, err := p.body(id)
	if err != nil {
		return nil, false, err
	}
	n.Body = body

	return n, true, nil
}

func setField(n *tree.Node, key, value string) error {
	switch key {
	case "title":
		n.Title = unescapeTitle(value)

	case "parent":
		if value != noParent {
			n.ParentID = value
		}

	case "children":
		if value == noParent {
			return nil
		}
		for _, id := range strings.Split(value, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				return fmt.Errorf("empty child id")
			}
			n.Children = append(n.Children, id)
		}

	case "created":
		ts, err := time.Parse(timeLayout, value)
		if err != nil {
			return fmt.Errorf("bad created timestamp %q", value)
		}
		n.CreatedAt = ts

	case "updated":
		ts, err := time.Parse(timeLayout, value)
		if err != nil {
			return fmt.Errorf("bad updated timestamp %q", value)
		}
		n.UpdatedAt = ts

	default:
		return fmt.Errorf("unknown field %q", key)
	}
	return nil
}

// body reads a fenced body: an opening all-backtick line, content, and a
// closing line equal to the opening fence.
func (p *parser) body(id string) (string, error) {
	line, ok := p.next()
	if !ok || !isFence(line) {
		return "", fmt.Errorf("%w: node %s: missing body fence", ErrMalformedTree, id)
	}
	fence := line

	var buf bytes.Buffer
	for {
		line, ok := p.next()
		if !ok {
			return "", fmt.Errorf("%w: node %s: unterminated body", ErrMalformedTree, id)
		}
		if line == fence {
			break
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	// Encode writes exactly one newline between body and closing fence;
	// strip exactly one so bodies round-trip byte-exact.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func isFence(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		if r != '`' {
			return false
		}
	}
	return true
}
