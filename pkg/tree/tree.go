package tree

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/opsbrain/dtree/pkg/marker"
)

// Store holds all nodes of one session tree and owns invariant enforcement:
// acyclicity, single root, and valid parent links.
//
// A Store is owned exclusively by one active session; it is not safe for
// concurrent use.
type Store struct {
	sessionID string

	// nodes maps node id -> node. Nodes are never shared between stores.
	nodes map[string]*Node

	rootID string

	// seen records every id ever issued or loaded, including deleted ones,
	// so ids are never reused within a session tree.
	seen map[string]struct{}

	idx *marker.Index

	now func() time.Time
}

// NewStore creates an empty store for the given session. The tree has no
// root until Create is called.
func NewStore(sessionID string) *Store {
	return &Store{
		sessionID: sessionID,
		nodes:     make(map[string]*Node),
		seen:      make(map[string]struct{}),
		idx:       marker.NewIndex(),
		now:       time.Now,
	}
}

// Load rebuilds a store from previously serialized nodes, preserving ids,
// edges, ordering, and timestamps. Markers are not trusted from the input;
// they are re-extracted from each body.
//
// The node set is validated as a whole before the store is returned, so a
// malformed input never yields a partially valid store.
func Load(sessionID string, nodes []*Node) (*Store, error) {
	s := NewStore(sessionID)

	for _, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: nil node", ErrCorruptedTree)
		}
		if _, ok := s.nodes[n.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate node id %s", ErrCorruptedTree, n.ID)
		}

		c := n.Clone()
		c.Markers = s.idx.Reindex(c.ID, c.Body)
		s.nodes[c.ID] = c
		s.seen[c.ID] = struct{}{}

		if c.IsRoot() {
			if s.rootID != "" {
				return nil, fmt.Errorf("%w: multiple roots (%s, %s)", ErrCorruptedTree, s.rootID, c.ID)
			}
			s.rootID = c.ID
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// SessionID returns the session identifier this tree belongs to.
func (s *Store) SessionID() string {
	return s.sessionID
}

// RootID returns the root node id, or the empty string before Create.
func (s *Store) RootID() string {
	return s.rootID
}

// Len returns the number of nodes in the tree.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Get returns a copy of the node with the given id.
func (s *Store) Get(id string) (*Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n.Clone(), nil
}

// Create initializes the tree with a single root node and returns its id.
func (s *Store) Create(title, body string) (string, error) {
	if s.rootID != "" {
		return "", fmt.Errorf("%w: root %s exists", ErrAlreadyInitialized, s.rootID)
	}

	n := s.newNode(title, body)
	s.nodes[n.ID] = n
	s.rootID = n.ID

	return n.ID, nil
}

// AddChild creates a new node under parentID and returns its id. The new id
// is appended to the parent's children, preserving insertion order.
func (s *Store) AddChild(parentID, title, body string) (string, error) {
	parent, ok := s.nodes[parentID]
	if !ok {
		// Can't adopt without a parent.
		return "", fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
	}

	n := s.newNode(title, body)
	n.ParentID = parentID
	s.nodes[n.ID] = n

	parent.Children = append(parent.Children, n.ID)
	parent.UpdatedAt = n.CreatedAt

	return n.ID, nil
}

// Move reattaches nodeID (and its whole subtree) under newParentID.
//
// The move is rejected with ErrCycleDetected if newParentID is nodeID itself
// or any descendant of nodeID: reattaching a subtree under itself would make
// the node its own ancestor. On success the node is removed from its old
// parent's children and appended to the new parent's children atomically.
func (s *Store) Move(nodeID, newParentID string) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	newParent, ok := s.nodes[newParentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrParentNotFound, newParentID)
	}
	if n.IsRoot() {
		// The root cannot gain a parent without either a cycle or a
		// second root, so reject up front.
		return fmt.Errorf("%w: %s is the root", ErrCycleDetected, nodeID)
	}

	if newParentID == nodeID {
		return fmt.Errorf("%w: %s under itself", ErrCycleDetected, nodeID)
	}

	// Walk upward from the new parent to the root. If the moving node
	// appears on that path, the new parent is inside the moving subtree.
	path, err := s.ancestry(newParentID)
	if err != nil {
		return err
	}
	if slices.Contains(path, nodeID) {
		return fmt.Errorf("%w: %s is an ancestor of %s", ErrCycleDetected, nodeID, newParentID)
	}

	if n.ParentID == newParentID {
		// Already in place; still counts as a successful move.
		return nil
	}

	oldParent := s.nodes[n.ParentID]
	if oldParent == nil {
		return fmt.Errorf("%w: node %s references missing parent %s", ErrCorruptedTree, nodeID, n.ParentID)
	}

	oldParent.Children = slices.DeleteFunc(oldParent.Children, func(id string) bool {
		return id == nodeID
	})
	newParent.Children = append(newParent.Children, nodeID)
	n.ParentID = newParentID

	ts := s.now().UTC()
	n.UpdatedAt = ts
	oldParent.UpdatedAt = ts
	newParent.UpdatedAt = ts

	return nil
}

// RemoveLeaf detaches and deletes a leaf node. Removal is leaf-only so a
// deletion can never silently orphan a subtree. The removed id is retired
// and never reused.
func (s *Store) RemoveLeaf(nodeID string) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	if !n.IsLeaf() {
		return fmt.Errorf("%w: %s has %d children", ErrNotALeaf, nodeID, len(n.Children))
	}
	if n.IsRoot() {
		return fmt.Errorf("%w: %s", ErrCannotRemoveRoot, nodeID)
	}

	parent := s.nodes[n.ParentID]
	if parent == nil {
		return fmt.Errorf("%w: node %s references missing parent %s", ErrCorruptedTree, nodeID, n.ParentID)
	}

	parent.Children = slices.DeleteFunc(parent.Children, func(id string) bool {
		return id == nodeID
	})
	parent.UpdatedAt = s.now().UTC()

	delete(s.nodes, nodeID)
	s.idx.Forget(nodeID)

	return nil
}

// SetBody replaces a node's body, re-extracts its markers, and bumps
// UpdatedAt.
func (s *Store) SetBody(nodeID, body string) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	n.Body = body
	n.Markers = s.idx.Reindex(nodeID, body)
	n.UpdatedAt = s.now().UTC()

	return nil
}

// SetTitle replaces a node's title and bumps UpdatedAt. Titles carry no
// markers, so the index is untouched.
func (s *Store) SetTitle(nodeID, title string) error {
	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	n.Title = title
	n.UpdatedAt = s.now().UTC()

	return nil
}

// Walk traverses the tree in pre-order (node, then children in order,
// recursively), calling fn with a copy of each node. Traversal stops when fn
// returns false.
func (s *Store) Walk(fn func(*Node) bool) {
	if s.rootID == "" {
		return
	}
	s.walkFrom(s.rootID, fn)
}

func (s *Store) walkFrom(id string, fn func(*Node) bool) bool {
	n, ok := s.nodes[id]
	if !ok {
		return true
	}

	if !fn(n.Clone()) {
		return false
	}

	for _, child := range n.Children {
		if !s.walkFrom(child, fn) {
			return false
		}
	}

	return true
}

// Subtree returns the nodes rooted at nodeID in pre-order as a lazy,
// restartable sequence: each range over the result performs a fresh
// traversal.
func (s *Store) Subtree(nodeID string) (iter.Seq[*Node], error) {
	if _, ok := s.nodes[nodeID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	return func(yield func(*Node) bool) {
		s.walkFrom(nodeID, yield)
	}, nil
}

// NodesWith returns the ids of all nodes carrying the given marker, in tree
// pre-order.
func (s *Store) NodesWith(kind marker.Kind) []string {
	ids := []string{}
	s.Walk(func(n *Node) bool {
		if s.idx.Contains(kind, n.ID) {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// MarkersOf returns the set of marker kinds extracted from the node's body.
func (s *Store) MarkersOf(nodeID string) (marker.Set, error) {
	if _, ok := s.nodes[nodeID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return s.idx.Of(nodeID), nil
}

// Validate re-verifies the global tree invariants: exactly one root, every
// parent link resolves, parent/child links agree, children carry no
// duplicates, and every node is reachable from the root (no cycles, no
// orphan islands).
func (s *Store) Validate() error {
	if len(s.nodes) == 0 {
		if s.rootID != "" {
			return fmt.Errorf("%w: root %s set on empty tree", ErrCorruptedTree, s.rootID)
		}
		return nil
	}

	roots := 0
	for id, n := range s.nodes {
		if n.ID != id {
			return fmt.Errorf("%w: node keyed as %s has id %s", ErrCorruptedTree, id, n.ID)
		}

		if n.IsRoot() {
			roots++
			if id != s.rootID {
				return fmt.Errorf("%w: parentless node %s is not the recorded root %s", ErrCorruptedTree, id, s.rootID)
			}
		} else {
			parent, ok := s.nodes[n.ParentID]
			if !ok {
				return fmt.Errorf("%w: node %s references missing parent %s", ErrCorruptedTree, id, n.ParentID)
			}
			if !slices.Contains(parent.Children, id) {
				return fmt.Errorf("%w: parent %s does not list child %s", ErrCorruptedTree, n.ParentID, id)
			}
		}

		childSeen := make(map[string]struct{}, len(n.Children))
		for _, childID := range n.Children {
			if childID == id {
				return fmt.Errorf("%w: node %s lists itself as a child", ErrCorruptedTree, id)
			}
			if _, dup := childSeen[childID]; dup {
				return fmt.Errorf("%w: node %s lists child %s twice", ErrCorruptedTree, id, childID)
			}
			childSeen[childID] = struct{}{}

			child, ok := s.nodes[childID]
			if !ok {
				return fmt.Errorf("%w: node %s lists missing child %s", ErrCorruptedTree, id, childID)
			}
			if child.ParentID != id {
				return fmt.Errorf("%w: child %s of %s records parent %s", ErrCorruptedTree, childID, id, child.ParentID)
			}
		}
	}

	if roots != 1 {
		return fmt.Errorf("%w: %d roots", ErrCorruptedTree, roots)
	}

	// Reachability doubles as the acyclicity check: with parent/child
	// agreement already verified, a cycle would be unreachable from the
	// root.
	reached := 0
	s.Walk(func(*Node) bool {
		reached++
		return true
	})
	if reached != len(s.nodes) {
		return fmt.Errorf("%w: %d of %d nodes reachable from root", ErrCorruptedTree, reached, len(s.nodes))
	}

	return nil
}

// ancestry walks from the given id upward via parent links to the root and
// returns the visited ids, start first.
//
// This is the defensive counterpart of the preventive cycle check on Move:
// if the walk revisits a node before reaching the root, the tree is already
// corrupted and the walk aborts instead of looping forever.
func (s *Store) ancestry(id string) ([]string, error) {
	visited := make(map[string]struct{})
	path := []string{}

	for current := id; current != ""; {
		if _, loop := visited[current]; loop {
			return nil, fmt.Errorf("%w: cycle through %s", ErrCorruptedTree, current)
		}
		visited[current] = struct{}{}
		path = append(path, current)

		n, ok := s.nodes[current]
		if !ok {
			return nil, fmt.Errorf("%w: ancestry reached missing node %s", ErrCorruptedTree, current)
		}
		current = n.ParentID
	}

	return path, nil
}

// newNode allocates a node with a fresh unique id and both timestamps set.
func (s *Store) newNode(title, body string) *Node {
	id := newID()
	for {
		if _, taken := s.seen[id]; !taken {
			break
		}
		id = newID()
	}
	s.seen[id] = struct{}{}

	ts := s.now().UTC()
	n := &Node{
		ID:        id,
		Title:     title,
		Body:      body,
		Children:  []string{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	n.Markers = s.idx.Reindex(id, body)

	return n
}

// snapshot captures the full mutable state of the store for rollback.
func (s *Store) snapshot() map[string]*Node {
	nodes := make(map[string]*Node, len(s.nodes))
	for id, n := range s.nodes {
		nodes[id] = n.Clone()
	}
	return nodes
}

// restore replaces the store's state with a previously captured snapshot and
// rebuilds the marker index from it.
func (s *Store) restore(nodes map[string]*Node, rootID string) {
	s.nodes = nodes
	s.rootID = rootID
	s.idx = marker.NewIndex()
	for id, n := range nodes {
		n.Markers = s.idx.Reindex(id, n.Body)
	}
}
