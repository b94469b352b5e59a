// Package tree implements the in-memory decision-tree store for one session:
// a single-rooted tree of annotated nodes with ordered children, marker
// indexing, and invariant enforcement on every mutation.
package tree

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/opsbrain/dtree/pkg/marker"
)

// Node is one annotated unit of a decision tree.
//
// All mutation goes through the Store so invariants are enforced in one
// place; Node itself only answers structural queries.
type Node struct {
	// ID is assigned at creation, immutable, and never reused even after
	// deletion.
	ID string

	// Title is a short human label.
	Title string

	// Body is free-form text content and may embed marker tags.
	Body string

	// ParentID references exactly one parent node, or is empty for the
	// root.
	ParentID string

	// Children holds child ids in insertion order, which is also display
	// order.
	Children []string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Markers is the set of tags extracted from Body at index time.
	// Derived data: recomputed on every body write and after load.
	Markers marker.Set
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// HasMarker reports whether the node's body carried the given marker at the
// last index pass.
func (n *Node) HasMarker(kind marker.Kind) bool {
	return n.Markers.Has(kind)
}

// Clone returns a deep copy of the node. Used for snapshots and for handing
// nodes across package boundaries without aliasing internal state.
func (n *Node) Clone() *Node {
	c := *n
	c.Children = slices.Clone(n.Children)
	c.Markers = marker.NewSet(n.Markers.Kinds()...)
	return &c
}

// newID returns a fresh short node id. Short uuid4 prefixes keep tree files
// readable while staying unique within a session tree; the store retires ids
// permanently on deletion so they are never reused.
func newID() string {
	return uuid.NewString()[:8]
}
