package tree

import "errors"

// Structural errors are expected user-input conditions: they are reported to
// the caller and leave the store unchanged.
var (
	// ErrAlreadyInitialized indicates that Create was called on a store
	// that already has a root node.
	ErrAlreadyInitialized = errors.New("tree already initialized")

	// ErrParentNotFound indicates that the referenced parent id does not
	// exist in the store.
	ErrParentNotFound = errors.New("parent node not found")

	// ErrNodeNotFound indicates that the referenced node id does not exist
	// in the store.
	ErrNodeNotFound = errors.New("node not found")

	// ErrCycleDetected indicates that a move would make a node its own
	// ancestor.
	ErrCycleDetected = errors.New("move would create a cycle")

	// ErrNotALeaf indicates that removal targeted a node that still has
	// children.
	ErrNotALeaf = errors.New("node has children")

	// ErrCannotRemoveRoot indicates that removal targeted the root node.
	ErrCannotRemoveRoot = errors.New("cannot remove root node")
)

// Integrity errors indicate a logic bug or a corrupted structure. They are
// surfaced loudly and the affected tree is never auto-repaired.
var (
	// ErrCorruptedTree indicates that an upward walk revisited a node
	// before reaching the root (a pre-existing cycle).
	ErrCorruptedTree = errors.New("corrupted tree structure")

	// ErrInvariantViolation indicates that post-mutation validation failed
	// and the mutation was rolled back. Unreachable with correct
	// pre-validation.
	ErrInvariantViolation = errors.New("tree invariant violated")
)
