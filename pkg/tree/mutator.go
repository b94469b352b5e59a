package tree

import "fmt"

// Mutator wraps a Store with post-mutation validation and rollback.
//
// Every mutating call relies on the Store's pre-validation, applies the
// change, then re-verifies the global invariants. If post-validation fails,
// the store is restored to its pre-mutation snapshot and the failure is
// surfaced as ErrInvariantViolation. With correct pre-validation this path
// is unreachable; it exists as a double-check, not a primary mechanism.
type Mutator struct {
	store *Store
}

// NewMutator wraps the given store.
func NewMutator(store *Store) *Mutator {
	return &Mutator{store: store}
}

// Store returns the underlying store for read-only access.
func (m *Mutator) Store() *Store {
	return m.store
}

// Create initializes the tree with a root node.
func (m *Mutator) Create(title, body string) (string, error) {
	var id string
	err := m.commit(func() error {
		var err error
		id, err = m.store.Create(title, body)
		return err
	})
	return id, err
}

// AddChild adds a node under parentID.
func (m *Mutator) AddChild(parentID, title, body string) (string, error) {
	var id string
	err := m.commit(func() error {
		var err error
		id, err = m.store.AddChild(parentID, title, body)
		return err
	})
	return id, err
}

// Move reattaches a subtree under a new parent.
func (m *Mutator) Move(nodeID, newParentID string) error {
	return m.commit(func() error {
		return m.store.Move(nodeID, newParentID)
	})
}

// RemoveLeaf detaches and deletes a leaf node.
func (m *Mutator) RemoveLeaf(nodeID string) error {
	return m.commit(func() error {
		return m.store.RemoveLeaf(nodeID)
	})
}

// SetBody replaces a node's body text.
func (m *Mutator) SetBody(nodeID, body string) error {
	return m.commit(func() error {
		return m.store.SetBody(nodeID, body)
	})
}

// SetTitle replaces a node's title.
func (m *Mutator) SetTitle(nodeID, title string) error {
	return m.commit(func() error {
		return m.store.SetTitle(nodeID, title)
	})
}

// commit snapshots the store, applies op, and validates the result. A failed
// op returns its own error with the store untouched (Store ops pre-validate
// before mutating); a failed validation rolls back to the snapshot.
func (m *Mutator) commit(op func() error) error {
	nodes := m.store.snapshot()
	rootID := m.store.rootID

	if err := op(); err != nil {
		return err
	}

	if err := m.store.Validate(); err != nil {
		m.store.restore(nodes, rootID)
		return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	}

	return nil
}
