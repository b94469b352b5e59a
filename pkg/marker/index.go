package marker

// Index is a queryable view of which nodes carry which markers.
//
// It is updated incrementally: a body write touches only the changed node's
// entries. The index never owns ordering; callers that need tree order filter
// their own traversal through Contains.
type Index struct {
	// byNode maps node id -> the marker set extracted from its body.
	byNode map[string]Set

	// byKind maps marker kind -> the set of node ids carrying it.
	byKind map[Kind]map[string]struct{}
}

// NewIndex creates an empty marker index.
func NewIndex() *Index {
	return &Index{
		byNode: make(map[string]Set),
		byKind: make(map[Kind]map[string]struct{}),
	}
}

// Reindex re-extracts markers from the node's current body and replaces the
// node's entries, leaving every other node untouched.
func (i *Index) Reindex(nodeID, body string) Set {
	i.Forget(nodeID)

	s := Extract(body)
	i.byNode[nodeID] = s
	for k := range s {
		ids, ok := i.byKind[k]
		if !ok {
			ids = make(map[string]struct{})
			i.byKind[k] = ids
		}
		ids[nodeID] = struct{}{}
	}

	return s
}

// Forget removes all entries for a node, e.g. after leaf deletion.
func (i *Index) Forget(nodeID string) {
	prev, ok := i.byNode[nodeID]
	if !ok {
		return
	}

	for k := range prev {
		delete(i.byKind[k], nodeID)
	}
	delete(i.byNode, nodeID)
}

// Of returns the marker set recorded for a node. Returns an empty set for
// unknown nodes. The result is a copy; mutating it does not touch the index.
func (i *Index) Of(nodeID string) Set {
	s, ok := i.byNode[nodeID]
	if !ok {
		return Set{}
	}
	return NewSet(s.Kinds()...)
}

// Contains reports whether the node is indexed under the given kind.
func (i *Index) Contains(kind Kind, nodeID string) bool {
	ids, ok := i.byKind[kind]
	if !ok {
		return false
	}
	_, ok = ids[nodeID]
	return ok
}

// Count returns the number of nodes carrying the given kind.
func (i *Index) Count(kind Kind) int {
	return len(i.byKind[kind])
}
