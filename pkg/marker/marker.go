// Package marker extracts and indexes the annotation tags embedded in
// decision-tree node bodies.
//
// Markers are derived data: the node body is the source of truth and the
// index is always rebuildable from scratch by re-extracting every body.
package marker

import "strings"

// Kind identifies one recognized annotation tag.
type Kind string

const (
	Decision  Kind = "Decision"
	Important Kind = "Important"
	TODO      Kind = "TODO"
	Key       Kind = "Key"
)

// labels maps each kind to the literal tag text as conventionally written in
// node bodies. Matching is case-sensitive.
var labels = map[Kind]string{
	Decision:  "Decision:",
	Important: "Important:",
	TODO:      "TODO:",
	Key:       "KEY:",
}

// Kinds returns all recognized marker kinds in canonical order.
func Kinds() []Kind {
	return []Kind{Decision, Important, TODO, Key}
}

// Label returns the literal tag text for the kind, e.g. "Decision:".
// Returns the empty string for an unrecognized kind.
func (k Kind) Label() string {
	return labels[k]
}

// Valid reports whether k is one of the recognized marker kinds.
func (k Kind) Valid() bool {
	_, ok := labels[k]
	return ok
}

// ParseKind resolves a user-supplied name ("decision", "TODO", "key") to a
// Kind. The lookup is case-insensitive; only tag matching in bodies is strict.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if strings.EqualFold(string(k), name) {
			return k, true
		}
	}
	return "", false
}

// Set is a set of marker kinds carried by a single node.
type Set map[Kind]struct{}

// NewSet builds a Set from the given kinds.
func NewSet(kinds ...Kind) Set {
	s := make(Set, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the kind.
func (s Set) Has(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Kinds returns the set members in canonical order.
func (s Set) Kinds() []Kind {
	out := make([]Kind, 0, len(s))
	for _, k := range Kinds() {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Equal reports whether two sets contain exactly the same kinds.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Extract scans a body for recognized marker labels and returns the set of
// kinds literally present. A body may carry multiple distinct markers; a
// label appearing twice still yields one set member.
func Extract(body string) Set {
	s := make(Set)
	for kind, label := range labels {
		if strings.Contains(body, label) {
			s[kind] = struct{}{}
		}
	}
	return s
}
