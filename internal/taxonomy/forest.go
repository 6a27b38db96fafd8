// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"heritage/internal/models"
)

// Node is a term positioned in depth-first render order.
type Node struct {
	Term  models.Term
	Depth int
}

// Forest is an immutable snapshot of one taxonomy. Terms are kept in a
// flat slice; parent references are resolved through an id index.
type Forest struct {
	terms    []models.Term
	index    map[uuid.UUID]int
	children map[uuid.UUID][]int // uuid.Nil holds the roots
}

// NewForest indexes terms. The input slice is copied.
func NewForest(terms []models.Term) *Forest {
	f := &Forest{
		terms:    make([]models.Term, len(terms)),
		index:    make(map[uuid.UUID]int, len(terms)),
		children: make(map[uuid.UUID][]int),
	}
	copy(f.terms, terms)
	sort.SliceStable(f.terms, func(i, j int) bool { return less(f.terms[i], f.terms[j]) })

	for i, t := range f.terms {
		f.index[t.ID] = i
	}
	for i, t := range f.terms {
		parent := uuid.Nil
		if t.ParentID != nil {
			parent = *t.ParentID
		}
		// terms are already sorted, so each child list is too
		f.children[parent] = append(f.children[parent], i)
	}
	return f
}

// less orders siblings by (position, name). The id breaks remaining ties so
// repeated loads of unchanged data render identically.
func less(a, b models.Term) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID.String() < b.ID.String()
}

// Len returns the number of terms in the snapshot.
func (f *Forest) Len() int {
	return len(f.terms)
}

// Terms returns all terms sorted by (position, name).
func (f *Forest) Terms() []models.Term {
	out := make([]models.Term, len(f.terms))
	copy(out, f.terms)
	return out
}

// Get returns the term with the given id.
func (f *Forest) Get(id uuid.UUID) (models.Term, bool) {
	i, ok := f.index[id]
	if !ok {
		return models.Term{}, false
	}
	return f.terms[i], true
}

// Roots returns the terms without a parent.
func (f *Forest) Roots() []models.Term {
	return f.collect(f.children[uuid.Nil])
}

// Children returns the direct children of id.
func (f *Forest) Children(id uuid.UUID) []models.Term {
	if id == uuid.Nil {
		return nil
	}
	return f.collect(f.children[id])
}

// Siblings returns the terms sharing parent (nil for roots).
func (f *Forest) Siblings(parent *uuid.UUID) []models.Term {
	if parent == nil {
		return f.Roots()
	}
	return f.Children(*parent)
}

func (f *Forest) collect(idx []int) []models.Term {
	out := make([]models.Term, 0, len(idx))
	for _, i := range idx {
		out = append(out, f.terms[i])
	}
	return out
}

// Walk visits every term reachable from a root, depth first, each level in
// sibling order. Terms caught in a stored cycle are never reached from a
// root and are not visited.
func (f *Forest) Walk(fn func(Node)) {
	for _, i := range f.children[uuid.Nil] {
		f.walk(i, 0, fn)
	}
}

func (f *Forest) walk(i, depth int, fn func(Node)) {
	t := f.terms[i]
	fn(Node{Term: t, Depth: depth})
	for _, c := range f.children[t.ID] {
		f.walk(c, depth+1, fn)
	}
}

// Nodes returns the full render order.
func (f *Forest) Nodes() []Node {
	nodes := make([]Node, 0, len(f.terms))
	f.Walk(func(n Node) { nodes = append(nodes, n) })
	return nodes
}

// Detached returns terms that are not reachable from any root, either
// because their parent is missing or because they sit in a cycle.
func (f *Forest) Detached() []models.Term {
	seen := make(map[uuid.UUID]bool, len(f.terms))
	f.Walk(func(n Node) { seen[n.Term.ID] = true })

	var out []models.Term
	for _, t := range f.terms {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// Ancestors returns the parent chain of id, nearest first. The walk stops
// at a missing parent or at the first repeated term.
func (f *Forest) Ancestors(id uuid.UUID) []models.Term {
	var out []models.Term
	seen := map[uuid.UUID]bool{id: true}

	t, ok := f.Get(id)
	for ok && t.ParentID != nil && !seen[*t.ParentID] {
		seen[*t.ParentID] = true
		t, ok = f.Get(*t.ParentID)
		if ok {
			out = append(out, t)
		}
	}
	return out
}

// descends reports whether candidate is id or has id in its ancestor chain.
func (f *Forest) descends(candidate, id uuid.UUID) bool {
	if candidate == id {
		return true
	}
	for _, a := range f.Ancestors(candidate) {
		if a.ID == id {
			return true
		}
	}
	return false
}

// ParentOptions lists the terms that may become the parent of id, in
// render order. The term itself and its descendants are excluded.
func (f *Forest) ParentOptions(id uuid.UUID) []Node {
	var out []Node
	f.Walk(func(n Node) {
		if !f.descends(n.Term.ID, id) {
			out = append(out, n)
		}
	})
	return out
}

// FilterResult is the outcome of Filter.
type FilterResult struct {
	Nodes []Node
	// HiddenMatches are non-root terms that match the query but are not
	// displayed because their root did not match.
	HiddenMatches []models.Term
}

// Filter narrows the displayed roots to those whose name or slug contains
// q, case-insensitively. A displayed root brings its whole subtree.
// Descendant matches under a non-matching root are reported separately
// rather than re-attached.
func (f *Forest) Filter(q string) FilterResult {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return FilterResult{Nodes: f.Nodes()}
	}

	var res FilterResult
	shown := make(map[uuid.UUID]bool)
	for _, i := range f.children[uuid.Nil] {
		if !matches(f.terms[i], q) {
			continue
		}
		f.walk(i, 0, func(n Node) {
			shown[n.Term.ID] = true
			res.Nodes = append(res.Nodes, n)
		})
	}
	for _, t := range f.terms {
		if !shown[t.ID] && matches(t, q) {
			res.HiddenMatches = append(res.HiddenMatches, t)
		}
	}
	return res
}

func matches(t models.Term, q string) bool {
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Slug), q)
}

// With returns a copy of the forest where t replaces the term with the same
// id, or is added when absent.
func (f *Forest) With(t models.Term) *Forest {
	terms := f.Terms()
	if i, ok := f.index[t.ID]; ok {
		terms[i] = t
	} else {
		terms = append(terms, t)
	}
	return NewForest(terms)
}

// Without returns a copy of the forest with id removed. Its children keep
// their parent reference and become detached until the next load.
func (f *Forest) Without(id uuid.UUID) *Forest {
	terms := make([]models.Term, 0, len(f.terms))
	for _, t := range f.terms {
		if t.ID != id {
			terms = append(terms, t)
		}
	}
	return NewForest(terms)
}
