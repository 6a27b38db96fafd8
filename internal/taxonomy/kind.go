// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy implements the hierarchical term editor shared by the
// category and region taxonomies: loading a forest of self-referencing
// terms, creating placeholders, commit-on-blur field edits, reparenting,
// sibling reordering and confirmed deletes.
package taxonomy

import "errors"

// Kind selects one of the two independent taxonomies.
type Kind string

const (
	Categories Kind = "categories"
	Regions    Kind = "regions"
)

// Kinds lists every taxonomy kind in display order.
var Kinds = []Kind{Categories, Regions}

// ParseKind validates a kind coming from a URL or CLI flag.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case Categories, Regions:
		return Kind(s), true
	}
	return "", false
}

// Label is the placeholder name given to newly created terms.
func (k Kind) Label() string {
	if k == Regions {
		return "New Region"
	}
	return "New Category"
}

// Title is the heading shown above the editor.
func (k Kind) Title() string {
	if k == Regions {
		return "Regions"
	}
	return "Categories"
}

var (
	// ErrNotFound is returned when a term id is not part of the snapshot.
	ErrNotFound = errors.New("taxonomy: term not found")

	// ErrSelfParent is returned when a term is proposed as its own parent.
	ErrSelfParent = errors.New("taxonomy: a term cannot be its own parent")

	// ErrCycle is returned when the proposed parent descends from the term.
	ErrCycle = errors.New("taxonomy: parent would create a cycle")

	// ErrBusy is returned when the same operation on the same term is
	// already in flight.
	ErrBusy = errors.New("taxonomy: operation already in progress")

	// ErrUnknownField is returned by Commit for fields it does not edit.
	ErrUnknownField = errors.New("taxonomy: unknown field")
)
