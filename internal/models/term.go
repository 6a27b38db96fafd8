// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"github.com/google/uuid"
)

// Term is a node of one of the self-referencing taxonomies (categories or
// regions). Both kinds share the same row shape.
type Term struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description *string    `json:"description"`
	IsActive    bool       `json:"is_active"`
	SortOrder   int        `json:"sort_order"`
	IconKey     *string    `json:"icon_key"`
}

// IsRoot returns true if the term has no parent.
func (t *Term) IsRoot() bool {
	return t.ParentID == nil
}

// HasParent reports whether the term's parent is id.
func (t *Term) HasParent(id *uuid.UUID) bool {
	if t.ParentID == nil || id == nil {
		return t.ParentID == nil && id == nil
	}
	return *t.ParentID == *id
}

// TermRef is the id/name pair used by filters and listing pages.
type TermRef struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Slug string    `json:"slug" db:"slug"`
}
