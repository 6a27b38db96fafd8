// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"heritage/internal/models"
	"heritage/internal/slug"
)

// Field is a text field edited with commit-on-blur.
type Field string

const (
	FieldName        Field = "name"
	FieldSlug        Field = "slug"
	FieldDescription Field = "description"
	FieldIcon        Field = "icon_key"
)

// ParseField validates a field name coming from a URL.
func ParseField(s string) (Field, bool) {
	switch Field(s) {
	case FieldName, FieldSlug, FieldDescription, FieldIcon:
		return Field(s), true
	}
	return "", false
}

// Direction is a sibling move direction.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return 0, false
}

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Delete this item? Listings linked to it will lose the tag."

// Confirmer asks the user to approve an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls fn.
func (fn ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return fn(ctx, prompt)
}

// Confirmed returns a Confirmer with a fixed answer, for callers that have
// already collected the user's decision (a form field, a CLI flag).
func Confirmed(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return answer })
}

// Editor applies user edits to one taxonomy kind. Row operations take the
// snapshot the user acted on and return the next snapshot; persistence
// errors are returned unchanged in meaning and nothing is retried.
type Editor struct {
	repo     Repository
	kind     Kind
	now      func() time.Time
	inflight *Inflight
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock replaces time.Now for slug suffixes.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithInflight shares an in-flight tracker between editors.
func WithInflight(in *Inflight) Option {
	return func(e *Editor) { e.inflight = in }
}

// NewEditor creates an editor for kind backed by repo.
func NewEditor(repo Repository, kind Kind, opts ...Option) *Editor {
	e := &Editor{repo: repo, kind: kind, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.inflight == nil {
		e.inflight = NewInflight()
	}
	return e
}

// Kind returns the taxonomy the editor manages.
func (e *Editor) Kind() Kind {
	return e.kind
}

// Creating reports whether a create is currently running for this kind.
func (e *Editor) Creating() bool {
	return e.inflight.Busy(e.kind, uuid.Nil, OpCreate)
}

// Load fetches the whole collection.
func (e *Editor) Load(ctx context.Context) (*Forest, error) {
	terms, err := e.repo.List(ctx, e.kind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", e.kind, err)
	}
	return NewForest(terms), nil
}

// Create appends a new active root term named label (the kind's default
// label when blank). Its position is the current collection size and its
// slug carries a time-derived suffix.
func (e *Editor) Create(ctx context.Context, f *Forest, label string) (*Forest, *models.Term, error) {
	release, err := e.inflight.Acquire(e.kind, uuid.Nil, OpCreate)
	if err != nil {
		return f, nil, err
	}
	defer release()

	if strings.TrimSpace(label) == "" {
		label = e.kind.Label()
	}
	t := &models.Term{
		ID:        uuid.New(),
		Name:      label,
		Slug:      slug.Suffixed(label, e.now()),
		IsActive:  true,
		SortOrder: f.Len(),
	}

	created, err := e.repo.Insert(ctx, e.kind, t)
	if err != nil {
		return f, nil, fmt.Errorf("create %s term: %w", e.kind, err)
	}
	return f.With(*created), created, nil
}

// Commit persists a blurred text field. Committing the name while the
// stored slug is empty also derives the slug from the name; a slug commit
// is slugified on its own. A commit that changes nothing issues no write,
// so retrying a commit is safe.
func (e *Editor) Commit(ctx context.Context, f *Forest, id uuid.UUID, field Field, value string) (*Forest, error) {
	cur, ok := f.Get(id)
	if !ok {
		return f, ErrNotFound
	}

	next := cur
	switch field {
	case FieldName:
		next.Name = value
		if strings.TrimSpace(cur.Slug) == "" {
			next.Slug = slug.Make(value)
		}
	case FieldSlug:
		next.Slug = slug.Make(value)
	case FieldDescription:
		next.Description = optional(value)
	case FieldIcon:
		next.IconKey = optional(value)
	default:
		return f, ErrUnknownField
	}

	if sameFields(cur, next) {
		return f, nil
	}
	return e.update(ctx, f, next, OpCommit)
}

// SetActive toggles the active flag immediately.
func (e *Editor) SetActive(ctx context.Context, f *Forest, id uuid.UUID, active bool) (*Forest, error) {
	cur, ok := f.Get(id)
	if !ok {
		return f, ErrNotFound
	}
	if cur.IsActive == active {
		return f, nil
	}
	cur.IsActive = active
	return e.update(ctx, f, cur, OpActive)
}

// Reparent moves id under parent (nil makes it a root). The term itself
// and its descendants are refused as parents.
func (e *Editor) Reparent(ctx context.Context, f *Forest, id uuid.UUID, parent *uuid.UUID) (*Forest, error) {
	cur, ok := f.Get(id)
	if !ok {
		return f, ErrNotFound
	}
	if parent != nil {
		if *parent == id {
			return f, ErrSelfParent
		}
		if _, ok := f.Get(*parent); !ok {
			return f, fmt.Errorf("parent %s: %w", parent, ErrNotFound)
		}
		if f.descends(*parent, id) {
			return f, ErrCycle
		}
	}
	if cur.HasParent(parent) {
		return f, nil
	}
	cur.ParentID = parent
	return e.update(ctx, f, cur, OpParent)
}

func (e *Editor) update(ctx context.Context, f *Forest, t models.Term, op Op) (*Forest, error) {
	release, err := e.inflight.Acquire(e.kind, t.ID, op)
	if err != nil {
		return f, err
	}
	defer release()

	updated, err := e.repo.Update(ctx, e.kind, &t)
	if err != nil {
		return f, fmt.Errorf("update %s term: %w", e.kind, err)
	}
	return f.With(*updated), nil
}

// Move exchanges the position of id with its neighbour among siblings in
// the displayed order. At either end it does nothing. After the swap the
// whole collection is reloaded so the canonical order is shown.
//
// With a Swapper repository the exchange is a single transaction;
// otherwise it is two independent updates and a failure of the second
// leaves the first applied.
func (e *Editor) Move(ctx context.Context, f *Forest, id uuid.UUID, dir Direction) (*Forest, error) {
	cur, ok := f.Get(id)
	if !ok {
		return f, ErrNotFound
	}

	siblings := f.Siblings(cur.ParentID)
	pos := -1
	for i, s := range siblings {
		if s.ID == id {
			pos = i
			break
		}
	}
	target := pos + int(dir)
	if pos < 0 || target < 0 || target >= len(siblings) {
		return f, nil
	}
	other := siblings[target]

	release, err := e.inflight.Acquire(e.kind, id, OpMove)
	if err != nil {
		return f, err
	}
	defer release()

	if err := e.swap(ctx, cur, other); err != nil {
		return f, fmt.Errorf("move %s term: %w", e.kind, err)
	}
	return e.Load(ctx)
}

func (e *Editor) swap(ctx context.Context, a, b models.Term) error {
	if sw, ok := e.repo.(Swapper); ok {
		return sw.SwapPositions(ctx, e.kind, a, b)
	}

	first, second := a, b
	first.SortOrder, second.SortOrder = b.SortOrder, a.SortOrder
	if _, err := e.repo.Update(ctx, e.kind, &first); err != nil {
		return err
	}
	if _, err := e.repo.Update(ctx, e.kind, &second); err != nil {
		return err
	}
	return nil
}

// Delete removes id after confirm approves DeletePrompt. It reports
// whether the delete was issued. Children are left to the store's
// referential policy.
func (e *Editor) Delete(ctx context.Context, f *Forest, id uuid.UUID, confirm Confirmer) (*Forest, bool, error) {
	if _, ok := f.Get(id); !ok {
		return f, false, ErrNotFound
	}
	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		return f, false, nil
	}

	release, err := e.inflight.Acquire(e.kind, id, OpDelete)
	if err != nil {
		return f, false, err
	}
	defer release()

	if err := e.repo.Delete(ctx, e.kind, id); err != nil {
		return f, false, fmt.Errorf("delete %s term: %w", e.kind, err)
	}
	return f.Without(id), true, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func sameFields(a, b models.Term) bool {
	return a.Name == b.Name &&
		a.Slug == b.Slug &&
		deref(a.Description) == deref(b.Description) && (a.Description == nil) == (b.Description == nil) &&
		deref(a.IconKey) == deref(b.IconKey) && (a.IconKey == nil) == (b.IconKey == nil)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
