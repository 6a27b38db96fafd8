// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"heritage/internal/models"
)

// memRepo is an in-memory Repository that records every call.
type memRepo struct {
	mu    sync.Mutex
	terms map[uuid.UUID]models.Term
	calls []string

	// failUpdate makes the n-th Update (1-based) fail.
	failUpdate int
	updates    int
	failList   error
	failDelete error
}

func newMemRepo(terms ...models.Term) *memRepo {
	r := &memRepo{terms: make(map[uuid.UUID]models.Term)}
	for _, t := range terms {
		r.terms[t.ID] = t
	}
	return r
}

func (r *memRepo) List(_ context.Context, kind Kind) ([]models.Term, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "list")
	if r.failList != nil {
		return nil, r.failList
	}
	out := make([]models.Term, 0, len(r.terms))
	for _, t := range r.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *memRepo) Insert(_ context.Context, _ Kind, t *models.Term) (*models.Term, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "insert")
	r.terms[t.ID] = *t
	out := *t
	return &out, nil
}

func (r *memRepo) Update(_ context.Context, _ Kind, t *models.Term) (*models.Term, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.calls = append(r.calls, fmt.Sprintf("update %s", t.Name))
	if r.failUpdate == r.updates {
		return nil, errors.New("connection reset")
	}
	if _, ok := r.terms[t.ID]; !ok {
		return nil, errors.New("no rows")
	}
	r.terms[t.ID] = *t
	out := *t
	return &out, nil
}

func (r *memRepo) Delete(_ context.Context, _ Kind, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "delete")
	if r.failDelete != nil {
		return r.failDelete
	}
	delete(r.terms, id)
	return nil
}

func (r *memRepo) get(id uuid.UUID) models.Term {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terms[id]
}

func (r *memRepo) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// swapRepo adds an atomic SwapPositions to memRepo.
type swapRepo struct {
	*memRepo
}

func (r swapRepo) SwapPositions(_ context.Context, _ Kind, a, b models.Term) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "swap")
	ta, tb := r.terms[a.ID], r.terms[b.ID]
	ta.SortOrder, tb.SortOrder = b.SortOrder, a.SortOrder
	r.terms[a.ID], r.terms[b.ID] = ta, tb
	return nil
}

func term(name string, pos int, parent *models.Term) models.Term {
	t := models.Term{ID: uuid.New(), Name: name, Slug: name, IsActive: true, SortOrder: pos}
	if parent != nil {
		id := parent.ID
		t.ParentID = &id
	}
	return t
}

func names(terms []models.Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Name
	}
	return out
}

func nodeNames(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = fmt.Sprintf("%d:%s", n.Depth, n.Term.Name)
	}
	return out
}
