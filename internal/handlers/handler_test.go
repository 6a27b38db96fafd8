// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// an in-memory taxonomy repository and an admin router wired the way the
// production router mounts the taxonomy endpoints.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"heritage/internal/models"
	"heritage/internal/render"
	"heritage/internal/taxonomy"
)

// memTerms is a taxonomy.Repository backed by maps.
type memTerms struct {
	mu    sync.Mutex
	terms map[taxonomy.Kind]map[uuid.UUID]models.Term
}

func newMemTerms(seed map[taxonomy.Kind][]models.Term) *memTerms {
	m := &memTerms{terms: make(map[taxonomy.Kind]map[uuid.UUID]models.Term)}
	for kind, terms := range seed {
		m.terms[kind] = make(map[uuid.UUID]models.Term)
		for _, t := range terms {
			m.terms[kind][t.ID] = t
		}
	}
	return m
}

func (m *memTerms) List(_ context.Context, kind taxonomy.Kind) ([]models.Term, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Term, 0, len(m.terms[kind]))
	for _, t := range m.terms[kind] {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTerms) Insert(_ context.Context, kind taxonomy.Kind, t *models.Term) (*models.Term, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terms[kind] == nil {
		m.terms[kind] = make(map[uuid.UUID]models.Term)
	}
	m.terms[kind][t.ID] = *t
	out := *t
	return &out, nil
}

func (m *memTerms) Update(_ context.Context, kind taxonomy.Kind, t *models.Term) (*models.Term, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.terms[kind][t.ID]; !ok {
		return nil, taxonomy.ErrNotFound
	}
	m.terms[kind][t.ID] = *t
	out := *t
	return &out, nil
}

func (m *memTerms) Delete(_ context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.terms[kind], id)
	for tid, t := range m.terms[kind] {
		if t.ParentID != nil && *t.ParentID == id {
			t.ParentID = nil
			m.terms[kind][tid] = t
		}
	}
	return nil
}

func (m *memTerms) get(kind taxonomy.Kind, id uuid.UUID) (models.Term, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.terms[kind][id]
	return t, ok
}

// testAdmin builds an Admin with only the taxonomy collaborators set.
func testAdmin(t *testing.T, repo taxonomy.Repository) *Admin {
	t.Helper()
	rn, err := render.New(true)
	require.NoError(t, err)
	return NewAdmin(AdminDeps{Renderer: rn, Terms: repo})
}

// taxonomyRouter mounts the tree editor endpoints.
func taxonomyRouter(a *Admin) http.Handler {
	r := chi.NewRouter()
	r.Get("/admin/taxonomy/{kind}", a.TaxonomyPage)
	r.Post("/admin/taxonomy/{kind}/terms", a.TermCreate)
	r.Post("/admin/taxonomy/{kind}/terms/{id}/field/{field}", a.TermCommit)
	r.Post("/admin/taxonomy/{kind}/terms/{id}/active", a.TermActive)
	r.Post("/admin/taxonomy/{kind}/terms/{id}/parent", a.TermParent)
	r.Post("/admin/taxonomy/{kind}/terms/{id}/move/{dir}", a.TermMove)
	r.Delete("/admin/taxonomy/{kind}/terms/{id}", a.TermDelete)
	return r
}

// htmx issues an HTMX request with form values and returns the recorder.
// DELETE values travel in the query string, as HTMX sends them.
func htmx(h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if method == http.MethodDelete || method == http.MethodGet {
		if len(form) > 0 {
			target += "?" + form.Encode()
		}
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string { return &s }
