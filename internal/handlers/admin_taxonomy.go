// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritage/internal/render"
	"heritage/internal/taxonomy"
)

// termRow is one rendered row of the tree editor.
type termRow struct {
	taxonomy.Node
	Parents []taxonomy.Node // valid parent choices, never self or a descendant
	First   bool            // no sibling above
	Last    bool            // no sibling below
}

// taxonomyRequest resolves the kind URL parameter, loads the snapshot and
// returns an editor for it. It writes the error response itself.
func (a *Admin) taxonomyRequest(w http.ResponseWriter, r *http.Request) (*taxonomy.Editor, *taxonomy.Forest, bool) {
	kind, ok := taxonomy.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		http.NotFound(w, r)
		return nil, nil, false
	}
	ed := taxonomy.NewEditor(a.terms, kind, taxonomy.WithInflight(a.inflight))
	f, err := ed.Load(r.Context())
	if err != nil {
		fail(w, "load taxonomy failed", err)
		return nil, nil, false
	}
	return ed, f, true
}

// renderTaxonomy renders the editor for snapshot f, applying the ?q=
// filter the page was showing.
func (a *Admin) renderTaxonomy(w http.ResponseWriter, r *http.Request, ed *taxonomy.Editor, f *taxonomy.Forest) {
	q := strings.TrimSpace(r.FormValue("q"))
	res := f.Filter(q)

	rows := make([]termRow, len(res.Nodes))
	for i, n := range res.Nodes {
		siblings := f.Siblings(n.Term.ParentID)
		rows[i] = termRow{
			Node:    n,
			Parents: f.ParentOptions(n.Term.ID),
			First:   len(siblings) > 0 && siblings[0].ID == n.Term.ID,
			Last:    len(siblings) > 0 && siblings[len(siblings)-1].ID == n.Term.ID,
		}
	}

	kind := ed.Kind()
	a.renderer.Page(w, r, "taxonomy", &render.PageData{
		Title:   kind.Title(),
		Section: string(kind),
		Data: map[string]any{
			"Kind":     string(kind),
			"Label":    kind.Label(),
			"Query":    q,
			"Rows":     rows,
			"Total":    f.Len(),
			"Hidden":   res.HiddenMatches,
			"Detached": f.Detached(),
			"Creating": ed.Creating(),
		},
	})
}

// afterTermChange drops every cached page (term names appear on the
// homepage and on every detail page) and re-renders the editor.
func (a *Admin) afterTermChange(w http.ResponseWriter, r *http.Request, ed *taxonomy.Editor, f *taxonomy.Forest) {
	a.pageCache.InvalidateAll(context.WithoutCancel(r.Context()))
	a.renderTaxonomy(w, r, ed, f)
}

// TaxonomyPage renders the tree editor for a kind.
func (a *Admin) TaxonomyPage(w http.ResponseWriter, r *http.Request) {
	ed, f, ok := a.taxonomyRequest(w, r)
	if !ok {
		return
	}
	a.renderTaxonomy(w, r, ed, f)
}

// TermCreate appends a new root term.
func (a *Admin) TermCreate(w http.ResponseWriter, r *http.Request) {
	ed, f, ok := a.taxonomyRequest(w, r)
	if !ok {
		return
	}
	f, _, err := ed.Create(r.Context(), f, r.FormValue("label"))
	if err != nil {
		fail(w, "create term failed", err)
		return
	}
	a.afterTermChange(w, r, ed, f)
}

// TermCommit is the commit-on-blur endpoint for the text fields.
func (a *Admin) TermCommit(w http.ResponseWriter, r *http.Request) {
	ed, f, ok := a.taxonomyRequest(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	field, ok := taxonomy.ParseField(chi.URLParam(r, "field"))
	if !ok {
		fail(w, "commit term failed", taxonomy.ErrUnknownField)
		return
	}
	f, err := ed.Commit(r.Context(), f, id, field, r.FormValue("value"))
	if err != nil {
		fail(w, "commit term failed", err)
		return
	}
	a.afterTermChange(w, r, ed, f)
}

// TermActive sets the active flag from the "active" form value.
func (a *Admin) TermActive(w http.ResponseWriter, r *http.Request) {
	ed, f, ok := a.taxonomyRequest(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	f, err := ed.SetActive(r.Context(), f, id, formBool(r, "active"))
	if err != nil {
		fail(w, "toggle term failed", err)
		return
	}
	a.afterTermChange(w, r, ed, f)
}

// TermParent reparents a term. An empty parent_id makes it a root.
func (a *Admin) TermParent(w http.ResponseWriter, r *http.Request) {
	ed, f, ok := a.taxonomyRequest(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var parent *uuid.UUID
	if raw := r.FormValue("parent_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		parent = &pid
	}
	f, err := ed.Reparent(r.Context(), f, id, parent)
	if err != nil {
		fail(w, "reparent term failed", err)
		return
	}
	a.afterTermChange(w, r, ed, f)
}

// TermMove swaps a term with its sibling above or below.
func (a *Admin) TermMove(w http.ResponseWriter, r *http.Request) {
	ed, f, ok := a.taxonomyRequest(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	dir, ok := taxonomy.ParseDirection(chi.URLParam(r, "dir"))
	if !ok {
		http.Error(w, "Invalid direction", http.StatusBadRequest)
		return
	}
	f, err := ed.Move(r.Context(), f, id, dir)
	if err != nil {
		fail(w, "move term failed", err)
		return
	}
	a.afterTermChange(w, r, ed, f)
}

// TermDelete removes a term. The request must carry confirm=yes; without
// it nothing is deleted and 409 is returned.
func (a *Admin) TermDelete(w http.ResponseWriter, r *http.Request) {
	ed, f, ok := a.taxonomyRequest(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	f, deleted, err := ed.Delete(r.Context(), f, id, confirmation(r))
	if err != nil {
		fail(w, "delete term failed", err)
		return
	}
	if !deleted {
		http.Error(w, taxonomy.DeletePrompt, http.StatusConflict)
		return
	}
	a.afterTermChange(w, r, ed, f)
}

// confirmation reads the user's answer to a delete prompt.
func confirmation(r *http.Request) taxonomy.Confirmer {
	return taxonomy.Confirmed(r.FormValue("confirm") == "yes")
}

// formBool reads a checkbox or "true"/"false" form value.
func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.FormValue(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// termOptions flattens a kind's forest into render order for checklists.
func (a *Admin) termOptions(ctx context.Context, kind taxonomy.Kind) ([]taxonomy.Node, error) {
	terms, err := a.terms.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	return taxonomy.NewForest(terms).Nodes(), nil
}

// termIDs parses every value of a multi-value form field as a UUID,
// skipping blanks.
func termIDs(r *http.Request, key string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, raw := range r.Form[key] {
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
