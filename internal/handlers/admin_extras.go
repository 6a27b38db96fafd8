// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritage/internal/models"
	"heritage/internal/render"
	"heritage/internal/taxonomy"
)

// ExtrasPage renders the bibliography and custom sections of a listing.
func (a *Admin) ExtrasPage(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	a.renderExtras(w, r, http.StatusOK, site, "")
}

func (a *Admin) renderExtras(w http.ResponseWriter, r *http.Request, status int, site *models.Site, errMsg string) {
	ctx := r.Context()
	sources, err := a.sources.List(ctx, site.ID)
	if err != nil {
		slog.Error("list bibliography failed", "error", err)
	}
	sections, err := a.sections.List(ctx, site.ID)
	if err != nil {
		slog.Error("list custom sections failed", "error", err)
	}
	a.renderer.PageStatus(w, r, status, "listing_extras", &render.PageData{
		Title:   site.Title + " · Sources & sections",
		Section: "listings",
		Data: map[string]any{
			"Site":     site,
			"Tab":      "extras",
			"Sources":  sources,
			"Sections": sections,
			"Error":    errMsg,
		},
	})
}

// afterExtrasChange invalidates the listing page and re-renders.
func (a *Admin) afterExtrasChange(w http.ResponseWriter, r *http.Request, site *models.Site) {
	a.invalidate(r, site.Slug)
	a.renderExtras(w, r, http.StatusOK, site, "")
}

// --- Bibliography ---

// SourceAdd appends an "Untitled" source.
func (a *Admin) SourceAdd(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	if _, err := a.sources.Add(r.Context(), site.ID); err != nil {
		fail(w, "add source failed", err)
		return
	}
	a.afterExtrasChange(w, r, site)
}

// SourceUpdate saves every field of a source.
func (a *Admin) SourceUpdate(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "sourceID")
	if !ok {
		return
	}
	src := &models.BibliographySource{
		ID:              id,
		SiteID:          site.ID,
		Title:           r.FormValue("title"),
		Authors:         optionalText(r.FormValue("authors")),
		Year:            optionalText(r.FormValue("year")),
		PublisherOrSite: optionalText(r.FormValue("publisher_or_site")),
		URL:             optionalText(r.FormValue("url")),
		Notes:           optionalText(r.FormValue("notes")),
	}
	if msg := validateSource(src); msg != "" {
		a.renderExtras(w, r, http.StatusUnprocessableEntity, site, msg)
		return
	}
	if err := a.sources.Update(r.Context(), src); err != nil {
		fail(w, "update source failed", err)
		return
	}
	a.afterExtrasChange(w, r, site)
}

// SourceMove swaps a source with its neighbour.
func (a *Admin) SourceMove(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "sourceID")
	if !ok {
		return
	}
	dir, ok := taxonomy.ParseDirection(chi.URLParam(r, "dir"))
	if !ok {
		http.Error(w, "Invalid direction", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	sources, err := a.sources.List(ctx, site.ID)
	if err != nil {
		fail(w, "list bibliography failed", err)
		return
	}
	ids := make([]uuid.UUID, len(sources))
	for i, s := range sources {
		ids[i] = s.ID
	}
	if other, ok := neighbor(ids, id, dir); ok {
		if err := a.sources.Swap(ctx, id, other); err != nil {
			fail(w, "move source failed", err)
			return
		}
	}
	a.afterExtrasChange(w, r, site)
}

// SourceDelete removes a source after confirm=yes.
func (a *Admin) SourceDelete(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "sourceID")
	if !ok {
		return
	}
	if r.FormValue("confirm") != "yes" {
		http.Error(w, "Delete this source?", http.StatusConflict)
		return
	}
	if err := a.sources.Delete(r.Context(), site.ID, id); err != nil {
		fail(w, "delete source failed", err)
		return
	}
	a.afterExtrasChange(w, r, site)
}

// --- Custom sections ---

// SectionAdd appends a "New Section".
func (a *Admin) SectionAdd(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	if _, err := a.sections.Add(r.Context(), site.ID); err != nil {
		fail(w, "add section failed", err)
		return
	}
	a.afterExtrasChange(w, r, site)
}

// SectionUpdate saves a section's title and content.
func (a *Admin) SectionUpdate(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "sectionID")
	if !ok {
		return
	}
	sec := &models.CustomSection{
		ID:      id,
		SiteID:  site.ID,
		Title:   r.FormValue("title"),
		Content: optionalText(r.FormValue("content")),
	}
	if msg := validateSection(sec); msg != "" {
		a.renderExtras(w, r, http.StatusUnprocessableEntity, site, msg)
		return
	}
	if err := a.sections.Update(r.Context(), sec); err != nil {
		fail(w, "update section failed", err)
		return
	}
	a.afterExtrasChange(w, r, site)
}

// SectionMove swaps a section with its neighbour.
func (a *Admin) SectionMove(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "sectionID")
	if !ok {
		return
	}
	dir, ok := taxonomy.ParseDirection(chi.URLParam(r, "dir"))
	if !ok {
		http.Error(w, "Invalid direction", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	sections, err := a.sections.List(ctx, site.ID)
	if err != nil {
		fail(w, "list custom sections failed", err)
		return
	}
	ids := make([]uuid.UUID, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	if other, ok := neighbor(ids, id, dir); ok {
		if err := a.sections.Swap(ctx, id, other); err != nil {
			fail(w, "move section failed", err)
			return
		}
	}
	a.afterExtrasChange(w, r, site)
}

// SectionDelete removes a section after confirm=yes.
func (a *Admin) SectionDelete(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "sectionID")
	if !ok {
		return
	}
	if r.FormValue("confirm") != "yes" {
		http.Error(w, "Delete this section?", http.StatusConflict)
		return
	}
	if err := a.sections.Delete(r.Context(), site.ID, id); err != nil {
		fail(w, "delete section failed", err)
		return
	}
	a.afterExtrasChange(w, r, site)
}
