// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the heritage directory.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritage/internal/cache"
	"heritage/internal/render"
	"heritage/internal/storage"
	"heritage/internal/store"
	"heritage/internal/taxonomy"
)

// AdminDeps lists what the admin handlers need. Objects may be nil when
// object storage is not configured; upload endpoints then answer 503.
type AdminDeps struct {
	Renderer  *render.Renderer
	Terms     taxonomy.Repository
	Sites     *store.SiteStore
	Gallery   *store.GalleryStore
	Sources   *store.BibliographyStore
	Sections  *store.SectionStore
	Stories   *store.PhotoStoryStore
	Provinces *store.ProvinceStore
	Settings  *store.SettingStore
	Objects   storage.ObjectStore
	PageCache *cache.PageCache
}

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer  *render.Renderer
	terms     taxonomy.Repository
	inflight  *taxonomy.Inflight
	sites     *store.SiteStore
	gallery   *store.GalleryStore
	sources   *store.BibliographyStore
	sections  *store.SectionStore
	stories   *store.PhotoStoryStore
	provinces *store.ProvinceStore
	settings  *store.SettingStore
	objects   storage.ObjectStore
	pageCache *cache.PageCache
}

// NewAdmin creates the admin handler group. The taxonomy in-flight
// markers are shared by every request served by this group.
func NewAdmin(d AdminDeps) *Admin {
	return &Admin{
		renderer:  d.Renderer,
		terms:     d.Terms,
		inflight:  taxonomy.NewInflight(),
		sites:     d.Sites,
		gallery:   d.Gallery,
		sources:   d.Sources,
		sections:  d.Sections,
		stories:   d.Stories,
		provinces: d.Provinces,
		settings:  d.Settings,
		objects:   d.Objects,
		pageCache: d.PageCache,
	}
}

// Dashboard renders the admin landing page with one card per area.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listings, err := a.sites.Count(ctx)
	if err != nil {
		slog.Error("count listings failed", "error", err)
	}
	counts := make(map[taxonomy.Kind]int, 2)
	for _, kind := range []taxonomy.Kind{taxonomy.Categories, taxonomy.Regions} {
		terms, err := a.terms.List(ctx, kind)
		if err != nil {
			slog.Error("count terms failed", "kind", kind, "error", err)
			continue
		}
		counts[kind] = len(terms)
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"ListingCount":  listings,
			"CategoryCount": counts[taxonomy.Categories],
			"RegionCount":   counts[taxonomy.Regions],
		},
	})
}

// urlID parses the named chi URL parameter as a UUID, answering 400
// "Invalid ID" when it is malformed.
func urlID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// redirect sends the browser to url. HTMX requests get an HX-Redirect
// header instead so the whole page navigates.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// neighbor returns the id next to id in ids in direction dir, or false at
// either end.
func neighbor(ids []uuid.UUID, id uuid.UUID, dir taxonomy.Direction) (uuid.UUID, bool) {
	for i, v := range ids {
		if v != id {
			continue
		}
		j := i + int(dir)
		if j < 0 || j >= len(ids) {
			return uuid.Nil, false
		}
		return ids[j], true
	}
	return uuid.Nil, false
}
