// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"heritage/internal/models"
	"heritage/internal/render"
	"heritage/internal/store"
	"heritage/internal/taxonomy"
)

// deleteListingPrompt is returned with 409 when a listing delete arrives
// without confirmation.
const deleteListingPrompt = "Delete this listing? Its gallery, sources and story go with it."

// invalidate drops the cached homepage and the given listing pages. It is
// detached from the request context so a client disconnect cannot skip it.
func (a *Admin) invalidate(r *http.Request, slugs ...string) {
	a.pageCache.InvalidateListing(context.WithoutCancel(r.Context()), slugs...)
}

// listingID parses {id} and loads the listing, answering 400 or 404.
func (a *Admin) listingID(w http.ResponseWriter, r *http.Request) (*models.Site, bool) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return nil, false
	}
	site, err := a.sites.FindByID(r.Context(), id)
	if err != nil {
		fail(w, "find listing failed", err)
		return nil, false
	}
	if site == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}
	return site, true
}

// ListingsList renders the listings table with an optional ?q= search.
func (a *Admin) ListingsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	items, err := a.sites.AdminList(r.Context(), q)
	if err != nil {
		slog.Error("list listings failed", "error", err)
	}

	a.renderer.Page(w, r, "listings", &render.PageData{
		Title:   "Listings",
		Section: "listings",
		Data: map[string]any{
			"Items": items,
			"Query": q,
			"Limit": store.AdminListLimit,
		},
	})
}

// ListingCreate inserts an untitled draft and opens its editor.
func (a *Admin) ListingCreate(w http.ResponseWriter, r *http.Request) {
	site, err := a.sites.CreateUntitled(r.Context())
	if err != nil {
		fail(w, "create listing failed", err)
		return
	}
	slog.Info("listing created", "id", site.ID, "slug", site.Slug)
	redirect(w, r, "/admin/listings/"+site.ID.String())
}

// ListingDuplicate copies a listing and opens the copy.
func (a *Admin) ListingDuplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	dup, err := a.sites.Duplicate(r.Context(), id)
	if err != nil {
		fail(w, "duplicate listing failed", err)
		return
	}
	if dup == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	slog.Info("listing duplicated", "from", id, "to", dup.ID)
	redirect(w, r, "/admin/listings/"+dup.ID.String())
}

// ListingDelete removes a listing after confirm=yes. Gallery objects are
// removed from storage best-effort once the rows are gone.
func (a *Admin) ListingDelete(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	if r.FormValue("confirm") != "yes" {
		http.Error(w, deleteListingPrompt, http.StatusConflict)
		return
	}

	ctx := r.Context()
	images, err := a.gallery.List(ctx, site.ID, 0)
	if err != nil {
		slog.Warn("list gallery before delete failed", "error", err, "site", site.ID)
	}
	if err := a.sites.Delete(ctx, site.ID); err != nil {
		fail(w, "delete listing failed", err)
		return
	}
	for _, img := range images {
		a.removeImageObjects(ctx, &img)
	}
	a.invalidate(r, site.Slug)
	redirect(w, r, "/admin/listings")
}

// ListingEdit renders the listing editor form.
func (a *Admin) ListingEdit(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	a.renderListing(w, r, http.StatusOK, site, nil, "")
}

// ListingUpdate saves the editor form, then diff-syncs the category and
// region checklists.
func (a *Admin) ListingUpdate(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	oldSlug := site.Slug

	cats, err := termIDs(r, "category_ids")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	regs, err := termIDs(r, "region_ids")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if msg := applySiteForm(r, site); msg != "" {
		a.renderListing(w, r, http.StatusUnprocessableEntity, site, &selection{cats, regs}, msg)
		return
	}

	ctx := r.Context()
	updated, err := a.sites.Update(ctx, site)
	if errors.Is(err, store.ErrSlugTaken) {
		a.renderListing(w, r, http.StatusConflict, site, &selection{cats, regs},
			"Another listing already uses the slug \""+site.Slug+"\".")
		return
	}
	if err != nil {
		fail(w, "update listing failed", err)
		return
	}
	if updated == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err := a.sites.SyncTerms(ctx, updated.ID, taxonomy.Categories, cats); err != nil {
		fail(w, "sync listing categories failed", err)
		return
	}
	if err := a.sites.SyncTerms(ctx, updated.ID, taxonomy.Regions, regs); err != nil {
		fail(w, "sync listing regions failed", err)
		return
	}

	a.invalidate(r, oldSlug, updated.Slug)
	slog.Info("listing updated", "id", updated.ID, "slug", updated.Slug)

	data := a.listingPageData(r, updated, nil, "")
	data.Flashes = []render.Flash{{Type: "success", Message: "Listing saved."}}
	a.renderer.Page(w, r, "listing_edit", data)
}

// selection carries checklist state across a failed submit.
type selection struct {
	cats, regs []uuid.UUID
}

func (a *Admin) renderListing(w http.ResponseWriter, r *http.Request, status int, site *models.Site, sel *selection, errMsg string) {
	a.renderer.PageStatus(w, r, status, "listing_edit", a.listingPageData(r, site, sel, errMsg))
}

func (a *Admin) listingPageData(r *http.Request, site *models.Site, sel *selection, errMsg string) *render.PageData {
	ctx := r.Context()

	provinces, err := a.provinces.List(ctx)
	if err != nil {
		slog.Error("list provinces failed", "error", err)
	}
	cats, err := a.termOptions(ctx, taxonomy.Categories)
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}
	regs, err := a.termOptions(ctx, taxonomy.Regions)
	if err != nil {
		slog.Error("list regions failed", "error", err)
	}

	if sel == nil {
		sel = &selection{}
		if sel.cats, err = a.sites.TermIDs(ctx, site.ID, taxonomy.Categories); err != nil {
			slog.Error("load listing categories failed", "error", err)
		}
		if sel.regs, err = a.sites.TermIDs(ctx, site.ID, taxonomy.Regions); err != nil {
			slog.Error("load listing regions failed", "error", err)
		}
	}

	return &render.PageData{
		Title:   site.Title,
		Section: "listings",
		Data: map[string]any{
			"Site":         site,
			"Tab":          "details",
			"Values":       siteValues(site),
			"Groups":       siteFieldGroups,
			"Provinces":    provinces,
			"Categories":   cats,
			"Regions":      regs,
			"SelectedCats": sel.cats,
			"SelectedRegs": sel.regs,
			"Error":        errMsg,
			"HasStorage":   a.objects != nil,
		},
	}
}
