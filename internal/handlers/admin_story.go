// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritage/internal/models"
	"heritage/internal/render"
	"heritage/internal/storage"
	"heritage/internal/taxonomy"
)

// StoryPage renders the photo story editor of a listing.
func (a *Admin) StoryPage(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	a.renderStory(w, r, site)
}

func (a *Admin) renderStory(w http.ResponseWriter, r *http.Request, site *models.Site) {
	story, err := a.stories.Get(r.Context(), site.ID)
	if err != nil {
		slog.Error("load photo story failed", "error", err)
	}
	a.renderer.Page(w, r, "listing_story", &render.PageData{
		Title:   site.Title + " · Photo story",
		Section: "listings",
		Data: map[string]any{
			"Site":       site,
			"Tab":        "story",
			"Story":      story,
			"HasStorage": a.objects != nil,
		},
	})
}

// loadStory returns the stored story header, or an empty one.
func (a *Admin) loadStory(w http.ResponseWriter, r *http.Request, site *models.Site) (*models.PhotoStory, bool) {
	story, err := a.stories.Get(r.Context(), site.ID)
	if err != nil {
		fail(w, "load photo story failed", err)
		return nil, false
	}
	if story == nil {
		story = &models.PhotoStory{SiteID: site.ID}
	}
	return story, true
}

// StorySave upserts the story subtitle.
func (a *Admin) StorySave(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	story, ok := a.loadStory(w, r, site)
	if !ok {
		return
	}
	story.Subtitle = optionalText(r.FormValue("subtitle"))
	if err := a.stories.Upsert(r.Context(), story); err != nil {
		fail(w, "save photo story failed", err)
		return
	}
	a.invalidate(r, site.Slug)
	a.renderStory(w, r, site)
}

// StoryHeroUpload replaces the story hero photo.
func (a *Admin) StoryHeroUpload(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	up, ok := a.formUpload(w, r, "file")
	if !ok {
		return
	}
	story, ok := a.loadStory(w, r, site)
	if !ok {
		return
	}

	ctx := r.Context()
	url, err := a.put(ctx, storage.SiteKey(storage.StoryHero, site.ID, up.name, time.Now()), up)
	if err != nil {
		fail(w, "story hero upload failed", err)
		return
	}
	previous := story.HeroPhotoURL
	story.HeroPhotoURL = &url
	if err := a.stories.Upsert(ctx, story); err != nil {
		fail(w, "save photo story failed", err)
		return
	}
	a.removeURL(ctx, previous)
	a.invalidate(r, site.Slug)
	a.renderStory(w, r, site)
}

// storyItem finds {itemID} among the listing's story items.
func (a *Admin) storyItem(w http.ResponseWriter, r *http.Request, site *models.Site) (*models.PhotoStoryItem, []models.PhotoStoryItem, bool) {
	id, ok := urlID(w, r, "itemID")
	if !ok {
		return nil, nil, false
	}
	items, err := a.stories.Items(r.Context(), site.ID)
	if err != nil {
		fail(w, "list story items failed", err)
		return nil, nil, false
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], items, true
		}
	}
	http.Error(w, "Not Found", http.StatusNotFound)
	return nil, nil, false
}

// StoryItemAdd appends an empty text block.
func (a *Admin) StoryItemAdd(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	exists, err := a.stories.Exists(ctx, site.ID)
	if err != nil {
		fail(w, "load photo story failed", err)
		return
	}
	if !exists {
		if err := a.stories.Upsert(ctx, &models.PhotoStory{SiteID: site.ID}); err != nil {
			fail(w, "create photo story failed", err)
			return
		}
	}
	if _, err := a.stories.AddItem(ctx, &models.PhotoStoryItem{SiteID: site.ID}); err != nil {
		fail(w, "add story item failed", err)
		return
	}
	a.invalidate(r, site.Slug)
	a.renderStory(w, r, site)
}

// StoryItemUpdate saves an item's text block.
func (a *Admin) StoryItemUpdate(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	item, _, ok := a.storyItem(w, r, site)
	if !ok {
		return
	}
	item.TextBlock = optionalText(r.FormValue("text_block"))
	if err := a.stories.UpdateItem(r.Context(), item); err != nil {
		fail(w, "update story item failed", err)
		return
	}
	a.invalidate(r, site.Slug)
	a.renderStory(w, r, site)
}

// StoryItemImage uploads or replaces an item's image.
func (a *Admin) StoryItemImage(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	up, ok := a.formUpload(w, r, "file")
	if !ok {
		return
	}
	item, _, ok := a.storyItem(w, r, site)
	if !ok {
		return
	}

	ctx := r.Context()
	url, err := a.put(ctx, storage.SiteKey(storage.Story, site.ID, up.name, time.Now()), up)
	if err != nil {
		fail(w, "story image upload failed", err)
		return
	}
	previous := item.ImageURL
	item.ImageURL = &url
	if err := a.stories.UpdateItem(ctx, item); err != nil {
		fail(w, "update story item failed", err)
		return
	}
	a.removeURL(ctx, previous)
	a.invalidate(r, site.Slug)
	a.renderStory(w, r, site)
}

// StoryItemMove swaps an item with its neighbour.
func (a *Admin) StoryItemMove(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	dir, ok := taxonomy.ParseDirection(chi.URLParam(r, "dir"))
	if !ok {
		http.Error(w, "Invalid direction", http.StatusBadRequest)
		return
	}
	item, items, ok := a.storyItem(w, r, site)
	if !ok {
		return
	}
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if other, ok := neighbor(ids, item.ID, dir); ok {
		if err := a.stories.SwapItems(r.Context(), item.ID, other); err != nil {
			fail(w, "move story item failed", err)
			return
		}
		a.invalidate(r, site.Slug)
	}
	a.renderStory(w, r, site)
}

// StoryItemDelete removes an item after confirm=yes, then its image
// best-effort.
func (a *Admin) StoryItemDelete(w http.ResponseWriter, r *http.Request) {
	site, ok := a.listingID(w, r)
	if !ok {
		return
	}
	item, _, ok := a.storyItem(w, r, site)
	if !ok {
		return
	}
	if r.FormValue("confirm") != "yes" {
		http.Error(w, "Delete this story block?", http.StatusConflict)
		return
	}
	ctx := r.Context()
	if err := a.stories.DeleteItem(ctx, item.ID); err != nil {
		fail(w, "delete story item failed", err)
		return
	}
	a.removeURL(ctx, item.ImageURL)
	a.invalidate(r, site.Slug)
	a.renderStory(w, r, site)
}
