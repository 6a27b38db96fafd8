// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"heritage/internal/cache"
	"heritage/internal/models"
	"heritage/internal/render"
	"heritage/internal/storage"
	"heritage/internal/store"
	"heritage/internal/taxonomy"
)

// detailGallerySize is the number of images previewed on a detail page.
const detailGallerySize = 6

// PublicDeps lists what the public handlers need. Objects may be nil.
type PublicDeps struct {
	Renderer  *render.Renderer
	Sites     *store.SiteStore
	Terms     *store.TermStore
	Gallery   *store.GalleryStore
	Sources   *store.BibliographyStore
	Sections  *store.SectionStore
	Stories   *store.PhotoStoryStore
	Provinces *store.ProvinceStore
	Settings  *store.SettingStore
	Objects   storage.ObjectStore
	PageCache *cache.PageCache
}

// Public groups handlers for the public directory. The homepage and the
// detail pages go through the Valkey page cache.
type Public struct {
	PublicDeps
}

// NewPublic creates the public handler group.
func NewPublic(d PublicDeps) *Public {
	return &Public{PublicDeps: d}
}

// writeHTML sends a rendered page.
func writeHTML(w http.ResponseWriter, status int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page)
}

// homepage loads the settings every public header shows.
func (p *Public) homepage(ctx context.Context) models.Homepage {
	home, err := p.Settings.Homepage(ctx)
	if err != nil {
		slog.Error("load homepage settings failed", "error", err)
	}
	return home
}

// activeByName lists the active terms of kind sorted by name.
func (p *Public) activeByName(ctx context.Context, kind taxonomy.Kind) ([]models.Term, error) {
	terms, err := p.Terms.ListActive(ctx, kind)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(terms, func(a, b models.Term) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return terms, nil
}

// notFound renders the public 404 page.
func (p *Public) notFound(w http.ResponseWriter, r *http.Request) {
	page, err := p.Renderer.Public("not_found", &render.PublicData{
		Title: "Not found",
		Home:  p.homepage(r.Context()),
	})
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, page)
}

// serverError logs err and answers a plain 500.
func serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Homepage renders the hero and the region and category lists.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := p.PageCache.Render(ctx, cache.HomeKey(), func() ([]byte, error) {
		regions, err := p.activeByName(ctx, taxonomy.Regions)
		if err != nil {
			return nil, err
		}
		categories, err := p.activeByName(ctx, taxonomy.Categories)
		if err != nil {
			return nil, err
		}
		return p.Renderer.Public("home", &render.PublicData{
			Home: p.homepage(ctx),
			Data: map[string]any{
				"Regions":    regions,
				"Categories": categories,
			},
		})
	})
	if err != nil {
		serverError(w, "render homepage failed", err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// parseExplore reads the explore filters from the query string. Term ids
// may repeat or be comma-separated; malformed ids are ignored.
func parseExplore(v url.Values) store.ExploreQuery {
	q := store.ExploreQuery{
		Q:          v.Get("q"),
		Categories: uuidList(v["cats"]),
		Regions:    uuidList(v["regs"]),
		Order:      v.Get("order"),
	}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	return q.Normalize()
}

func uuidList(values []string) []uuid.UUID {
	var out []uuid.UUID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil && !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

// pageURL returns the explore URL for the same filters on another page.
func pageURL(v url.Values, page int) string {
	next := url.Values{}
	for k, vals := range v {
		next[k] = vals
	}
	next.Set("page", strconv.Itoa(page))
	return "/explore?" + next.Encode()
}

// Explore renders the search form and one page of results.
func (p *Public) Explore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := parseExplore(r.URL.Query())

	result, err := p.Sites.Explore(ctx, query)
	if err != nil {
		serverError(w, "explore failed", err)
		return
	}
	regions, err := p.activeByName(ctx, taxonomy.Regions)
	if err != nil {
		serverError(w, "list regions failed", err)
		return
	}
	categories, err := p.activeByName(ctx, taxonomy.Categories)
	if err != nil {
		serverError(w, "list categories failed", err)
		return
	}

	pages := result.Pages()
	data := map[string]any{
		"Query":      query,
		"Result":     result,
		"Pages":      pages,
		"Regions":    regions,
		"Categories": categories,
	}
	if query.Page > 1 {
		data["PrevURL"] = pageURL(r.URL.Query(), query.Page-1)
	}
	if query.Page < pages {
		data["NextURL"] = pageURL(r.URL.Query(), query.Page+1)
	}

	page, err := p.Renderer.Public("explore", &render.PublicData{
		Title: "Explore",
		Home:  p.homepage(ctx),
		Data:  data,
	})
	if err != nil {
		serverError(w, "render explore failed", err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// publishedSite loads the published listing named by {slug}.
func (p *Public) publishedSite(ctx context.Context, slugParam string) (*models.Site, error) {
	site, err := p.Sites.FindBySlug(ctx, slugParam, true)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, errNotFound
	}
	return site, nil
}

// provinceName resolves the listing's province, or "".
func (p *Public) provinceName(ctx context.Context, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	provinces, err := p.Provinces.List(ctx)
	if err != nil {
		slog.Warn("list provinces failed", "error", err)
		return ""
	}
	for _, pr := range provinces {
		if pr.ID == *id {
			return pr.Name
		}
	}
	return ""
}

// Heritage renders a listing detail page.
func (p *Public) Heritage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	page, err := p.PageCache.Render(ctx, cache.HeritageKey(slugParam), func() ([]byte, error) {
		site, err := p.publishedSite(ctx, slugParam)
		if err != nil {
			return nil, err
		}
		return p.renderHeritage(ctx, site)
	})
	if errors.Is(err, errNotFound) {
		p.notFound(w, r)
		return
	}
	if err != nil {
		serverError(w, "render heritage page failed", err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

func (p *Public) renderHeritage(ctx context.Context, site *models.Site) ([]byte, error) {
	categories, err := p.Sites.TermRefs(ctx, site.ID, taxonomy.Categories)
	if err != nil {
		return nil, err
	}
	regions, err := p.Sites.TermRefs(ctx, site.ID, taxonomy.Regions)
	if err != nil {
		return nil, err
	}
	images, err := p.Gallery.List(ctx, site.ID, detailGallerySize)
	if err != nil {
		return nil, err
	}
	sources, err := p.Sources.List(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	sections, err := p.Sections.List(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	hasStory, err := p.Stories.Exists(ctx, site.ID)
	if err != nil {
		return nil, err
	}

	return p.Renderer.Public("heritage", &render.PublicData{
		Title:       site.Title,
		Description: derefString(site.Tagline),
		Home:        p.homepage(ctx),
		Data: map[string]any{
			"Site":       site,
			"Province":   p.provinceName(ctx, site.ProvinceID),
			"Categories": categories,
			"Regions":    regions,
			"Images":     imageViews(p.Objects, images),
			"Sources":    sources,
			"Sections":   sections,
			"HasStory":   hasStory,
			"MapURL":     site.MapEmbedURL(),
		},
	})
}

// GalleryPage renders every image of a listing.
func (p *Public) GalleryPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	site, err := p.publishedSite(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, errNotFound) {
		p.notFound(w, r)
		return
	}
	if err != nil {
		serverError(w, "find listing failed", err)
		return
	}
	images, err := p.Gallery.List(ctx, site.ID, 0)
	if err != nil {
		serverError(w, "list gallery failed", err)
		return
	}
	page, err := p.Renderer.Public("gallery", &render.PublicData{
		Title: site.Title + " · Gallery",
		Home:  p.homepage(ctx),
		Data:  map[string]any{"Site": site, "Images": imageViews(p.Objects, images)},
	})
	if err != nil {
		serverError(w, "render gallery failed", err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// StoryPage renders a listing's photo story. Listings without one are 404.
func (p *Public) StoryPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	site, err := p.publishedSite(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, errNotFound) {
		p.notFound(w, r)
		return
	}
	if err != nil {
		serverError(w, "find listing failed", err)
		return
	}
	story, err := p.Stories.Get(ctx, site.ID)
	if err != nil {
		serverError(w, "load photo story failed", err)
		return
	}
	if story == nil {
		p.notFound(w, r)
		return
	}
	page, err := p.Renderer.Public("story", &render.PublicData{
		Title: site.Title + " · Photo story",
		Home:  p.homepage(ctx),
		Data:  map[string]any{"Site": site, "Story": story},
	})
	if err != nil {
		serverError(w, "render story failed", err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// NotFound is the router's fallback for unknown public paths.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.notFound(w, r)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
