// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"heritage/internal/render"
	"heritage/internal/storage"
)

// HomeEdit renders the homepage settings form.
func (a *Admin) HomeEdit(w http.ResponseWriter, r *http.Request) {
	home, err := a.settings.Homepage(r.Context())
	if err != nil {
		fail(w, "load homepage settings failed", err)
		return
	}
	a.renderer.Page(w, r, "home_edit", &render.PageData{
		Title:   "Homepage",
		Section: "home",
		Data: map[string]any{
			"Home":       home,
			"HasStorage": a.objects != nil,
		},
	})
}

// HomeSave upserts the title and subtitle. An optional "file" part
// replaces the hero image.
func (a *Admin) HomeSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	home, err := a.settings.Homepage(ctx)
	if err != nil {
		fail(w, "load homepage settings failed", err)
		return
	}

	var hero *upload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if !a.parseUploadForm(w, r, 1) {
			return
		}
		if files := r.MultipartForm.File["file"]; len(files) > 0 {
			if hero, err = readUpload(files[0]); err != nil {
				fail(w, "read upload failed", err)
				return
			}
		}
	}

	home.SiteTitle = strings.TrimSpace(r.FormValue("site_title"))
	home.SiteSubtitle = strings.TrimSpace(r.FormValue("site_subtitle"))
	if utf8.RuneCountInString(home.SiteTitle) > maxTitleLen || utf8.RuneCountInString(home.SiteSubtitle) > maxShortTextLen {
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "home_edit", &render.PageData{
			Title:   "Homepage",
			Section: "home",
			Data:    map[string]any{"Home": home, "HasStorage": a.objects != nil, "Error": "Title or subtitle is too long."},
		})
		return
	}

	previous := home.HeroImageURL
	if hero != nil {
		url, err := a.put(ctx, storage.HomeHeroKey(hero.name, time.Now()), hero)
		if err != nil {
			fail(w, "home hero upload failed", err)
			return
		}
		home.HeroImageURL = &url
	}
	if err := a.settings.SaveHomepage(ctx, home); err != nil {
		fail(w, "save homepage settings failed", err)
		return
	}
	if hero != nil {
		a.removeURL(ctx, previous)
	}
	a.invalidate(r)

	a.renderer.Page(w, r, "home_edit", &render.PageData{
		Title:   "Homepage",
		Section: "home",
		Data:    map[string]any{"Home": home.WithDefaults(), "HasStorage": a.objects != nil},
		Flashes: []render.Flash{{Type: "success", Message: "Homepage saved."}},
	})
}
