// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// heritage directory. It organizes routes into public and admin groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"heritage/internal/handlers"
	"heritage/internal/middleware"
	"heritage/internal/session"
	"heritage/web"
)

// Options carries everything the router wires together.
type Options struct {
	Sessions      *session.Store
	Admin         *handlers.Admin
	Auth          *handlers.Auth
	Public        *handlers.Public
	LoginLimiter  *middleware.RateLimiter // nil disables login rate limiting
	MediaOrigin   string                  // allowed image origin for the CSP
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(o Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(o.MediaOrigin))
	r.Use(middleware.LoadSession(o.Sessions))

	r.Get("/health", healthHandler)

	static, err := fs.Sub(web.StaticFS, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(o.SecureCookies))
		adminRoutes(r, o)
	})

	// Public directory.
	r.Get("/", o.Public.Homepage)
	r.Get("/explore", o.Public.Explore)
	r.Route("/heritage/{slug}", func(r chi.Router) {
		r.Get("/", o.Public.Heritage)
		r.Get("/gallery", o.Public.GalleryPage)
		r.Get("/story", o.Public.StoryPage)
	})
	r.NotFound(o.Public.NotFound)

	return r
}

func adminRoutes(r chi.Router, o Options) {
	auth, admin := o.Auth, o.Admin

	// Auth pages, accessible without a session.
	r.Get("/login", auth.LoginPage)
	r.Group(func(r chi.Router) {
		if o.LoginLimiter != nil {
			r.Use(o.LoginLimiter.Middleware)
		}
		r.Post("/login", auth.LoginSubmit)
	})
	r.Post("/logout", auth.Logout)

	// 2FA requires a session but not a completed second factor.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/2fa/setup", auth.TwoFASetupPage)
		r.Get("/2fa/verify", auth.TwoFAVerifyPage)
		r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
	})

	// Signed-in, 2FA-verified administrators.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		r.Use(middleware.RequireAdmin)

		r.Get("/", admin.Dashboard)

		r.Route("/taxonomy/{kind}", func(r chi.Router) {
			r.Get("/", admin.TaxonomyPage)
			r.Post("/terms", admin.TermCreate)
			r.Route("/terms/{id}", func(r chi.Router) {
				r.Post("/field/{field}", admin.TermCommit)
				r.Post("/active", admin.TermActive)
				r.Post("/parent", admin.TermParent)
				r.Post("/move/{dir}", admin.TermMove)
				r.Delete("/", admin.TermDelete)
			})
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", admin.ListingsList)
			r.Post("/", admin.ListingCreate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", admin.ListingEdit)
				r.Post("/", admin.ListingUpdate)
				r.Delete("/", admin.ListingDelete)
				r.Post("/duplicate", admin.ListingDuplicate)
				r.Post("/cover", admin.CoverUpload)

				r.Get("/gallery", admin.GalleryPage)
				r.Post("/gallery", admin.GalleryUpload)
				r.Post("/gallery/{imageID}", admin.GalleryUpdate)
				r.Post("/gallery/{imageID}/move/{dir}", admin.GalleryMove)
				r.Delete("/gallery/{imageID}", admin.GalleryDelete)

				r.Get("/extras", admin.ExtrasPage)
				r.Post("/sources", admin.SourceAdd)
				r.Post("/sources/{sourceID}", admin.SourceUpdate)
				r.Post("/sources/{sourceID}/move/{dir}", admin.SourceMove)
				r.Delete("/sources/{sourceID}", admin.SourceDelete)
				r.Post("/sections", admin.SectionAdd)
				r.Post("/sections/{sectionID}", admin.SectionUpdate)
				r.Post("/sections/{sectionID}/move/{dir}", admin.SectionMove)
				r.Delete("/sections/{sectionID}", admin.SectionDelete)

				r.Get("/story", admin.StoryPage)
				r.Post("/story", admin.StorySave)
				r.Post("/story/hero", admin.StoryHeroUpload)
				r.Post("/story/items", admin.StoryItemAdd)
				r.Post("/story/items/{itemID}", admin.StoryItemUpdate)
				r.Post("/story/items/{itemID}/image", admin.StoryItemImage)
				r.Post("/story/items/{itemID}/move/{dir}", admin.StoryItemMove)
				r.Delete("/story/items/{itemID}", admin.StoryItemDelete)
			})
		})

		r.Get("/home", admin.HomeEdit)
		r.Post("/home", admin.HomeSave)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
