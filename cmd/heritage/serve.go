// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"heritage/internal/cache"
	"heritage/internal/database"
	"heritage/internal/handlers"
	"heritage/internal/middleware"
	"heritage/internal/render"
	"heritage/internal/router"
	"heritage/internal/session"
	"heritage/internal/storage"
	"heritage/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// The first admin account, when configured and no users exist yet.
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	// Session cookies are Secure (HTTPS-only) outside development.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, session.Options{TTL: cfg.SessionTTL, Secure: secureCookies})

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("initialize templates: %w", err)
	}

	// Object storage is optional; without it uploads answer 503.
	var objects storage.ObjectStore
	mediaOrigin := ""
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if storageClient != nil {
		objects = storageClient
		mediaOrigin = cfg.S3PublicURL
		if mediaOrigin == "" {
			mediaOrigin = cfg.S3Endpoint
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	terms := store.NewTermStore(db)
	sites := store.NewSiteStore(db)
	gallery := store.NewGalleryStore(db)
	sources := store.NewBibliographyStore(db)
	sections := store.NewSectionStore(db)
	stories := store.NewPhotoStoryStore(db)
	provinces := store.NewProvinceStore(db)
	settings := store.NewSettingStore(db)

	admin := handlers.NewAdmin(handlers.AdminDeps{
		Renderer:  renderer,
		Terms:     terms,
		Sites:     sites,
		Gallery:   gallery,
		Sources:   sources,
		Sections:  sections,
		Stories:   stories,
		Provinces: provinces,
		Settings:  settings,
		Objects:   objects,
		PageCache: pageCache,
	})
	auth := handlers.NewAuth(renderer, sessionStore, store.NewUserStore(db))
	public := handlers.NewPublic(handlers.PublicDeps{
		Renderer:  renderer,
		Sites:     sites,
		Terms:     terms,
		Gallery:   gallery,
		Sources:   sources,
		Sections:  sections,
		Stories:   stories,
		Provinces: provinces,
		Settings:  settings,
		Objects:   objects,
		PageCache: pageCache,
	})

	r := router.New(router.Options{
		Sessions:      sessionStore,
		Admin:         admin,
		Auth:          auth,
		Public:        public,
		LoginLimiter:  middleware.NewRateLimiter(valkeyClient, "login", 10, time.Minute),
		MediaOrigin:   mediaOrigin,
		SecureCookies: secureCookies,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second, // image uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
