// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"heritage/internal/models"
)

// homepageKey is the global_settings row holding the homepage fields.
const homepageKey = "homepage"

// SettingStore manages the global_settings table.
type SettingStore struct {
	db *sql.DB
}

// NewSettingStore returns a new SettingStore.
func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

// Homepage returns the homepage settings with defaults applied. A missing
// row yields the defaults.
func (s *SettingStore) Homepage(ctx context.Context) (models.Homepage, error) {
	var (
		h                     models.Homepage
		title, subtitle, hero sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT site_title, site_subtitle, hero_image_url, updated_at
		FROM global_settings WHERE key = $1
	`, homepageKey).Scan(&title, &subtitle, &hero, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return h.WithDefaults(), nil
	}
	if err != nil {
		return h, fmt.Errorf("load homepage settings: %w", err)
	}
	h.SiteTitle = title.String
	h.SiteSubtitle = subtitle.String
	if hero.Valid && hero.String != "" {
		h.HeroImageURL = &hero.String
	}
	return h.WithDefaults(), nil
}

// SaveHomepage upserts the homepage row. The JSONB value column mirrors
// the typed columns.
func (s *SettingStore) SaveHomepage(ctx context.Context, h models.Homepage) error {
	value, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode homepage settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO global_settings (key, value, site_title, site_subtitle, hero_image_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			site_title = EXCLUDED.site_title,
			site_subtitle = EXCLUDED.site_subtitle,
			hero_image_url = EXCLUDED.hero_image_url,
			updated_at = EXCLUDED.updated_at
	`, homepageKey, value, nullable(h.SiteTitle), nullable(h.SiteSubtitle), h.HeroImageURL)
	if err != nil {
		return fmt.Errorf("save homepage settings: %w", err)
	}
	return nil
}
