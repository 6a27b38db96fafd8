// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"heritage/internal/models"
)

// PhotoStoryStore manages the per-site photo story and its items.
type PhotoStoryStore struct {
	db *sql.DB
}

// NewPhotoStoryStore returns a new PhotoStoryStore.
func NewPhotoStoryStore(db *sql.DB) *PhotoStoryStore {
	return &PhotoStoryStore{db: db}
}

// Get returns the story and its items. Returns nil if the site has none.
func (s *PhotoStoryStore) Get(ctx context.Context, siteID uuid.UUID) (*models.PhotoStory, error) {
	story := &models.PhotoStory{SiteID: siteID}
	err := s.db.QueryRowContext(ctx,
		`SELECT hero_photo_url, subtitle FROM photo_stories WHERE site_id = $1`, siteID,
	).Scan(&story.HeroPhotoURL, &story.Subtitle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo story: %w", err)
	}

	items, err := s.Items(ctx, siteID)
	if err != nil {
		return nil, err
	}
	story.Items = items
	return story, nil
}

// Exists reports whether a site has a photo story.
func (s *PhotoStoryStore) Exists(ctx context.Context, siteID uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM photo_stories WHERE site_id = $1)`, siteID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check photo story: %w", err)
	}
	return ok, nil
}

// Upsert creates or replaces the story header.
func (s *PhotoStoryStore) Upsert(ctx context.Context, story *models.PhotoStory) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO photo_stories (site_id, hero_photo_url, subtitle)
		VALUES ($1, $2, $3)
		ON CONFLICT (site_id) DO UPDATE SET
			hero_photo_url = EXCLUDED.hero_photo_url, subtitle = EXCLUDED.subtitle
	`, story.SiteID, story.HeroPhotoURL, story.Subtitle)
	if err != nil {
		return fmt.Errorf("upsert photo story: %w", err)
	}
	return nil
}

// Items returns a site's story items in display order.
func (s *PhotoStoryStore) Items(ctx context.Context, siteID uuid.UUID) ([]models.PhotoStoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, image_url, text_block, sort_order
		FROM photo_story_items WHERE site_id = $1 ORDER BY sort_order
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list photo story items: %w", err)
	}
	defer rows.Close()

	var items []models.PhotoStoryItem
	for rows.Next() {
		var it models.PhotoStoryItem
		if err := rows.Scan(&it.ID, &it.SiteID, &it.ImageURL, &it.TextBlock, &it.SortOrder); err != nil {
			return nil, fmt.Errorf("scan photo story item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem appends an item to the end of the story.
func (s *PhotoStoryStore) AddItem(ctx context.Context, it *models.PhotoStoryItem) (*models.PhotoStoryItem, error) {
	pos, err := nextSortOrder(ctx, s.db, "photo_story_items", it.SiteID)
	if err != nil {
		return nil, err
	}
	var out models.PhotoStoryItem
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO photo_story_items (site_id, image_url, text_block, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, site_id, image_url, text_block, sort_order
	`, it.SiteID, it.ImageURL, it.TextBlock, pos).Scan(
		&out.ID, &out.SiteID, &out.ImageURL, &out.TextBlock, &out.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("add photo story item: %w", err)
	}
	return &out, nil
}

// UpdateItem writes an item's image and text.
func (s *PhotoStoryStore) UpdateItem(ctx context.Context, it *models.PhotoStoryItem) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE photo_story_items SET image_url = $1, text_block = $2 WHERE id = $3`,
		it.ImageURL, it.TextBlock, it.ID)
	if err != nil {
		return fmt.Errorf("update photo story item: %w", err)
	}
	return nil
}

// SwapItems exchanges the positions of two items.
func (s *PhotoStoryStore) SwapItems(ctx context.Context, a, b uuid.UUID) error {
	return swapSortOrder(ctx, s.db, "photo_story_items", a, b)
}

// DeleteItem removes an item.
func (s *PhotoStoryStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM photo_story_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete photo story item: %w", err)
	}
	return nil
}
