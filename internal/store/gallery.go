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

// GalleryStore manages site_images rows. The files themselves live in
// object storage.
type GalleryStore struct {
	db *sql.DB
}

// NewGalleryStore returns a new GalleryStore.
func NewGalleryStore(db *sql.DB) *GalleryStore {
	return &GalleryStore{db: db}
}

const imageColumns = `id, site_id, storage_path, thumb_path, alt_text, caption, credit, is_cover, sort_order, created_at`

func scanImage(scanner rowScanner) (*models.SiteImage, error) {
	var m models.SiteImage
	err := scanner.Scan(
		&m.ID, &m.SiteID, &m.StoragePath, &m.ThumbPath, &m.AltText,
		&m.Caption, &m.Credit, &m.IsCover, &m.SortOrder, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns a site's images in gallery order. A positive limit caps
// the result.
func (s *GalleryStore) List(ctx context.Context, siteID uuid.UUID, limit int) ([]models.SiteImage, error) {
	query := `SELECT ` + imageColumns + ` FROM site_images WHERE site_id = $1 ORDER BY sort_order, created_at`
	args := []any{siteID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list site images: %w", err)
	}
	defer rows.Close()

	var items []models.SiteImage
	for rows.Next() {
		m, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan site image: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// FindByID retrieves an image row. Returns nil if not found.
func (s *GalleryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.SiteImage, error) {
	m, err := scanImage(s.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM site_images WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site image: %w", err)
	}
	return m, nil
}

// Add appends an image to the end of a site's gallery.
func (s *GalleryStore) Add(ctx context.Context, m *models.SiteImage) (*models.SiteImage, error) {
	pos, err := nextSortOrder(ctx, s.db, "site_images", m.SiteID)
	if err != nil {
		return nil, err
	}
	out, err := scanImage(s.db.QueryRowContext(ctx, `
		INSERT INTO site_images (site_id, storage_path, thumb_path, alt_text, caption, credit, is_cover, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+imageColumns,
		m.SiteID, m.StoragePath, m.ThumbPath, m.AltText, m.Caption, m.Credit, m.IsCover, pos,
	))
	if err != nil {
		return nil, fmt.Errorf("add site image: %w", err)
	}
	return out, nil
}

// Update writes the editable metadata of an image.
func (s *GalleryStore) Update(ctx context.Context, m *models.SiteImage) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE site_images SET alt_text = $1, caption = $2, credit = $3, is_cover = $4
		WHERE id = $5
	`, m.AltText, m.Caption, m.Credit, m.IsCover, m.ID)
	if err != nil {
		return fmt.Errorf("update site image: %w", err)
	}
	return nil
}

// Swap exchanges the gallery positions of two images.
func (s *GalleryStore) Swap(ctx context.Context, a, b uuid.UUID) error {
	return swapSortOrder(ctx, s.db, "site_images", a, b)
}

// Delete removes an image row and returns it so the caller can remove the
// stored object. Returns nil if it did not exist.
func (s *GalleryStore) Delete(ctx context.Context, id uuid.UUID) (*models.SiteImage, error) {
	m, err := scanImage(s.db.QueryRowContext(ctx,
		`DELETE FROM site_images WHERE id = $1 RETURNING `+imageColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete site image: %w", err)
	}
	return m, nil
}
