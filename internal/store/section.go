// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"heritage/internal/models"
)

// SectionStore manages custom_sections rows.
type SectionStore struct {
	db *sql.DB
}

// NewSectionStore returns a new SectionStore.
func NewSectionStore(db *sql.DB) *SectionStore {
	return &SectionStore{db: db}
}

// List returns a site's sections in display order.
func (s *SectionStore) List(ctx context.Context, siteID uuid.UUID) ([]models.CustomSection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, title, content, sort_order
		FROM custom_sections WHERE site_id = $1 ORDER BY sort_order
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var items []models.CustomSection
	for rows.Next() {
		var c models.CustomSection
		if err := rows.Scan(&c.ID, &c.SiteID, &c.Title, &c.Content, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Add appends an empty section.
func (s *SectionStore) Add(ctx context.Context, siteID uuid.UUID) (*models.CustomSection, error) {
	pos, err := nextSortOrder(ctx, s.db, "custom_sections", siteID)
	if err != nil {
		return nil, err
	}
	var c models.CustomSection
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO custom_sections (site_id, title, sort_order)
		VALUES ($1, 'New Section', $2)
		RETURNING id, site_id, title, content, sort_order
	`, siteID, pos).Scan(&c.ID, &c.SiteID, &c.Title, &c.Content, &c.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("add section: %w", err)
	}
	return &c, nil
}

// Update writes a section's title and content.
func (s *SectionStore) Update(ctx context.Context, c *models.CustomSection) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE custom_sections SET title = $1, content = $2 WHERE id = $3 AND site_id = $4`,
		c.Title, c.Content, c.ID, c.SiteID)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Swap exchanges the positions of two sections.
func (s *SectionStore) Swap(ctx context.Context, a, b uuid.UUID) error {
	return swapSortOrder(ctx, s.db, "custom_sections", a, b)
}

// Delete removes a section of siteID.
func (s *SectionStore) Delete(ctx context.Context, siteID, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM custom_sections WHERE id = $1 AND site_id = $2`, id, siteID); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}
