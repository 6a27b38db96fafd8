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

// BibliographyStore manages bibliography_sources rows.
type BibliographyStore struct {
	db *sql.DB
}

// NewBibliographyStore returns a new BibliographyStore.
func NewBibliographyStore(db *sql.DB) *BibliographyStore {
	return &BibliographyStore{db: db}
}

const sourceColumns = `id, site_id, title, authors, year, publisher_or_site, url, notes, sort_order`

func scanSource(scanner rowScanner) (*models.BibliographySource, error) {
	var b models.BibliographySource
	err := scanner.Scan(
		&b.ID, &b.SiteID, &b.Title, &b.Authors, &b.Year,
		&b.PublisherOrSite, &b.URL, &b.Notes, &b.SortOrder,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns a site's sources in display order.
func (s *BibliographyStore) List(ctx context.Context, siteID uuid.UUID) ([]models.BibliographySource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM bibliography_sources WHERE site_id = $1 ORDER BY sort_order`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list bibliography: %w", err)
	}
	defer rows.Close()

	var items []models.BibliographySource
	for rows.Next() {
		b, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bibliography: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// Add appends a source titled "Untitled" to the end of the list.
func (s *BibliographyStore) Add(ctx context.Context, siteID uuid.UUID) (*models.BibliographySource, error) {
	pos, err := nextSortOrder(ctx, s.db, "bibliography_sources", siteID)
	if err != nil {
		return nil, err
	}
	b, err := scanSource(s.db.QueryRowContext(ctx, `
		INSERT INTO bibliography_sources (site_id, title, sort_order)
		VALUES ($1, 'Untitled', $2)
		RETURNING `+sourceColumns, siteID, pos))
	if err != nil {
		return nil, fmt.Errorf("add bibliography: %w", err)
	}
	return b, nil
}

// Update writes every field of a source. Rows of other sites are not
// touched.
func (s *BibliographyStore) Update(ctx context.Context, b *models.BibliographySource) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE bibliography_sources SET
			title = $1, authors = $2, year = $3, publisher_or_site = $4, url = $5, notes = $6
		WHERE id = $7 AND site_id = $8
	`, b.Title, b.Authors, b.Year, b.PublisherOrSite, b.URL, b.Notes, b.ID, b.SiteID)
	if err != nil {
		return fmt.Errorf("update bibliography: %w", err)
	}
	return nil
}

// Swap exchanges the positions of two sources.
func (s *BibliographyStore) Swap(ctx context.Context, a, b uuid.UUID) error {
	return swapSortOrder(ctx, s.db, "bibliography_sources", a, b)
}

// Delete removes a source of siteID.
func (s *BibliographyStore) Delete(ctx context.Context, siteID, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bibliography_sources WHERE id = $1 AND site_id = $2`, id, siteID); err != nil {
		return fmt.Errorf("delete bibliography: %w", err)
	}
	return nil
}
