// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"heritage/internal/models"
	"heritage/internal/taxonomy"
)

// TermStore persists both taxonomies. It implements taxonomy.Repository
// and taxonomy.Swapper.
type TermStore struct {
	db *sql.DB
}

// NewTermStore returns a new TermStore.
func NewTermStore(db *sql.DB) *TermStore {
	return &TermStore{db: db}
}

var (
	_ taxonomy.Repository = (*TermStore)(nil)
	_ taxonomy.Swapper    = (*TermStore)(nil)
)

const termColumns = `id, name, slug, parent_id, description, is_active, sort_order, icon_key`

// termTable maps a kind to its table. Kinds are a closed set, so the result
// is safe to splice into SQL.
func termTable(kind taxonomy.Kind) (string, error) {
	switch kind {
	case taxonomy.Categories:
		return "categories", nil
	case taxonomy.Regions:
		return "regions", nil
	}
	return "", fmt.Errorf("unknown taxonomy %q", kind)
}

func scanTerm(scanner rowScanner) (*models.Term, error) {
	var t models.Term
	err := scanner.Scan(
		&t.ID, &t.Name, &t.Slug, &t.ParentID,
		&t.Description, &t.IsActive, &t.SortOrder, &t.IconKey,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns every term of kind ordered by sort_order, name.
func (s *TermStore) List(ctx context.Context, kind taxonomy.Kind) ([]models.Term, error) {
	table, err := termTable(kind)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select(termColumns).From(table).OrderBy("sort_order", "name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list %s: %w", table, err)
	}
	return s.query(ctx, table, query, args...)
}

// ListActive returns the active terms of kind ordered by name, for public
// filters.
func (s *TermStore) ListActive(ctx context.Context, kind taxonomy.Kind) ([]models.Term, error) {
	table, err := termTable(kind)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select(termColumns).From(table).
		Where(sq.Eq{"is_active": true}).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active %s: %w", table, err)
	}
	return s.query(ctx, table, query, args...)
}

func (s *TermStore) query(ctx context.Context, table, query string, args ...any) ([]models.Term, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var items []models.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// Insert stores a new term and returns the stored row.
func (s *TermStore) Insert(ctx context.Context, kind taxonomy.Kind, t *models.Term) (*models.Term, error) {
	table, err := termTable(kind)
	if err != nil {
		return nil, err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query, args, err := psql.Insert(table).
		Columns("id", "name", "slug", "parent_id", "description", "is_active", "sort_order", "icon_key").
		Values(t.ID, t.Name, t.Slug, t.ParentID, t.Description, t.IsActive, t.SortOrder, t.IconKey).
		Suffix("RETURNING " + termColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert %s: %w", table, err)
	}

	result, err := scanTerm(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapWriteError("insert "+table, err)
	}
	return result, nil
}

// Update writes every editable column of t and returns the stored row.
func (s *TermStore) Update(ctx context.Context, kind taxonomy.Kind, t *models.Term) (*models.Term, error) {
	table, err := termTable(kind)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Update(table).
		SetMap(map[string]any{
			"name":        t.Name,
			"slug":        t.Slug,
			"parent_id":   t.ParentID,
			"description": t.Description,
			"is_active":   t.IsActive,
			"sort_order":  t.SortOrder,
			"icon_key":    t.IconKey,
		}).
		Where("id = ?", t.ID).
		Suffix("RETURNING " + termColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update %s: %w", table, err)
	}

	result, err := scanTerm(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update %s %s: %w", table, t.ID, taxonomy.ErrNotFound)
	}
	if err != nil {
		return nil, mapWriteError("update "+table, err)
	}
	return result, nil
}

// Delete removes a term. Children become roots (ON DELETE SET NULL) and
// listing links are dropped (ON DELETE CASCADE).
func (s *TermStore) Delete(ctx context.Context, kind taxonomy.Kind, id uuid.UUID) error {
	table, err := termTable(kind)
	if err != nil {
		return err
	}
	query, args, err := psql.Delete(table).Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", table, err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// SwapPositions exchanges the sort_order of a and b in one transaction.
func (s *TermStore) SwapPositions(ctx context.Context, kind taxonomy.Kind, a, b models.Term) error {
	table, err := termTable(kind)
	if err != nil {
		return err
	}
	return swapSortOrder(ctx, s.db, table, a.ID, b.ID)
}

// IDsBySlug resolves slugs to ids. Unknown slugs are absent from the map.
func (s *TermStore) IDsBySlug(ctx context.Context, kind taxonomy.Kind, slugs []string) (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(slugs))
	if len(slugs) == 0 {
		return out, nil
	}
	table, err := termTable(kind)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Select("slug", "id").From(table).Where(sq.Eq{"slug": slugs}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s slug lookup: %w", table, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup %s slugs: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var slug string
		var id uuid.UUID
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, fmt.Errorf("scan %s slug: %w", table, err)
		}
		out[slug] = id
	}
	return out, rows.Err()
}
