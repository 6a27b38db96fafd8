// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all heritage directory
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSlugTaken is returned when an insert or update collides with an
// existing slug.
var ErrSlugTaken = errors.New("slug already in use")

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// mapWriteError converts a unique-violation into ErrSlugTaken while keeping
// the driver message.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w: %s", op, ErrSlugTaken, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullable maps blank form input to NULL.
func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// orderedTables lists the tables whose rows carry a per-site sort_order
// and may be reordered with swapSortOrder.
var orderedTables = map[string]bool{
	"categories":           true,
	"regions":              true,
	"site_images":          true,
	"bibliography_sources": true,
	"custom_sections":      true,
	"photo_story_items":    true,
}

// swapSortOrder exchanges the sort_order of two rows of table in one
// transaction, locking both rows first.
func swapSortOrder(ctx context.Context, db *sql.DB, table string, a, b uuid.UUID) error {
	if !orderedTables[table] {
		return fmt.Errorf("swap sort order: table %q is not ordered", table)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, sort_order FROM `+table+` WHERE id IN ($1, $2) FOR UPDATE`, a, b)
	if err != nil {
		return fmt.Errorf("lock %s rows: %w", table, err)
	}
	pos := make(map[uuid.UUID]int, 2)
	for rows.Next() {
		var id uuid.UUID
		var order int
		if err := rows.Scan(&id, &order); err != nil {
			rows.Close()
			return fmt.Errorf("scan %s position: %w", table, err)
		}
		pos[id] = order
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read %s positions: %w", table, err)
	}
	pa, okA := pos[a]
	pb, okB := pos[b]
	if !okA || !okB {
		return fmt.Errorf("swap %s positions: %w", table, sql.ErrNoRows)
	}

	stmt, err := tx.PrepareContext(ctx, `UPDATE `+table+` SET sort_order = $1 WHERE id = $2`)
	if err != nil {
		return fmt.Errorf("prepare swap: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, pb, a); err != nil {
		return fmt.Errorf("swap %s %s: %w", table, a, err)
	}
	if _, err := stmt.ExecContext(ctx, pa, b); err != nil {
		return fmt.Errorf("swap %s %s: %w", table, b, err)
	}
	return tx.Commit()
}

// nextSortOrder returns the append-to-end position for a site's child
// rows: the current row count.
func nextSortOrder(ctx context.Context, db *sql.DB, table string, siteID uuid.UUID) (int, error) {
	if !orderedTables[table] {
		return 0, fmt.Errorf("next sort order: table %q is not ordered", table)
	}
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE site_id = $1`, siteID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
