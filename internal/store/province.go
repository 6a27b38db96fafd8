// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"heritage/internal/models"
)

// ProvinceStore reads the fixed province list.
type ProvinceStore struct {
	db *sql.DB
}

// NewProvinceStore returns a new ProvinceStore.
func NewProvinceStore(db *sql.DB) *ProvinceStore {
	return &ProvinceStore{db: db}
}

// List returns every province ordered by name.
func (s *ProvinceStore) List(ctx context.Context) ([]models.Province, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM provinces ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list provinces: %w", err)
	}
	defer rows.Close()

	var items []models.Province
	for rows.Next() {
		var p models.Province
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan province: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
