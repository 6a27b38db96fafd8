// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"heritage/internal/slug"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedFile is the YAML document loaded by `heritage seed`.
type SeedFile struct {
	Provinces  []string   `yaml:"provinces"`
	Categories []SeedTerm `yaml:"categories"`
	Regions    []SeedTerm `yaml:"regions"`
}

// SeedTerm is one node of a seeded taxonomy tree.
type SeedTerm struct {
	Name        string     `yaml:"name"`
	Slug        string     `yaml:"slug"`
	Description string     `yaml:"description"`
	Icon        string     `yaml:"icon"`
	Inactive    bool       `yaml:"inactive"`
	Children    []SeedTerm `yaml:"children"`
}

// LoadSeed reads a seed file. An empty path selects the built-in seed.
func LoadSeed(path string) (*SeedFile, error) {
	data := defaultSeed
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}
	return ParseSeed(data)
}

// ParseSeed decodes a seed document and fills derived slugs.
func ParseSeed(data []byte) (*SeedFile, error) {
	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	fillSlugs(sf.Categories)
	fillSlugs(sf.Regions)
	return &sf, nil
}

func fillSlugs(terms []SeedTerm) {
	for i := range terms {
		if terms[i].Slug == "" {
			terms[i].Slug = slug.Make(terms[i].Name)
		}
		fillSlugs(terms[i].Children)
	}
}

// Count returns the number of provinces and terms in the file.
func (sf *SeedFile) Count() int {
	return len(sf.Provinces) + countTerms(sf.Categories) + countTerms(sf.Regions)
}

func countTerms(terms []SeedTerm) int {
	n := len(terms)
	for _, t := range terms {
		n += countTerms(t.Children)
	}
	return n
}

// Apply upserts the seed into the database inside one transaction.
// Terms are matched by slug, so re-applying a file updates names, parents
// and positions in place.
func (sf *SeedFile) Apply(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, name := range sf.Provinces {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO provinces (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name,
		); err != nil {
			return fmt.Errorf("seed province %q: %w", name, err)
		}
	}

	// Table names come from this fixed list only.
	for _, set := range []struct {
		table string
		terms []SeedTerm
	}{
		{"categories", sf.Categories},
		{"regions", sf.Regions},
	} {
		if err := seedTerms(ctx, tx, set.table, nil, set.terms); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	slog.Info("seed applied", "rows", sf.Count())
	return nil
}

func seedTerms(ctx context.Context, tx *sql.Tx, table string, parent *uuid.UUID, terms []SeedTerm) error {
	query := `INSERT INTO ` + table + ` (name, slug, parent_id, description, is_active, sort_order, icon_key)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''))
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name, parent_id = EXCLUDED.parent_id,
			description = EXCLUDED.description, is_active = EXCLUDED.is_active,
			sort_order = EXCLUDED.sort_order, icon_key = EXCLUDED.icon_key
		RETURNING id`

	for i, t := range terms {
		var id uuid.UUID
		err := tx.QueryRowContext(ctx, query,
			t.Name, t.Slug, parent, t.Description, !t.Inactive, i, t.Icon,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed %s %q: %w", table, t.Slug, err)
		}
		if err := seedTerms(ctx, tx, table, &id, t.Children); err != nil {
			return err
		}
	}
	return nil
}
