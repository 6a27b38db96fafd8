// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"heritage/internal/models"
	"heritage/internal/slug"
	"heritage/internal/taxonomy"
)

// SiteStore manages heritage listings and their taxonomy links. Rows are
// wide, so scanning goes through sqlx struct mapping.
type SiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSiteStore wraps db for sqlx access.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: sqlx.NewDb(db, "pgx"), now: time.Now}
}

// siteEditable lists the columns written by the listing editor. Rating
// columns and timestamps are maintained elsewhere.
var siteEditable = []string{
	"title", "slug", "tagline", "cover_photo_url", "heritage_type", "location_free",
	"latitude", "longitude", "town_city_village", "tehsil", "district", "province_id",
	"architect", "architectural_style", "built_by", "conservation_status",
	"construction_date", "construction_materials", "current_use", "dynasty", "era",
	"known_for", "local_name", "restored_by", "administered_by", "ethnic_groups",
	"excavated_by", "excavation_status", "inhabited_by", "languages_spoken", "population",
	"national_park_established_in", "protected_under", "unesco_status", "unesco_line",
	"altitude", "landform", "mountain_range", "weather_type", "avg_temp_summers",
	"avg_temp_winters", "did_you_know",
	"travel_location", "travel_how_to_reach", "travel_nearest_major_city",
	"travel_airport_access", "travel_international_flight", "travel_access_options",
	"travel_road_type_condition", "travel_best_time_free", "travel_full_guide_url",
	"best_time_option_key",
	"history_content", "architecture_content", "climate_env_content",
	"stay_hotels_available", "stay_spending_night_recommended", "stay_camping_possible",
	"stay_places_to_eat_available",
	"is_published",
}

var (
	siteColumns = "id, " + strings.Join(siteEditable, ", ") +
		", avg_rating, review_count, created_at, updated_at"
	siteUpdateSet = func() string {
		parts := make([]string, len(siteEditable))
		for i, c := range siteEditable {
			parts[i] = c + " = :" + c
		}
		return strings.Join(parts, ", ")
	}()
	siteInsertNamed = "(" + strings.Join(siteEditable, ", ") + ") VALUES (:" +
		strings.Join(siteEditable, ", :") + ")"
)

// joinTable returns the link table and its term column for kind.
func joinTable(kind taxonomy.Kind) (table, column string, err error) {
	switch kind {
	case taxonomy.Categories:
		return "site_categories", "category_id", nil
	case taxonomy.Regions:
		return "site_regions", "region_id", nil
	}
	return "", "", fmt.Errorf("unknown taxonomy %q", kind)
}

// AdminListLimit caps the admin listings table.
const AdminListLimit = 200

// AdminList returns the most recently updated listings, optionally
// filtered by a case-insensitive match on title or slug.
func (s *SiteStore) AdminList(ctx context.Context, q string) ([]models.SiteSummary, error) {
	b := psql.Select("id", "title", "slug", "is_published", "updated_at").
		From("sites").
		OrderBy("updated_at DESC").
		Limit(AdminListLimit)
	if q = strings.TrimSpace(q); q != "" {
		pattern := "%" + q + "%"
		b = b.Where(sq.Or{sq.ILike{"title": pattern}, sq.ILike{"slug": pattern}})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build admin list: %w", err)
	}

	var items []models.SiteSummary
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("admin list sites: %w", err)
	}
	return items, nil
}

// Count returns the number of listings, published or not.
func (s *SiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sites`); err != nil {
		return 0, fmt.Errorf("count sites: %w", err)
	}
	return n, nil
}

// FindByID retrieves a listing. Returns nil if not found.
func (s *SiteStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	var site models.Site
	err := s.db.GetContext(ctx, &site, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site by id: %w", err)
	}
	return &site, nil
}

// FindBySlug retrieves a listing by slug. With publishedOnly, drafts are
// treated as missing. Returns nil if not found.
func (s *SiteStore) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE slug = $1`
	if publishedOnly {
		query += ` AND is_published`
	}
	var site models.Site
	err := s.db.GetContext(ctx, &site, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site by slug: %w", err)
	}
	return &site, nil
}

// CreateUntitled inserts an unpublished placeholder listing.
func (s *SiteStore) CreateUntitled(ctx context.Context) (*models.Site, error) {
	title := "Untitled Heritage"
	return s.Insert(ctx, &models.Site{Title: title, Slug: slug.Short(title, s.now())})
}

// Insert stores a new listing and returns the stored row.
func (s *SiteStore) Insert(ctx context.Context, site *models.Site) (*models.Site, error) {
	query, args, err := s.db.BindNamed(
		`INSERT INTO sites `+siteInsertNamed+` RETURNING `+siteColumns, site)
	if err != nil {
		return nil, fmt.Errorf("bind insert site: %w", err)
	}
	var out models.Site
	if err := s.db.GetContext(ctx, &out, query, args...); err != nil {
		return nil, mapWriteError("insert site", err)
	}
	return &out, nil
}

// Update writes every editable column and bumps updated_at.
func (s *SiteStore) Update(ctx context.Context, site *models.Site) (*models.Site, error) {
	query, args, err := s.db.BindNamed(
		`UPDATE sites SET `+siteUpdateSet+`, updated_at = NOW() WHERE id = :id RETURNING `+siteColumns, site)
	if err != nil {
		return nil, fmt.Errorf("bind update site: %w", err)
	}
	var out models.Site
	err = s.db.GetContext(ctx, &out, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapWriteError("update site", err)
	}
	return &out, nil
}

// Delete removes a listing; child rows cascade.
func (s *SiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	return nil
}

// Duplicate copies a listing with a " (Copy)" title, a fresh slug and
// unpublished state. Taxonomy links are copied; the gallery is not.
// Returns nil if the source does not exist.
func (s *SiteStore) Duplicate(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	orig, err := s.FindByID(ctx, id)
	if err != nil || orig == nil {
		return nil, err
	}

	dup := *orig
	dup.Title = orig.Title + " (Copy)"
	dup.Slug = slug.Short(orig.Slug, s.now())
	dup.IsPublished = false

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin duplicate: %w", err)
	}
	defer tx.Rollback()

	query, args, err := tx.BindNamed(
		`INSERT INTO sites `+siteInsertNamed+` RETURNING `+siteColumns, &dup)
	if err != nil {
		return nil, fmt.Errorf("bind duplicate site: %w", err)
	}
	var out models.Site
	if err := tx.GetContext(ctx, &out, query, args...); err != nil {
		return nil, mapWriteError("duplicate site", err)
	}

	for _, kind := range taxonomy.Kinds {
		table, column, _ := joinTable(kind)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (site_id, `+column+`)
			 SELECT $1, `+column+` FROM `+table+` WHERE site_id = $2`, out.ID, id)
		if err != nil {
			return nil, fmt.Errorf("duplicate %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit duplicate: %w", err)
	}
	return &out, nil
}

// TermIDs returns the ids of kind linked to a listing.
func (s *SiteStore) TermIDs(ctx context.Context, siteID uuid.UUID, kind taxonomy.Kind) ([]uuid.UUID, error) {
	table, column, err := joinTable(kind)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	err = s.db.SelectContext(ctx, &ids, `SELECT `+column+` FROM `+table+` WHERE site_id = $1`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return ids, nil
}

// TermRefs returns the names of the terms of kind linked to a listing.
func (s *SiteStore) TermRefs(ctx context.Context, siteID uuid.UUID, kind taxonomy.Kind) ([]models.TermRef, error) {
	table, column, err := joinTable(kind)
	if err != nil {
		return nil, err
	}
	terms, _ := termTable(kind)
	var refs []models.TermRef
	err = s.db.SelectContext(ctx, &refs, `
		SELECT t.id, t.name, t.slug FROM `+table+` j
		JOIN `+terms+` t ON t.id = j.`+column+`
		WHERE j.site_id = $1
		ORDER BY t.name`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list %s names: %w", table, err)
	}
	return refs, nil
}

// SyncTerms makes the links of kind for a listing equal to ids: missing
// links are inserted and removed ones deleted, in one transaction.
func (s *SiteStore) SyncTerms(ctx context.Context, siteID uuid.UUID, kind taxonomy.Kind, ids []uuid.UUID) error {
	table, column, err := joinTable(kind)
	if err != nil {
		return err
	}

	current, err := s.TermIDs(ctx, siteID, kind)
	if err != nil {
		return err
	}
	add, remove := diffIDs(current, ids)
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sync %s: %w", table, err)
	}
	defer tx.Rollback()

	if len(add) > 0 {
		ins := psql.Insert(table).Columns("site_id", column).Suffix("ON CONFLICT DO NOTHING")
		for _, id := range add {
			ins = ins.Values(siteID, id)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	if len(remove) > 0 {
		query, args, err := psql.Delete(table).
			Where("site_id = ?", siteID).
			Where(sq.Eq{column: remove}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// diffIDs returns the ids in want but not in have, and those in have but
// not in want, each in input order without duplicates.
func diffIDs(have, want []uuid.UUID) (add, remove []uuid.UUID) {
	haveSet := make(map[uuid.UUID]bool, len(have))
	for _, id := range have {
		haveSet[id] = true
	}
	wantSet := make(map[uuid.UUID]bool, len(want))
	for _, id := range want {
		if !wantSet[id] && !haveSet[id] {
			add = append(add, id)
		}
		wantSet[id] = true
	}
	for _, id := range have {
		if !wantSet[id] {
			remove = append(remove, id)
		}
	}
	return add, remove
}

// UpsertBySlug inserts a listing or updates the one with the same slug.
// Used by the CSV importer.
func (s *SiteStore) UpsertBySlug(ctx context.Context, site *models.Site) (*models.Site, error) {
	existing, err := s.FindBySlug(ctx, site.Slug, false)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.Insert(ctx, site)
	}
	site.ID = existing.ID
	return s.Update(ctx, site)
}
