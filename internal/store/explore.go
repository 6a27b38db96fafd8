// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"heritage/internal/models"
)

// ExplorePageSize is the number of cards per explore page.
const ExplorePageSize = 12

// maxExplorePage keeps the OFFSET inside a Postgres bigint and the
// multiplication inside int.
const maxExplorePage = math.MaxInt32 / ExplorePageSize

// Explore orderings.
const (
	OrderLatest = "latest"
	OrderTop    = "top"
	OrderRandom = "random"
	OrderAZ     = "az"
)

// ExploreQuery holds the public search filters.
type ExploreQuery struct {
	Q          string
	Categories []uuid.UUID
	Regions    []uuid.UUID
	Order      string
	Page       int
}

// Normalize clamps the page and falls back to the latest ordering.
func (q ExploreQuery) Normalize() ExploreQuery {
	q.Q = strings.TrimSpace(q.Q)
	q.Page = min(max(q.Page, 1), maxExplorePage)
	switch q.Order {
	case OrderTop, OrderRandom, OrderAZ:
	default:
		q.Order = OrderLatest
	}
	return q
}

// ExplorePage is one page of results with the exact total.
type ExplorePage struct {
	Sites []models.SiteCard
	Total int
	Page  int
}

// Pages returns the number of pages, at least 1.
func (p *ExplorePage) Pages() int {
	n := (p.Total + ExplorePageSize - 1) / ExplorePageSize
	if n < 1 {
		return 1
	}
	return n
}

// exploreWhere builds the shared filter of the count and page queries.
func exploreWhere(q ExploreQuery) sq.And {
	where := sq.And{sq.Eq{"s.is_published": true}}
	if q.Q != "" {
		where = append(where, sq.ILike{"s.title": "%" + q.Q + "%"})
	}
	if len(q.Categories) > 0 {
		where = append(where, sq.Expr("s.id IN (?)",
			sq.Select("site_id").From("site_categories").Where(sq.Eq{"category_id": q.Categories})))
	}
	if len(q.Regions) > 0 {
		where = append(where, sq.Expr("s.id IN (?)",
			sq.Select("site_id").From("site_regions").Where(sq.Eq{"region_id": q.Regions})))
	}
	return where
}

func exploreOrder(order string) []string {
	switch order {
	case OrderTop:
		return []string{"s.avg_rating DESC NULLS LAST", "s.review_count DESC NULLS LAST"}
	case OrderAZ:
		return []string{"s.title ASC"}
	case OrderRandom:
		return []string{"random()"}
	}
	return []string{"s.created_at DESC"}
}

// Explore returns one page of published listings matching q.
func (s *SiteStore) Explore(ctx context.Context, q ExploreQuery) (*ExplorePage, error) {
	q = q.Normalize()
	where := exploreWhere(q)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("sites s").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build explore count: %w", err)
	}
	page := &ExplorePage{Page: q.Page}
	if err := s.db.GetContext(ctx, &page.Total, countSQL, countArgs...); err != nil {
		return nil, fmt.Errorf("explore count: %w", err)
	}
	if page.Total == 0 {
		return page, nil
	}

	listSQL, listArgs, err := psql.
		Select("s.id", "s.slug", "s.title", "s.tagline", "s.cover_photo_url",
			"s.location_free", "s.avg_rating", "s.review_count", "s.created_at").
		From("sites s").
		Where(where).
		OrderBy(exploreOrder(q.Order)...).
		Limit(ExplorePageSize).
		Offset(uint64((q.Page - 1) * ExplorePageSize)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build explore: %w", err)
	}
	if err := s.db.SelectContext(ctx, &page.Sites, listSQL, listArgs...); err != nil {
		return nil, fmt.Errorf("explore sites: %w", err)
	}
	return page, nil
}
