// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer loads heritage listings from a CSV export. Rows are
// upserted by slug; categories and regions are linked by term slug.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"heritage/internal/models"
	"heritage/internal/slug"
	"heritage/internal/taxonomy"
)

// SiteWriter is the part of the site store the importer needs.
type SiteWriter interface {
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Site, error)
	UpsertBySlug(ctx context.Context, site *models.Site) (*models.Site, error)
	SyncTerms(ctx context.Context, siteID uuid.UUID, kind taxonomy.Kind, ids []uuid.UUID) error
}

// TermResolver maps term slugs to ids.
type TermResolver interface {
	IDsBySlug(ctx context.Context, kind taxonomy.Kind, slugs []string) (map[string]uuid.UUID, error)
}

// ProvinceLister lists the known provinces.
type ProvinceLister interface {
	List(ctx context.Context) ([]models.Province, error)
}

// termColumns maps the CSV columns holding term slugs to their kind.
var termColumns = map[string]taxonomy.Kind{
	"categories": taxonomy.Categories,
	"regions":    taxonomy.Regions,
}

// Result summarizes an import run.
type Result struct {
	Imported int
	Created  int
	// Unknown lists "kind:slug" references that matched no term.
	Unknown []string
}

// CSVImporter reads a sites CSV and writes listings.
type CSVImporter struct {
	reader    *csv.Reader
	sites     SiteWriter
	terms     TermResolver
	provinces ProvinceLister
}

// NewCSVImporter returns an importer over r. provinces may be nil, in
// which case a province column is ignored.
func NewCSVImporter(r io.Reader, sites SiteWriter, terms TermResolver, provinces ProvinceLister) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, sites: sites, terms: terms, provinces: provinces}
}

// Run imports every row. It stops at the first invalid row; rows before
// it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (*Result, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["title"]; !ok {
		return nil, errors.New("missing required column \"title\"")
	}

	provinces, err := i.provinceIDs(ctx, index)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("read line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}
		if err := i.importRow(ctx, res, record, index, provinces); err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return res, nil
}

func (i *CSVImporter) provinceIDs(ctx context.Context, index map[string]int) (map[string]uuid.UUID, error) {
	if _, ok := index["province"]; !ok || i.provinces == nil {
		return nil, nil
	}
	list, err := i.provinces.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list provinces: %w", err)
	}
	out := make(map[string]uuid.UUID, len(list))
	for _, p := range list {
		out[strings.ToLower(p.Name)] = p.ID
	}
	return out, nil
}

func (i *CSVImporter) importRow(ctx context.Context, res *Result, record []string, index map[string]int, provinces map[string]uuid.UUID) error {
	title := pick(record, index, "title")
	if title == "" {
		return errors.New("title is required")
	}
	siteSlug := slug.Make(pick(record, index, "slug"))
	if siteSlug == "" {
		siteSlug = slug.Make(title)
	}
	if siteSlug == "" {
		return fmt.Errorf("cannot derive a slug from %q", title)
	}

	// Start from the stored listing so columns absent from the file keep
	// their values.
	site, err := i.sites.FindBySlug(ctx, siteSlug, false)
	if err != nil {
		return fmt.Errorf("find %s: %w", siteSlug, err)
	}
	created := site == nil
	if created {
		site = &models.Site{}
	}
	site.Title = title
	site.Slug = siteSlug

	if err := applyColumns(site, record, index, provinces); err != nil {
		return fmt.Errorf("%s: %w", siteSlug, err)
	}

	saved, err := i.sites.UpsertBySlug(ctx, site)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", siteSlug, err)
	}

	for column, kind := range termColumns {
		if _, ok := index[column]; !ok {
			continue
		}
		if err := i.linkTerms(ctx, res, saved.ID, kind, splitList(pick(record, index, column))); err != nil {
			return fmt.Errorf("link %s for %s: %w", kind, siteSlug, err)
		}
	}

	res.Imported++
	if created {
		res.Created++
	}
	slog.Debug("site imported", "slug", siteSlug, "created", created)
	return nil
}

// applyColumns copies the optional columns present in the file onto site.
func applyColumns(site *models.Site, record []string, index map[string]int, provinces map[string]uuid.UUID) error {
	for name, field := range site.TextFields() {
		if _, ok := index[name]; ok {
			*field = optional(pick(record, index, name))
		}
	}

	var err error
	if _, ok := index["latitude"]; ok {
		if site.Latitude, err = parseCoordinate(pick(record, index, "latitude"), 90); err != nil {
			return fmt.Errorf("latitude: %w", err)
		}
	}
	if _, ok := index["longitude"]; ok {
		if site.Longitude, err = parseCoordinate(pick(record, index, "longitude"), 180); err != nil {
			return fmt.Errorf("longitude: %w", err)
		}
	}
	if _, ok := index["is_published"]; ok {
		site.IsPublished = parseBool(pick(record, index, "is_published"))
	}
	if provinces != nil {
		name := strings.ToLower(pick(record, index, "province"))
		site.ProvinceID = nil
		if name != "" {
			id, ok := provinces[name]
			if !ok {
				return fmt.Errorf("unknown province %q", pick(record, index, "province"))
			}
			site.ProvinceID = &id
		}
	}
	return nil
}

func (i *CSVImporter) linkTerms(ctx context.Context, res *Result, siteID uuid.UUID, kind taxonomy.Kind, slugs []string) error {
	ids, err := i.terms.IDsBySlug(ctx, kind, slugs)
	if err != nil {
		return err
	}
	linked := make([]uuid.UUID, 0, len(slugs))
	for _, s := range slugs {
		id, ok := ids[s]
		if !ok {
			res.Unknown = append(res.Unknown, string(kind)+":"+s)
			slog.Warn("unknown term in import", "kind", kind, "slug", s)
			continue
		}
		linked = append(linked, id)
	}
	return i.sites.SyncTerms(ctx, siteID, kind, linked)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	i, ok := index[key]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// splitList splits a ";" or "|" separated slug list, dropping blanks and
// duplicates.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '|' })
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		s := slug.Make(f)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseCoordinate(raw string, limit float64) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	if f < -limit || f > limit {
		return nil, fmt.Errorf("%g out of range", f)
	}
	return &f, nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "published":
		return true
	}
	return false
}
