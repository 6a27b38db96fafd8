// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage/internal/models"
	"heritage/internal/taxonomy"
)

type stubSites struct {
	bySlug map[string]*models.Site
	links  map[uuid.UUID]map[taxonomy.Kind][]uuid.UUID
}

func newStubSites(existing ...*models.Site) *stubSites {
	s := &stubSites{bySlug: map[string]*models.Site{}, links: map[uuid.UUID]map[taxonomy.Kind][]uuid.UUID{}}
	for _, site := range existing {
		s.bySlug[site.Slug] = site
	}
	return s
}

func (s *stubSites) FindBySlug(_ context.Context, slug string, _ bool) (*models.Site, error) {
	site, ok := s.bySlug[slug]
	if !ok {
		return nil, nil
	}
	cp := *site
	return &cp, nil
}

func (s *stubSites) UpsertBySlug(_ context.Context, site *models.Site) (*models.Site, error) {
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	cp := *site
	s.bySlug[site.Slug] = &cp
	return &cp, nil
}

func (s *stubSites) SyncTerms(_ context.Context, siteID uuid.UUID, kind taxonomy.Kind, ids []uuid.UUID) error {
	if s.links[siteID] == nil {
		s.links[siteID] = map[taxonomy.Kind][]uuid.UUID{}
	}
	s.links[siteID][kind] = ids
	return nil
}

type stubTerms map[taxonomy.Kind]map[string]uuid.UUID

func (s stubTerms) IDsBySlug(_ context.Context, kind taxonomy.Kind, slugs []string) (map[string]uuid.UUID, error) {
	out := map[string]uuid.UUID{}
	for _, sl := range slugs {
		if id, ok := s[kind][sl]; ok {
			out[sl] = id
		}
	}
	return out, nil
}

type stubProvinces []models.Province

func (s stubProvinces) List(context.Context) ([]models.Province, error) { return s, nil }

func TestCSVImporter_Run(t *testing.T) {
	forts, punjab, punjabProvince := uuid.New(), uuid.New(), uuid.New()
	terms := stubTerms{
		taxonomy.Categories: {"forts": forts},
		taxonomy.Regions:    {"punjab": punjab},
	}

	csvData := `title,slug,tagline,latitude,longitude,province,is_published,categories,regions
Lahore Fort,,Citadel of the city,31.588,74.3107,Punjab,yes,Forts;Mosques,punjab
Rohtas Fort,rohtas,,,,,no,forts|forts,
,,,,,,,,
`
	sites := newStubSites()
	imp := NewCSVImporter(strings.NewReader(csvData), sites, terms, stubProvinces{{ID: punjabProvince, Name: "Punjab"}})

	res, err := imp.Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []string{"categories:mosques"}, res.Unknown)

	lahore := sites.bySlug["lahore-fort"]
	require.NotNil(t, lahore)
	require.NotNil(t, lahore.Tagline)
	assert.Equal(t, "Citadel of the city", *lahore.Tagline)
	require.NotNil(t, lahore.Latitude)
	assert.InDelta(t, 31.588, *lahore.Latitude, 1e-9)
	assert.True(t, lahore.IsPublished)
	require.NotNil(t, lahore.ProvinceID)
	assert.Equal(t, punjabProvince, *lahore.ProvinceID)
	assert.Equal(t, []uuid.UUID{forts}, sites.links[lahore.ID][taxonomy.Categories])
	assert.Equal(t, []uuid.UUID{punjab}, sites.links[lahore.ID][taxonomy.Regions])

	rohtas := sites.bySlug["rohtas"]
	require.NotNil(t, rohtas)
	assert.False(t, rohtas.IsPublished)
	assert.Nil(t, rohtas.ProvinceID)
	assert.Equal(t, []uuid.UUID{forts}, sites.links[rohtas.ID][taxonomy.Categories])
	assert.Empty(t, sites.links[rohtas.ID][taxonomy.Regions])
}

func TestCSVImporter_UpdateKeepsAbsentColumns(t *testing.T) {
	id := uuid.New()
	cover := "https://media.example/covers/x.jpg"
	history := "Old text"
	sites := newStubSites(&models.Site{ID: id, Title: "Derawar", Slug: "derawar-fort", CoverPhotoURL: &cover, HistoryContent: &history})

	csvData := "title,slug,tagline\nDerawar Fort,derawar-fort,Desert fortress\n"
	res, err := NewCSVImporter(strings.NewReader(csvData), sites, stubTerms{}, nil).Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Zero(t, res.Created)

	got := sites.bySlug["derawar-fort"]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Derawar Fort", got.Title)
	require.NotNil(t, got.CoverPhotoURL)
	assert.Equal(t, cover, *got.CoverPhotoURL)
	require.NotNil(t, got.HistoryContent)
	assert.Equal(t, history, *got.HistoryContent)
	_, linked := sites.links[id]
	assert.False(t, linked, "no term columns, no sync")
}

func TestCSVImporter_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"no title column", "slug\nabc\n", "missing required column"},
		{"empty title", "title,slug\n,abc\n", "line 2: title is required"},
		{"bad latitude", "title,latitude\nFort,north\n", "latitude"},
		{"latitude out of range", "title,latitude\nFort,91\n", "out of range"},
		{"unknown province", "title,province\nFort,Atlantis\n", "unknown province"},
		{"unsluggable title", "title\n!!!\n", "cannot derive a slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(tt.csv), newStubSites(), stubTerms{}, stubProvinces{})
			_, err := imp.Run(t.Context())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type failingSites struct{ *stubSites }

func (failingSites) UpsertBySlug(context.Context, *models.Site) (*models.Site, error) {
	return nil, errors.New("connection reset")
}

func TestCSVImporter_StopsAtStoreError(t *testing.T) {
	csvData := "title\nLahore Fort\nRohtas Fort\n"
	res, err := NewCSVImporter(strings.NewReader(csvData), failingSites{newStubSites()}, stubTerms{}, nil).Run(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert lahore-fort")
	assert.Zero(t, res.Imported)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"forts", "hill-forts"}, splitList(" Forts ; Hill Forts|forts;;"))
	assert.Empty(t, splitList(""))
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "Yes", "Y", "published"} {
		assert.True(t, parseBool(v), v)
	}
	for _, v := range []string{"", "0", "no", "draft"} {
		assert.False(t, parseBool(v), v)
	}
}
