// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage/internal/middleware"
	"heritage/internal/models"
	"heritage/internal/session"
	"heritage/internal/store"
	"heritage/internal/taxonomy"
)

func helperSession() *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "editor@heritage.local",
		DisplayName: "Test Editor",
		IsAdmin:     true,
		TwoFADone:   true,
	}
}

// helperRequest builds a request whose context carries sess.
func helperRequest(method, target string, sess *session.Data) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if sess != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), sess))
	}
	return req
}

func strPtr(s string) *string { return &s }

func TestNew(t *testing.T) {
	for _, dev := range []bool{true, false} {
		rn, err := New(dev)
		require.NoError(t, err)

		for _, name := range []string{"dashboard", "login", "2fa_setup", "2fa_verify", "taxonomy", "listings", "listing_edit", "listing_gallery", "listing_extras", "listing_story", "home_edit"} {
			assert.Contains(t, rn.admin, name)
		}
		for _, name := range []string{"home", "explore", "heritage", "gallery", "story", "not_found"} {
			assert.Contains(t, rn.public, name)
		}
		assert.NotContains(t, rn.admin, "base")
		assert.NotContains(t, rn.admin, "_flashes")
	}
}

func TestAssetMode(t *testing.T) {
	tests := []struct {
		dev       bool
		want, not string
	}{
		{true, "cdn.tailwindcss.com", "/static/css/admin.css"},
		{false, "/static/css/admin.css", "cdn.tailwindcss.com"},
	}
	for _, tt := range tests {
		rn, err := New(tt.dev)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		rn.Page(w, helperRequest(http.MethodGet, "/admin/login", nil), "login", &PageData{Title: "Sign In"})

		assert.Contains(t, w.Body.String(), tt.want)
		assert.NotContains(t, w.Body.String(), tt.not)
	}
}

func TestPageRendering(t *testing.T) {
	rn, err := New(true)
	require.NoError(t, err)

	sess := helperSession()
	w := httptest.NewRecorder()
	rn.Page(w, helperRequest(http.MethodGet, "/admin", sess), "dashboard", &PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data:    map[string]any{"ListingCount": 42, "CategoryCount": 7, "RegionCount": 3},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `<main id="content"`)
	assert.Contains(t, body, "htmx:responseError")
	assert.Contains(t, body, "42")
	assert.Contains(t, body, "Test Editor")
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestHTMXPartialRendering(t *testing.T) {
	rn, err := New(true)
	require.NoError(t, err)

	req := helperRequest(http.MethodGet, "/admin", helperSession())
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	rn.Page(w, req, "dashboard", &PageData{
		Title: "Dashboard",
		Data:  map[string]any{"ListingCount": 1, "CategoryCount": 0, "RegionCount": 0},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.NotContains(t, body, "<head>")
	assert.Contains(t, body, "Dashboard")
}

func TestPageStatus(t *testing.T) {
	rn, err := New(true)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	rn.PageStatus(w, helperRequest(http.MethodPost, "/admin/login", nil), http.StatusUnauthorized, "login", &PageData{
		Title: "Sign In",
		Data:  map[string]any{"Error": "Invalid email or password.", "Email": "a@b.c"},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password.")
	assert.Contains(t, w.Body.String(), `value="a@b.c"`)
}

func TestStandaloneTemplates(t *testing.T) {
	rn, err := New(true)
	require.NoError(t, err)

	for _, name := range []string{"login", "2fa_setup", "2fa_verify"} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			rn.Page(w, helperRequest(http.MethodGet, "/admin/"+name, nil), name, &PageData{
				Title: name,
				Data:  map[string]any{"QRCode": "iVBORw0KGgo=", "Secret": "JBSWY3DPEHPK3PXP"},
			})

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
			assert.NotContains(t, w.Body.String(), "Heritage Admin</div>")
		})
	}
}

func TestMissingTemplate(t *testing.T) {
	rn, err := New(true)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	rn.Page(w, helperRequest(http.MethodGet, "/admin/nope", nil), "nonexistent", &PageData{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestCSRFInjection(t *testing.T) {
	rn, err := New(true)
	require.NoError(t, err)

	var captured *http.Request
	h := middleware.NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	require.NotNil(t, captured)

	token := middleware.CSRFTokenFromCtx(captured.Context())
	require.NotEmpty(t, token)

	data := &PageData{Title: "Sign In"}
	w := httptest.NewRecorder()
	rn.Page(w, captured, "login", data)

	assert.Contains(t, w.Body.String(), token)
	assert.Equal(t, token, data.CSRFToken)
}

func TestSessionInjectionFromContext(t *testing.T) {
	rn, err := New(true)
	require.NoError(t, err)

	data := &PageData{
		Title: "Dashboard",
		Data:  map[string]any{"ListingCount": 0, "CategoryCount": 0, "RegionCount": 0},
	}
	w := httptest.NewRecorder()
	rn.Page(w, helperRequest(http.MethodGet, "/admin", helperSession()), "dashboard", data)

	require.NotNil(t, data.Session)
	assert.Equal(t, "Test Editor", data.Session.DisplayName)
	assert.Contains(t, w.Body.String(), "Test Editor")
}

func TestTaxonomyTemplate(t *testing.T) {
	rn, err := New(true)
	require.NoError(t, err)

	rootID, childID := uuid.New(), uuid.New()
	f := taxonomy.NewForest([]models.Term{
		{ID: rootID, Name: "Forts", Slug: "forts", IsActive: true},
		{ID: childID, Name: "Hill forts", Slug: "hill-forts", ParentID: &rootID, SortOrder: 1},
	})
	rows := []map[string]any{}
	for _, n := range f.Nodes() {
		rows = append(rows, map[string]any{"Term": n.Term, "Depth": n.Depth, "Parents": f.ParentOptions(n.Term.ID), "First": true, "Last": true})
	}

	req := helperRequest(http.MethodGet, "/admin/taxonomy/categories", helperSession())
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	rn.Page(w, req, "taxonomy", &PageData{
		Title:   "Categories",
		Section: "categories",
		Data: map[string]any{
			"Kind":  "categories",
			"Label": "New Category",
			"Query": "",
			"Rows":  rows,
			"Total": 2,
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `id="name-`+rootID.String()+`"`)
	assert.Contains(t, body, "/admin/taxonomy/categories/terms/"+childID.String()+"/field/slug")
	assert.Contains(t, body, "Hill forts")
	assert.Contains(t, body, "selected")
}

func TestPublicRendering(t *testing.T) {
	rn, err := New(false)
	require.NoError(t, err)

	t.Run("home applies default title", func(t *testing.T) {
		page, err := rn.Public("home", &PublicData{Data: map[string]any{
			"Regions":    []models.Term{{ID: uuid.New(), Name: "Punjab"}},
			"Categories": []models.Term{},
		}})
		require.NoError(t, err)
		assert.Contains(t, string(page), models.DefaultSiteTitle)
		assert.Contains(t, string(page), "Punjab")
	})

	t.Run("heritage renders markdown and map", func(t *testing.T) {
		lat, lng := 31.588, 74.31
		site := &models.Site{
			ID:             uuid.New(),
			Title:          "Lahore Fort",
			Slug:           "lahore-fort",
			Tagline:        strPtr("Citadel of the city"),
			HistoryContent: strPtr("Built in the **Mughal** era."),
			Latitude:       &lat,
			Longitude:      &lng,
		}
		page, err := rn.Public("heritage", &PublicData{
			Title: site.Title,
			Data: map[string]any{
				"Site":     site,
				"MapURL":   site.MapEmbedURL(),
				"Sections": []models.CustomSection{{Title: "Gates", Content: strPtr("Alamgiri Gate")}},
				"Sources":  []models.BibliographySource{{Title: "Lahore: Past and Present", URL: strPtr("https://example.org/book")}},
			},
		})
		require.NoError(t, err)
		body := string(page)
		assert.Contains(t, body, "<strong>Mughal</strong>")
		assert.Contains(t, body, "google.com/maps")
		assert.Contains(t, body, "Alamgiri Gate")
		assert.Contains(t, body, "https://example.org/book")
	})

	t.Run("explore lists cards", func(t *testing.T) {
		q := store.ExploreQuery{}.Normalize()
		page, err := rn.Public("explore", &PublicData{Data: map[string]any{
			"Query":  q,
			"Result": &store.ExplorePage{Sites: []models.SiteCard{{Slug: "rohtas-fort", Title: "Rohtas Fort"}}, Total: 1, Page: 1},
			"Pages":  1,
		}})
		require.NoError(t, err)
		assert.Contains(t, string(page), `href="/heritage/rohtas-fort"`)
		assert.False(t, strings.Contains(string(page), "Page 1 of"))
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := rn.Public("missing", &PublicData{})
		assert.Error(t, err)
	})
}

func TestIsHTMX(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"true", true},
		{"false", false},
		{"yes", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("HX-Request", tt.header)
		}
		assert.Equal(t, tt.want, isHTMX(req), "header %q", tt.header)
	}
}
