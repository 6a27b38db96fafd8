// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage/internal/models"
)

func editor(isAdmin bool) *models.User {
	return &models.User{
		ID:          uuid.New(),
		Email:       "curator@heritage.local",
		DisplayName: "Curator",
		IsAdmin:     isAdmin,
		TOTPEnabled: true,
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func withCookie(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if value != "" {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: value})
	}
	return r
}

func TestFromUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		user      *models.User
		wantName  string
		wantAdmin bool
	}{
		{"admin", editor(true), "Curator", true},
		{"non-admin", editor(false), "Curator", false},
		{"no display name", &models.User{ID: uuid.New(), Email: "ayesha@heritage.local", IsAdmin: true}, "ayesha", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromUser(tt.user, now)
			assert.Equal(t, tt.user.ID, d.UserID)
			assert.Equal(t, tt.wantName, d.DisplayName)
			assert.Equal(t, tt.wantAdmin, d.IsAdmin)
			assert.False(t, d.TwoFADone, "a new sign-in still owes the second factor")
			assert.Equal(t, now, d.StartedAt)
		})
	}
}

func TestCookieID(t *testing.T) {
	valid, err := newID()
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"generated id", valid, true},
		{"missing", "", false},
		{"too short", "abc123", false},
		{"not hex", strings.Repeat("zz", idBytes), false},
		{"key injection", strings.Repeat("a", 2*idBytes-2) + "*:", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := cookieID(withCookie(tt.value))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.value, id)
			}
		})
	}
}

func TestNewStoreTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewStore(nil, Options{}).TTL())
	assert.Equal(t, 30*time.Minute, NewStore(nil, Options{TTL: 30 * time.Minute}).TTL())
}

func TestCookieFlags(t *testing.T) {
	for _, secure := range []bool{false, true} {
		c := NewStore(nil, Options{Secure: secure, TTL: time.Hour}).cookie("id", 3600)
		assert.Equal(t, secure, c.Secure)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, "/", c.Path)
	}
}

// Requests without a well-formed cookie are answered without Valkey; the
// nil client would panic otherwise.
func TestStoreWithoutValidCookie(t *testing.T) {
	s := NewStore(nil, Options{})
	ctx := t.Context()

	for _, value := range []string{"", "forged"} {
		data, err := s.Load(ctx, withCookie(value))
		assert.NoError(t, err)
		assert.Nil(t, data)

		assert.ErrorIs(t, s.Save(ctx, withCookie(value), &Data{}), ErrExpired)

		w := httptest.NewRecorder()
		require.NoError(t, s.End(ctx, w, withCookie(value)))
		assert.Equal(t, -1, sessionCookie(t, w).MaxAge)
	}
}

// testValkey connects to DB 15 and skips when Valkey is unreachable.
func testValkey(t *testing.T) *redis.Client {
	t.Helper()
	host, port := os.Getenv("VALKEY_HOST"), os.Getenv("VALKEY_PORT")
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err := client.Ping(t.Context()).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSignInLifecycle(t *testing.T) {
	client := testValkey(t)
	s := NewStore(client, Options{TTL: time.Minute})
	ctx := t.Context()

	w := httptest.NewRecorder()
	started, err := s.Start(ctx, w, editor(true))
	require.NoError(t, err)
	c := sessionCookie(t, w)
	assert.Equal(t, 60, c.MaxAge)
	t.Cleanup(func() { client.Del(ctx, keyPrefix+c.Value) })

	req := withCookie(c.Value)
	loaded, err := s.Load(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, started.UserID, loaded.UserID)
	assert.True(t, loaded.IsAdmin)
	assert.False(t, loaded.TwoFADone)

	loaded.TwoFADone = true
	require.NoError(t, s.Save(ctx, req, loaded))
	loaded, err = s.Load(ctx, req)
	require.NoError(t, err)
	assert.True(t, loaded.TwoFADone)

	ttl, err := client.TTL(ctx, keyPrefix+c.Value).Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 5)

	require.NoError(t, s.End(ctx, httptest.NewRecorder(), req))
	loaded, err = s.Load(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveDoesNotResurrect(t *testing.T) {
	client := testValkey(t)
	s := NewStore(client, Options{})
	ctx := t.Context()

	w := httptest.NewRecorder()
	data, err := s.Start(ctx, w, editor(true))
	require.NoError(t, err)
	c := sessionCookie(t, w)
	require.NoError(t, client.Del(ctx, keyPrefix+c.Value).Err())

	data.TwoFADone = true
	assert.ErrorIs(t, s.Save(ctx, withCookie(c.Value), data), ErrExpired)

	exists, err := client.Exists(ctx, keyPrefix+c.Value).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
