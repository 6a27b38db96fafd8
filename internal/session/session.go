// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps admin sign-ins in Valkey. A session starts from a
// stored user after the password check, carries the admin flag the
// AdminGuard reads, and is marked verified once the TOTP code passes.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"heritage/internal/models"
)

const (
	// CookieName is the session cookie.
	CookieName = "hp_session"

	// DefaultTTL applies when Options.TTL is zero.
	DefaultTTL = 12 * time.Hour

	keyPrefix = "session:"
	idBytes   = 32
)

// ErrExpired is returned by Save when the session is gone from Valkey.
var ErrExpired = errors.New("session expired")

// Data is the stored session payload.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	TwoFADone   bool      `json:"two_fa_done"`
	StartedAt   time.Time `json:"started_at"`
}

// FromUser builds the payload for a fresh sign-in of u. The second
// factor is always pending.
func FromUser(u *models.User, now time.Time) *Data {
	return &Data{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.Name(),
		IsAdmin:     u.IsAdmin,
		StartedAt:   now,
	}
}

// Options configures a Store.
type Options struct {
	TTL    time.Duration
	Secure bool // HTTPS-only cookie
}

// Store reads and writes sessions in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewStore returns a Store over client.
func NewStore(client *redis.Client, opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl, secure: opts.Secure, now: time.Now}
}

// TTL reports how long a session lives without activity.
func (s *Store) TTL() time.Duration { return s.ttl }

// Start opens a session for u and sets the cookie.
func (s *Store) Start(ctx context.Context, w http.ResponseWriter, u *models.User) (*Data, error) {
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	data := FromUser(u, s.now())
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	http.SetCookie(w, s.cookie(id, int(s.ttl.Seconds())))
	return data, nil
}

// Load returns the session named by the request cookie, or nil when the
// cookie is missing, malformed or expired. Malformed ids never reach
// Valkey.
func (s *Store) Load(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := cookieID(r)
	if !ok {
		return nil, nil
	}
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

// Save rewrites an existing session and renews its TTL. A session that
// expired in the meantime is not recreated; Save returns ErrExpired.
func (s *Store) Save(ctx context.Context, r *http.Request, data *Data) error {
	id, ok := cookieID(r)
	if !ok {
		return ErrExpired
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	updated, err := s.client.SetXX(ctx, keyPrefix+id, payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !updated {
		return ErrExpired
	}
	return nil
}

// End deletes the session and expires the cookie.
func (s *Store) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, s.cookie("", -1))
	id, ok := cookieID(r)
	if !ok {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// cookieID returns the session id carried by r if it has the shape
// newID produces.
func cookieID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || len(c.Value) != 2*idBytes {
		return "", false
	}
	if _, err := hex.DecodeString(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
