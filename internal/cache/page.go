// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache for the public
// homepage and listing detail pages. Admin writes invalidate the pages
// they affect.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey. A nil *PageCache
// is valid and caches nothing.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// HomeKey is the cache key of the homepage.
func HomeKey() string {
	return "home"
}

// HeritageKey returns the cache key of a listing detail page.
func HeritageKey(slug string) string {
	return "heritage:" + slug
}

// Get retrieves cached HTML for a page key.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// Render serves key from the cache, or calls render and caches its
// output on success.
func (pc *PageCache) Render(ctx context.Context, key string, render func() ([]byte, error)) ([]byte, error) {
	if html, ok := pc.Get(ctx, key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return nil, err
	}
	pc.Set(ctx, key, html)
	return html, nil
}

// InvalidateListing drops the detail pages of the given slugs and the
// homepage. Pass the old and new slug when a listing is renamed.
func (pc *PageCache) InvalidateListing(ctx context.Context, slugs ...string) {
	if pc == nil {
		return
	}
	keys := []string{pageKeyPrefix + HomeKey()}
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, pageKeyPrefix+HeritageKey(s))
		}
	}
	if err := pc.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("page cache invalidate error", "keys", keys, "error", err)
	}
}

// InvalidateAll removes every cached page. Taxonomy edits use it, since
// term names appear on the homepage and on every listing.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if pc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache cleared", "deleted", deleted)
	}
}
