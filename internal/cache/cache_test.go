// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "page:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestPageCacheSetAndGet(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	if _, ok := pc.Get(ctx, HeritageKey("derawar-fort")); ok {
		t.Fatal("expected miss before Set")
	}
	pc.Set(ctx, HeritageKey("derawar-fort"), []byte("<h1>Derawar Fort</h1>"))

	got, ok := pc.Get(ctx, HeritageKey("derawar-fort"))
	if !ok || string(got) != "<h1>Derawar Fort</h1>" {
		t.Errorf("Get = %q, %v", got, ok)
	}
}

func TestPageCacheRender(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	calls := 0
	render := func() ([]byte, error) {
		calls++
		return []byte("home"), nil
	}
	for i := 0; i < 2; i++ {
		html, err := pc.Render(ctx, HomeKey(), render)
		if err != nil || string(html) != "home" {
			t.Fatalf("Render = %q, %v", html, err)
		}
	}
	if calls != 1 {
		t.Errorf("render called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := pc.Render(ctx, HeritageKey("x"), func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("expected render error, got %v", err)
	}
	if _, ok := pc.Get(ctx, HeritageKey("x")); ok {
		t.Error("failed render must not be cached")
	}
}

func TestPageCacheInvalidateListing(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	pc.Set(ctx, HomeKey(), []byte("home"))
	pc.Set(ctx, HeritageKey("old-slug"), []byte("old"))
	pc.Set(ctx, HeritageKey("other"), []byte("other"))

	pc.InvalidateListing(ctx, "old-slug", "new-slug", "")

	if _, ok := pc.Get(ctx, HomeKey()); ok {
		t.Error("homepage should be invalidated")
	}
	if _, ok := pc.Get(ctx, HeritageKey("old-slug")); ok {
		t.Error("listing page should be invalidated")
	}
	if _, ok := pc.Get(ctx, HeritageKey("other")); !ok {
		t.Error("unrelated listing should stay cached")
	}
}

func TestPageCacheInvalidateAll(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	pc.Set(ctx, HomeKey(), []byte("home"))
	pc.Set(ctx, HeritageKey("a"), []byte("a"))
	pc.InvalidateAll(ctx)

	for _, key := range []string{HomeKey(), HeritageKey("a")} {
		if _, ok := pc.Get(ctx, key); ok {
			t.Errorf("%s should be cleared", key)
		}
	}
}

func TestNilPageCache(t *testing.T) {
	var pc *PageCache
	ctx := context.Background()

	pc.Set(ctx, HomeKey(), []byte("x"))
	if _, ok := pc.Get(ctx, HomeKey()); ok {
		t.Error("nil cache should always miss")
	}
	pc.InvalidateListing(ctx, "a")
	pc.InvalidateAll(ctx)

	html, err := pc.Render(ctx, HomeKey(), func() ([]byte, error) { return []byte("fresh"), nil })
	if err != nil || string(html) != "fresh" {
		t.Errorf("Render = %q, %v", html, err)
	}
}

func TestKeys(t *testing.T) {
	if HomeKey() != "home" {
		t.Errorf("HomeKey() = %q", HomeKey())
	}
	if got := HeritageKey("lahore-fort"); got != "heritage:lahore-fort" {
		t.Errorf("HeritageKey() = %q", got)
	}
}

func TestNewPageCacheDefaultTTL(t *testing.T) {
	pc := NewPageCache(nil, 0)
	if pc.ttl != DefaultPageTTL {
		t.Errorf("ttl = %v, want %v", pc.ttl, DefaultPageTTL)
	}
}
