package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plumekit/plume/internal/apperr"
)

func newCacheFixture(t *testing.T) (*CacheService, *fakeTier, *fakeCacheRepo, *time.Time) {
	t.Helper()

	tier := newFakeTier()
	repo := newFakeCacheRepo()
	svc := NewCacheService(tier, repo, 0)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return svc, tier, repo, &now
}

func TestCacheSetAndGet(t *testing.T) {
	svc, tier, repo, _ := newCacheFixture(t)
	ctx := context.Background()

	err := svc.Set(ctx, "page:/", "<html>home</html>", time.Minute)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Both tiers hold the value after a write-through set.
	if _, ok := tier.entries["page:/"]; !ok {
		t.Error("volatile tier missing entry after Set")
	}
	if _, ok := repo.entries["page:/"]; !ok {
		t.Error("durable tier missing entry after Set")
	}

	got, err := svc.Get(ctx, "page:/")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "<html>home</html>" {
		t.Errorf("Get = %q, want %q", got, "<html>home</html>")
	}
}

func TestCacheSetValidation(t *testing.T) {
	svc, _, _, _ := newCacheFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"empty key", "", "v"},
		{"empty value", "k", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Set(ctx, tt.key, tt.value, time.Minute)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Set(%q, %q) = %v, want ErrValidation", tt.key, tt.value, err)
			}
		})
	}
}

func TestCacheGetMiss(t *testing.T) {
	svc, _, _, _ := newCacheFixture(t)

	_, err := svc.Get(context.Background(), "nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get(miss) = %v, want ErrNotFound", err)
	}
}

func TestCacheDurableFallbackRepopulatesVolatile(t *testing.T) {
	svc, tier, _, _ := newCacheFixture(t)
	ctx := context.Background()

	err := svc.Set(ctx, "k", "v", time.Minute)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Simulate a volatile wipe (restart, eviction).
	delete(tier.entries, "k")
	setsBefore := tier.sets

	got, err := svc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}
	if tier.sets != setsBefore+1 {
		t.Error("durable hit did not repopulate the volatile tier")
	}
	if tier.entries["k"] != "v" {
		t.Error("volatile tier missing value after repopulation")
	}
}

func TestCacheLazyExpiry(t *testing.T) {
	svc, tier, repo, now := newCacheFixture(t)
	ctx := context.Background()

	err := svc.Set(ctx, "k", "v", time.Minute)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Force the read down to the durable tier, then move past the deadline.
	delete(tier.entries, "k")
	*now = now.Add(2 * time.Minute)

	_, err = svc.Get(ctx, "k")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Get(expired) = %v, want ErrNotFound", err)
	}

	// The expired row is purged by the read itself.
	if _, ok := repo.entries["k"]; ok {
		t.Error("expired durable row survived the Get")
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	svc, _, repo, now := newCacheFixture(t)

	err := svc.Set(context.Background(), "k", "v", 0)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	entry := repo.entries["k"]
	want := now.Add(DefaultCacheTTL)
	if !entry.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", entry.ExpiresAt, want)
	}
}

func TestCacheSweep(t *testing.T) {
	svc, _, repo, now := newCacheFixture(t)
	ctx := context.Background()

	for _, item := range []struct {
		key string
		ttl time.Duration
	}{
		{"short", time.Minute},
		{"long", time.Hour},
	} {
		err := svc.Set(ctx, item.key, "v", item.ttl)
		if err != nil {
			t.Fatalf("Set(%s): %v", item.key, err)
		}
	}

	*now = now.Add(30 * time.Minute)

	removed, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep removed %d rows, want 1", removed)
	}
	if _, ok := repo.entries["long"]; !ok {
		t.Error("Sweep removed a live row")
	}
}
