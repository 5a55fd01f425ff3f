package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/cache"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

// DefaultCacheTTL applies when a Set carries no explicit ttl.
const DefaultCacheTTL = time.Hour

// CacheService is the two-tier key/value cache: a volatile tier for fast
// reads and a durable tier surviving restarts. Reads go volatile first;
// durable hits repopulate the volatile tier. Expiry is evaluated lazily at
// read time only.
type CacheService struct {
	volatile   cache.Tier
	durable    repository.CacheEntryRepository
	defaultTTL time.Duration
	now        func() time.Time
}

// NewCacheService builds the cache over the given tiers. A zero defaultTTL
// falls back to DefaultCacheTTL.
func NewCacheService(volatile cache.Tier, durable repository.CacheEntryRepository, defaultTTL time.Duration) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = DefaultCacheTTL
	}
	return &CacheService{
		volatile:   volatile,
		durable:    durable,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Set writes through both tiers. The volatile write is synchronous, so a Get
// for the same key immediately after Set never misses.
func (s *CacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", apperr.ErrValidation)
	}
	if value == "" {
		return fmt.Errorf("%w: value is required", apperr.ErrValidation)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	err := s.durable.Upsert(&model.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to write durable cache entry: %w", err)
	}

	err = s.volatile.Set(ctx, key, value, ttl)
	if err != nil {
		// The durable row is in place; the next Get repopulates the tier.
		slog.Warn("volatile cache set failed", "key", key, "error", err)
	}

	return nil
}

// Get checks the volatile tier, then the durable tier. A live durable hit
// repopulates the volatile tier with the remaining ttl; an expired durable row
// is deleted on the spot and reported as a miss.
func (s *CacheService) Get(ctx context.Context, key string) (string, error) {
	value, err := s.volatile.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("volatile cache get failed", "key", key, "error", err)
	}

	entry, err := s.durable.ByKey(key)
	if err != nil {
		if errors.Is(err, repository.ErrCacheEntryNotFound) {
			return "", fmt.Errorf("%w: key %q", apperr.ErrNotFound, key)
		}
		return "", err
	}

	now := s.now()
	if entry.Expired(now) {
		err = s.durable.Delete(key)
		if err != nil {
			slog.Warn("failed to delete expired cache entry", "key", key, "error", err)
		}
		return "", fmt.Errorf("%w: key %q", apperr.ErrNotFound, key)
	}

	err = s.volatile.Set(ctx, key, entry.Value, entry.ExpiresAt.Sub(now))
	if err != nil {
		slog.Warn("volatile cache repopulate failed", "key", key, "error", err)
	}

	return entry.Value, nil
}

// Sweep deletes expired durable rows. It exists as a separate operation so a
// deployment can schedule it independently; the read path never depends on it.
func (s *CacheService) Sweep(ctx context.Context) (int64, error) {
	return s.durable.DeleteExpired(s.now())
}

// RunSweeper runs Sweep on the interval until ctx is canceled.
func (s *CacheService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				slog.Error("cache sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("cache sweep removed expired entries", "count", removed)
			}
		}
	}
}
