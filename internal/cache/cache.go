// Package cache provides the volatile tier of the two-tier cache. The tier is
// an injected dependency so deployments can pick a process-local memory tier
// or a shared Redis tier without touching the cache service.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired in this tier.
var ErrMiss = errors.New("cache miss")

// Tier is a volatile key/value store with per-key TTL. Implementations own
// their expiry; a Get must never return an expired value.
type Tier interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
