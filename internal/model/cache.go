package model

import (
	"time"
)

// CacheEntry is the durable tier of the two-tier cache. Rows are only removed
// when an expired key is read; there is no expiry on the write path.
type CacheEntry struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
