package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/plumekit/plume/internal/model"
)

var ErrCacheEntryNotFound = errors.New("cache entry not found")

// CacheEntryRepository is the durable tier of the two-tier cache.
type CacheEntryRepository interface {
	Upsert(entry *model.CacheEntry) error
	ByKey(key string) (*model.CacheEntry, error)
	Delete(key string) error
	DeleteExpired(now time.Time) (int64, error)
}

type cacheEntryRepository struct {
	db *sqlx.DB
}

func NewCacheEntryRepository(db *sqlx.DB) CacheEntryRepository {
	return &cacheEntryRepository{db: db}
}

// Upsert overwrites the value and expiry for an existing key; created_at keeps
// the original insertion time on conflict.
func (r *cacheEntryRepository) Upsert(entry *model.CacheEntry) error {
	query := `INSERT INTO cache_entries (key, value, expires_at, created_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`

	_, err := r.db.Exec(query,
		entry.Key,
		entry.Value,
		entry.ExpiresAt,
		entry.CreatedAt,
	)

	return err
}

func (r *cacheEntryRepository) ByKey(key string) (*model.CacheEntry, error) {
	entry := &model.CacheEntry{}
	query := `SELECT * FROM cache_entries WHERE key = $1`

	err := r.db.Get(entry, query, key)
	if err == sql.ErrNoRows {
		return nil, ErrCacheEntryNotFound
	}

	return entry, err
}

func (r *cacheEntryRepository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM cache_entries WHERE key = $1`, key)
	return err
}

// DeleteExpired removes all rows past their expiry. Only the optional sweeper
// calls this; the read path deletes expired rows one key at a time.
func (r *cacheEntryRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM cache_entries WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
