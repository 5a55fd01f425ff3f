package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/plumekit/plume/internal/cache"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/service"
)

type memCacheRepo struct {
	entries map[string]*model.CacheEntry
}

func (r *memCacheRepo) Upsert(entry *model.CacheEntry) error {
	copied := *entry
	r.entries[entry.Key] = &copied
	return nil
}

func (r *memCacheRepo) ByKey(key string) (*model.CacheEntry, error) {
	e, ok := r.entries[key]
	if !ok {
		return nil, repository.ErrCacheEntryNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *memCacheRepo) Delete(key string) error {
	delete(r.entries, key)
	return nil
}

func (r *memCacheRepo) DeleteExpired(now time.Time) (int64, error) {
	var removed int64
	for key, e := range r.entries {
		if e.Expired(now) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed, nil
}

func newCacheMux() *http.ServeMux {
	repo := &memCacheRepo{entries: make(map[string]*model.CacheEntry)}
	svc := service.NewCacheService(cache.NewMemoryTier(), repo, 0)
	h := NewCacheHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cache", h.Set)
	mux.HandleFunc("GET /api/cache/{key}", h.Get)
	return mux
}

func TestCacheHandlerRoundTrip(t *testing.T) {
	mux := newCacheMux()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cache",
		strings.NewReader(`{"key":"greeting","value":"hello","ttl_seconds":60}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Set status = %d, body %s", rec.Code, rec.Body.String())
	}

	var setBody map[string]bool
	err := json.Unmarshal(rec.Body.Bytes(), &setBody)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !setBody["success"] {
		t.Errorf("Set body = %s, want success true", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/cache/greeting", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Get status = %d", rec.Code)
	}

	var body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	err = json.Unmarshal(rec.Body.Bytes(), &body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Value != "hello" {
		t.Errorf("value = %q, want hello", body.Value)
	}
}

func TestCacheHandlerMiss(t *testing.T) {
	mux := newCacheMux()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cache/absent", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Get(absent) status = %d, want 404", rec.Code)
	}
}

func TestCacheHandlerRejectsEmptyKey(t *testing.T) {
	mux := newCacheMux()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cache",
		strings.NewReader(`{"value":"orphan"}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Set(no key) status = %d, want 400", rec.Code)
	}
}
