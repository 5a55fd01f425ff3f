package handler

import (
	"net/http"
	"time"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/service"
)

type CacheHandler struct {
	cacheService *service.CacheService
}

func NewCacheHandler(cacheService *service.CacheService) *CacheHandler {
	return &CacheHandler{cacheService: cacheService}
}

type cacheSetRequest struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type cacheEntryResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Set stores a value in both cache tiers. A zero or absent TTL falls back to
// the default.
func (h *CacheHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req cacheSetRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, err)
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	err = h.cacheService.Set(r.Context(), req.Key, req.Value, ttl)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// Get reads a key through the tiers; expired or missing keys are a 404.
func (h *CacheHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	value, err := h.cacheService.Get(r.Context(), key)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, cacheEntryResponse{Key: key, Value: value})
}
