package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/ctxkeys"
	"github.com/plumekit/plume/internal/service"
)

// maxFeatherBody bounds feather payloads; actual media goes through the
// upload endpoint, not the feather body.
const maxFeatherBody = 1 << 20 // 1 MB

type FeatherHandler struct {
	featherService *service.FeatherService
}

func NewFeatherHandler(featherService *service.FeatherService) *FeatherHandler {
	return &FeatherHandler{featherService: featherService}
}

// Types lists the feather catalog.
func (h *FeatherHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.featherService.Types()
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, types)
}

// Create attaches a feather of the kind named in the path to a post.
func (h *FeatherHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := readPayload(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	user := ctxkeys.User(r.Context())
	feather, err := h.featherService.Create(user.ID, r.PathValue("id"), r.PathValue("kind"), input)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, feather)
}

func (h *FeatherHandler) Show(w http.ResponseWriter, r *http.Request) {
	feather, err := h.featherService.ByID(r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, feather)
}

// ShowByPost returns the feather attached to a post.
func (h *FeatherHandler) ShowByPost(w http.ResponseWriter, r *http.Request) {
	feather, err := h.featherService.ByPostID(r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, feather)
}

func (h *FeatherHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, err := readPayload(r)
	if err != nil {
		api.Error(w, err)
		return
	}

	user := ctxkeys.User(r.Context())
	feather, err := h.featherService.Update(user.ID, r.PathValue("id"), input)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, feather)
}

func (h *FeatherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	err := h.featherService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		api.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readPayload reads the raw JSON body so the service can do kind-specific
// decoding.
func readPayload(r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFeatherBody))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, apperr.ErrValidation
	}
	return body, nil
}
