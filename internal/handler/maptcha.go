package handler

import (
	"net/http"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/service"
)

type MAPTCHAHandler struct {
	maptchaService *service.MAPTCHAService
}

func NewMAPTCHAHandler(maptchaService *service.MAPTCHAService) *MAPTCHAHandler {
	return &MAPTCHAHandler{maptchaService: maptchaService}
}

type maptchaVerifyRequest struct {
	ID     string `json:"id"`
	Answer int    `json:"answer"`
}

// Generate issues a fresh arithmetic challenge. The answer never leaves the
// server.
func (h *MAPTCHAHandler) Generate(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.maptchaService.Generate()
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, challenge)
}

// Verify consumes the challenge and reports whether the answer was right.
// The challenge is spent either way.
func (h *MAPTCHAHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req maptchaVerifyRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, err)
		return
	}

	correct, err := h.maptchaService.Verify(req.ID, req.Answer)
	if err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]bool{"success": correct})
}
