// Package api holds the JSON request/response helpers shared by the handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/plumekit/plume/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Decode reads the request body into v. An empty body is an error; handlers
// with optional bodies should check ContentLength first.
func Decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return errors.Join(apperr.ErrValidation, err)
	}
	return nil
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps an error to its HTTP status and writes a JSON error body.
// Unrecognized errors become a 500 with a generic message so internals never
// leak to clients.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperr.ErrExpired):
		status = http.StatusGone
		message = err.Error()
	case errors.Is(err, apperr.ErrAlreadyUsed):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		slog.Error("request failed", "error", err)
	}

	JSON(w, status, errorResponse{Error: message})
}
