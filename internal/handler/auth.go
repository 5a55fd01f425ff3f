package handler

import (
	"errors"
	"net/http"

	"github.com/plumekit/plume/internal/api"
	"github.com/plumekit/plume/internal/apperr"
	"github.com/plumekit/plume/internal/ctxkeys"
	"github.com/plumekit/plume/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, err)
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			api.Error(w, errors.Join(apperr.ErrConflict, err))
			return
		}
		api.Error(w, err)
		return
	}

	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		api.Error(w, err)
		return
	}
	h.authService.SetJWTCookie(w, token, expiry)

	api.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, err)
		return
	}

	user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			api.Error(w, errors.Join(apperr.ErrUnauthorized, err))
			return
		}
		api.Error(w, err)
		return
	}

	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		api.Error(w, err)
		return
	}
	h.authService.SetJWTCookie(w, token, expiry)

	api.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	api.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, ctxkeys.User(r.Context()))
}
