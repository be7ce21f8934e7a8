package handlers

import (
	"net/http"

	"github.com/motoqueiros/backend/internal/access"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/services"
)

type AuthHandler struct {
	service *services.AuthService
	log     *logger.Logger
}

func NewAuthHandler(service *services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

// LoginAdmin authenticates an admin
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Login request"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	resp, err := h.service.LoginAdmin(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// LoginCourier authenticates a courier
// @Summary Courier login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Login request"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /login-motoqueiro [post]
func (h *AuthHandler) LoginCourier(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	resp, err := h.service.LoginCourier(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the caller's token
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{ok=bool}
// @Failure 401 {object} services.ErrorResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := access.PrincipalFrom(r.Context())
	if !ok {
		writeServiceError(w, r, h.log, models.ErrUnauthorized)
		return
	}

	if err := h.service.Logout(r.Context(), *principal); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
