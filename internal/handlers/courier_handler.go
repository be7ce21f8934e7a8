package handlers

import (
	"net/http"

	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/services"
)

type CourierHandler struct {
	service *services.CourierService
	log     *logger.Logger
}

func NewCourierHandler(service *services.CourierService, log *logger.Logger) *CourierHandler {
	return &CourierHandler{service: service, log: log}
}

// Create registers a courier
// @Summary Create courier
// @Tags motoqueiros
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.CourierInput true "Courier"
// @Success 201 {object} models.Courier
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /motoqueiros [post]
func (h *CourierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CourierInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	courier, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, courier)
}

// List returns every courier
// @Summary List couriers
// @Tags motoqueiros
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Courier
// @Failure 403 {object} services.ErrorResponse
// @Router /motoqueiros [get]
func (h *CourierHandler) List(w http.ResponseWriter, r *http.Request) {
	couriers, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, couriers)
}

// Delete removes a courier and its ledger
// @Summary Delete courier
// @Tags motoqueiros
// @Security BearerAuth
// @Produce json
// @Param id path int true "Courier ID"
// @Success 200 {object} object{ok=bool}
// @Failure 404 {object} services.ErrorResponse
// @Router /motoqueiros/{id} [delete]
func (h *CourierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
