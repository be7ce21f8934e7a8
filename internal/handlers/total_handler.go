package handlers

import (
	"net/http"

	"github.com/motoqueiros/backend/internal/access"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/services"
)

type TotalHandler struct {
	totals    *services.TotalService
	dashboard *services.DashboardService
	log       *logger.Logger
}

func NewTotalHandler(totals *services.TotalService, dashboard *services.DashboardService, log *logger.Logger) *TotalHandler {
	return &TotalHandler{totals: totals, dashboard: dashboard, log: log}
}

// List returns totals newest first
// @Summary List totals
// @Tags totais
// @Security BearerAuth
// @Produce json
// @Param motoqueiroId query int false "Courier ID"
// @Param data query string false "Day (YYYY-MM-DD)"
// @Success 200 {array} models.Total
// @Failure 403 {object} services.ErrorResponse
// @Router /totais [get]
func (h *TotalHandler) List(w http.ResponseWriter, r *http.Request) {
	courierID, err := optionalID(r, "motoqueiroId")
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	totals, err := h.totals.List(r.Context(), services.TotalQuery{
		CourierID: courierID,
		Date:      r.URL.Query().Get("data"),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// Pay marks a total as paid
// @Summary Mark total as paid
// @Tags totais
// @Security BearerAuth
// @Produce json
// @Param id path int true "Total ID"
// @Success 200 {object} models.Total
// @Failure 404 {object} services.ErrorResponse
// @Router /totais/{id}/pagar [put]
func (h *TotalHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	total, err := h.totals.MarkPaid(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

// Dashboard returns the caller's own daily totals
// @Summary Courier dashboard
// @Description Defaults to the last 7 days when inicio and fim are not both given
// @Tags totais
// @Security BearerAuth
// @Produce json
// @Param inicio query string false "Range start (YYYY-MM-DD)"
// @Param fim query string false "Range end (YYYY-MM-DD)"
// @Success 200 {array} models.DashboardDay
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /totais/me [get]
func (h *TotalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := access.PrincipalFrom(r.Context())
	if !ok {
		writeServiceError(w, r, h.log, models.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	days, err := h.dashboard.ForCourier(r.Context(), principal.ID, services.DashboardQuery{
		Start: q.Get("inicio"),
		End:   q.Get("fim"),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
