package handlers

import (
	"net/http"

	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/services"
)

type LedgerHandler struct {
	service *services.LedgerService
	log     *logger.Logger
}

func NewLedgerHandler(service *services.LedgerService, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{service: service, log: log}
}

// Create records an entry and reconciles its day
// @Summary Create entry
// @Tags lancamentos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.EntryInput true "Entry"
// @Success 201 {object} models.Entry
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /lancamentos [post]
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.EntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// List returns entries ordered by date
// @Summary List entries
// @Tags lancamentos
// @Security BearerAuth
// @Produce json
// @Param motoqueiroId query int false "Courier ID"
// @Param data query string false "Day (YYYY-MM-DD)"
// @Param inicio query string false "Range start (YYYY-MM-DD)"
// @Param fim query string false "Range end (YYYY-MM-DD)"
// @Success 200 {array} models.Entry
// @Failure 400 {object} services.ErrorResponse
// @Router /lancamentos [get]
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	courierID, err := optionalID(r, "motoqueiroId")
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	q := r.URL.Query()
	entries, err := h.service.ListEntries(r.Context(), services.EntryQuery{
		CourierID: courierID,
		Date:      q.Get("data"),
		Start:     q.Get("inicio"),
		End:       q.Get("fim"),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Get returns one entry
// @Summary Get entry
// @Tags lancamentos
// @Security BearerAuth
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} models.Entry
// @Failure 404 {object} services.ErrorResponse
// @Router /lancamentos/{id} [get]
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Update edits an entry and reconciles the old and new day
// @Summary Update entry
// @Tags lancamentos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param request body services.EntryPatch true "Changed fields"
// @Success 200 {object} models.Entry
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /lancamentos/{id} [put]
func (h *LedgerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	var patch services.EntryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete removes an entry and reconciles its day
// @Summary Delete entry
// @Tags lancamentos
// @Security BearerAuth
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} object{ok=bool}
// @Failure 404 {object} services.ErrorResponse
// @Router /lancamentos/{id} [delete]
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	if err := h.service.DeleteEntry(r.Context(), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
