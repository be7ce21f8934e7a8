package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/services"
)

const maxBodyBytes = 1_048_576 // 1 MB

// errBadBody is returned by decodeJSON; its message is already user facing.
type errBadBody struct{ msg string }

func (e errBadBody) Error() string { return e.msg }

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return errBadBody{"Invalid request body"}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errBadBody{"Request body must only contain a single JSON object"}
	}
	return nil
}

// writeJSON encodes v before the status goes out, so a value that cannot be
// encoded becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		services.SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// writeServiceError maps a service error onto a status and a message that
// leaks nothing internal.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var (
		badBody errBadBody
		vErr    *models.ValidationError
	)
	switch {
	case errors.As(err, &badBody):
		services.SendErrorResponse(w, badBody.msg, http.StatusBadRequest, nil)
	case errors.Is(err, models.ErrPersistence), errors.Is(err, models.ErrReconciliation):
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		services.SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
	case errors.As(err, &vErr):
		services.SendErrorResponse(w, vErr.Message, http.StatusBadRequest, vErr.Fields)
	case errors.Is(err, models.ErrValidation):
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, nil)
	case errors.Is(err, models.ErrUnauthorized):
		services.SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
	case errors.Is(err, models.ErrForbidden):
		services.SendErrorResponse(w, "Access denied", http.StatusForbidden, nil)
	case errors.Is(err, models.ErrNotFound):
		services.SendErrorResponse(w, "Resource not found", http.StatusNotFound, nil)
	case errors.Is(err, models.ErrConflict):
		services.SendErrorResponse(w, "Resource already exists", http.StatusConflict, nil)
	default:
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		services.SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
	}
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("id must be a positive integer", nil)
	}
	return id, nil
}

// optionalID parses an optional positive integer query parameter.
func optionalID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, models.NewValidationError(name+" must be a positive integer", nil)
	}
	return &id, nil
}
