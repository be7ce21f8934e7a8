package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/services"
	"github.com/motoqueiros/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"bad body", errBadBody{"Invalid request body"}, http.StatusBadRequest, "Invalid request body"},
		{"validation", models.NewValidationError("inicio must not be after fim", nil), http.StatusBadRequest, "inicio must not be after fim"},
		{"unauthorized", fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized), http.StatusUnauthorized, "Invalid credentials"},
		{"forbidden", models.ErrForbidden, http.StatusForbidden, "Access denied"},
		{"not found", fmt.Errorf("entry 3: %w", models.ErrNotFound), http.StatusNotFound, "Resource not found"},
		{"conflict", fmt.Errorf("login: %w", models.ErrConflict), http.StatusConflict, "Resource already exists"},
		{"reconciliation hides cause", fmt.Errorf("reconcile: %w: %w", models.ErrReconciliation, models.ErrNotFound), http.StatusInternalServerError, "An Internal Error Occurred"},
		{"unclassified", errors.New("pq: connection refused"), http.StatusInternalServerError, "An Internal Error Occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/lancamentos", nil)

			writeServiceError(w, r, logger.Nop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp services.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) error {
		var dst struct {
			Login string `json:"login"`
		}
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		return decodeJSON(w, r, &dst)
	}

	assert.NoError(t, decode(`{"login":"admin"}`))
	assert.EqualError(t, decode(`{"login":`), "Invalid request body")
	assert.EqualError(t, decode(`{"login":"admin","extra":1}`), "Invalid request body")
	assert.EqualError(t, decode(`{"login":"a"}{"login":"b"}`), "Request body must only contain a single JSON object")
}

func TestWriteJSON(t *testing.T) {
	t.Run("encodes body with status", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})

	t.Run("unencodable value is a server error", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusOK, []models.Total{{ID: 1, Amount: math.Inf(1)}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp services.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "An Internal Error Occurred", resp.Error)
	})
}

func TestLedgerHandler_BadParams(t *testing.T) {
	st := memory.New()
	ledger := services.NewLedgerService(st, services.NewReconciler(), services.NewValidationHelper(), logger.Nop())
	h := NewLedgerHandler(ledger, logger.Nop())

	r := chi.NewRouter()
	r.Get("/lancamentos", h.List)
	r.Get("/lancamentos/{id}", h.Get)

	tests := []struct {
		path   string
		status int
	}{
		{"/lancamentos/abc", http.StatusBadRequest},
		{"/lancamentos/0", http.StatusBadRequest},
		{"/lancamentos/12", http.StatusNotFound},
		{"/lancamentos?motoqueiroId=x", http.StatusBadRequest},
		{"/lancamentos?inicio=2024-01-40", http.StatusBadRequest},
		{"/lancamentos", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("empty list is an array", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lancamentos", nil))
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

type failingPinger struct{ err error }

func (p failingPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler(nil, logger.Nop()).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("database down", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler(failingPinger{errors.New("dial tcp: refused")}, logger.Nop()).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy"}`, w.Body.String())
	})
}
