package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/motoqueiros/backend/internal/access"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], s.err
}

func principalEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := access.PrincipalFrom(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Kind", string(p.Kind))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := access.NewTokenManager("test-secret", time.Hour)
	token, claims, err := tokens.Issue(7, access.KindCourier)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		revoked stubRevocations
		want    int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + token, want: http.StatusOK},
		{name: "revoked token", header: "Bearer " + token, revoked: stubRevocations{revoked: map[string]bool{claims.RegisteredClaims.ID: true}}, want: http.StatusUnauthorized},
		{name: "revocation store down", header: "Bearer " + token, revoked: stubRevocations{err: errors.New("redis down")}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuthenticator(tokens, tt.revoked, logger.Nop())
			r := httptest.NewRequest(http.MethodGet, "/totais/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			auth.AuthMiddleware(principalEcho(t)).ServeHTTP(w, r)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "motoqueiro", w.Header().Get("X-Kind"))
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	policy := access.DefaultPolicy()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	serve := func(p *access.Principal, op access.Operation) int {
		r := httptest.NewRequest(http.MethodPost, "/lancamentos", nil)
		if p != nil {
			r = r.WithContext(access.WithPrincipal(r.Context(), p))
		}
		w := httptest.NewRecorder()
		Authorize(policy, op, logger.Nop())(ok).ServeHTTP(w, r)
		return w.Code
	}

	admin := &access.Principal{ID: 1, Kind: access.KindAdmin}
	courier := &access.Principal{ID: 7, Kind: access.KindCourier}

	assert.Equal(t, http.StatusUnauthorized, serve(nil, access.OpCreateEntry))
	assert.Equal(t, http.StatusForbidden, serve(courier, access.OpCreateEntry))
	assert.Equal(t, http.StatusNoContent, serve(admin, access.OpCreateEntry))
	assert.Equal(t, http.StatusForbidden, serve(admin, access.OpDashboard))
	assert.Equal(t, http.StatusNoContent, serve(courier, access.OpDashboard))
	assert.Equal(t, http.StatusForbidden, serve(admin, access.Operation("entry.purge")))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := logger.FromCore(core)

	h := chimiddleware.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lancamentos/9", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, int64(len("missing")), fields["bytes"])
	assert.Equal(t, "/lancamentos/9", fields["path"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
