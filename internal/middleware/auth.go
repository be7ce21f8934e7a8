package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/motoqueiros/backend/internal/access"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/services"
)

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Authenticator struct {
	tokens  *access.TokenManager
	revoked RevocationChecker
	log     *logger.Logger
}

func NewAuthenticator(tokens *access.TokenManager, revoked RevocationChecker, log *logger.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked, log: log}
}

// AuthMiddleware verifies the bearer token and stores the principal in the
// request context.
func (a *Authenticator) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
			return
		}

		principal, err := a.tokens.Parse(parts[1])
		if err != nil {
			a.log.Debug("token rejected", "error", err)
			services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
			return
		}

		revoked, err := a.revoked.IsRevoked(r.Context(), principal.TokenID)
		if err != nil {
			// Revocation store down: accept the signed token.
			a.log.Warn("revocation check failed", "error", err)
		}
		if revoked {
			services.SendErrorResponse(w, "Token has been revoked", http.StatusUnauthorized, nil)
			return
		}

		ctx := access.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
