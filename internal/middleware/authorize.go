package middleware

import (
	"errors"
	"net/http"

	"github.com/motoqueiros/backend/internal/access"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/services"
)

// Authorize rejects the request before the handler runs unless policy
// allows op for the principal in the context.
func Authorize(policy access.Policy, op access.Operation, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := access.PrincipalFrom(r.Context())
			if err := policy.Check(op, principal); err != nil {
				if errors.Is(err, models.ErrUnauthorized) {
					services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
					return
				}
				log.Warn("access denied", "operation", string(op), "principal_id", principal.ID, "kind", string(principal.Kind))
				services.SendErrorResponse(w, "Access denied", http.StatusForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
