package middleware

import (
	"net/http"

	"listing-review/internal/authz"

	"go.uber.org/zap"
)

// RequireCapability rejects requests whose identity's role lacks c. This is
// the authoritative check; the client gate only mirrors it.
func RequireCapability(c authz.Capability, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				logger.Warn("Identity not found in context")
				RespondWithError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			if !authz.Allows(identity.Role, c) {
				logger.Warn("Role not authorized",
					zap.String("user_id", identity.ID),
					zap.Stringer("role", identity.Role),
					zap.Stringer("capability", c),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
