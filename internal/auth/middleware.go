package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	httperrors "github.com/skillgauge/assessment-engine/pkg/http/errors"
)

type claimsKey struct{}

// RequireAttemptToken validates the Bearer token and injects its claims
// into the request context. Requests without a valid token are rejected.
func RequireAttemptToken(mgr *Manager, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Attempt token required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid authorization header")
				return
			}

			claims, err := mgr.ValidateToken(parts[1])
			if err != nil {
				logger.Warn().Err(err).Msg("attempt token validation failed")
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid or expired attempt token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the attempt claims injected by the
// middleware, or nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *AttemptClaims {
	claims, _ := ctx.Value(claimsKey{}).(*AttemptClaims)
	return claims
}
