package auth

import (
	"encoding/json"
	"net/http"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/observability"
)

// Middleware rejects requests without a valid identity and stores the user
// id in the request context.
func Middleware(id Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := id.Authenticate(r)
			if err != nil {
				observability.LoggerFromContext(r.Context()).Info("unauthenticated request",
					"path", r.URL.Path, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(apperrors.BodyOf(apperrors.Unauthorized(err.Error())))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
