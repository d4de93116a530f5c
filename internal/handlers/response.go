package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/auth"
	"github.com/vibehub/backend/internal/observability"
)

// writeJSON is a helper function to write JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err to its status and error body. Internal failures are
// logged with their cause; the rest are the caller's fault and only noted.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	log := observability.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		log.Info("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, apperrors.BodyOf(err))
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.InvalidArg("invalid request body")
	}
	return nil
}

// caller returns the authenticated user set by the auth middleware.
func caller(r *http.Request) (string, error) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		return "", apperrors.Unauthorized("authentication required")
	}
	return id, nil
}
