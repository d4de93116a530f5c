package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/vibehub/backend/internal/observability"
)

// healthTimeout bounds each dependency ping
const healthTimeout = 2 * time.Second

// Pinger is a backing service the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the health check response structure.
type HealthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthHandler reports the server and its dependencies.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a HealthHandler probing each named dependency.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Check handles GET /health
// 200 when every dependency answers, 503 with the failing ones otherwise.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "ok",
		Message: "VibeHub backend is running",
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	for _, name := range names {
		if response.Checks == nil {
			response.Checks = make(map[string]string, len(names))
		}
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		err := h.checks[name].Ping(ctx)
		cancel()
		if err != nil {
			observability.LoggerFromContext(r.Context()).Warn("health check failed", "dependency", name, "error", err)
			response.Checks[name] = "unavailable"
			response.Status = "degraded"
			response.Message = "VibeHub backend is degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}

	writeJSON(w, status, response)
}
