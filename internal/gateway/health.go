package gateway

import (
	"net/http"
	"time"

	"github.com/flemzord/parley/internal/metrics"
	"github.com/flemzord/parley/internal/provider"
)

// HealthResponse is the JSON response for GET /api/health.
type HealthResponse struct {
	Status    string            `json:"status"` // "healthy" or "unhealthy"
	Model     string            `json:"model,omitempty"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime,omitempty"`
	History   int               `json:"history"`
	Error     string            `json:"error,omitempty"`
	Metrics   *metrics.Snapshot `json:"metrics,omitempty"`
}

// handleHealth reports liveness. With ?probe=1 it also sends a minimal
// completion to the provider and reports 500 if that fails.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "healthy",
			Model:     g.chat.Model(),
			Timestamp: g.now().Format(time.RFC3339Nano),
			Uptime:    time.Since(g.startedAt).Round(time.Second).String(),
			History:   g.chat.Session().Len(),
		}
		if g.metrics != nil {
			snap := g.metrics.Snapshot()
			resp.Metrics = &snap
		}

		if r.URL.Query().Get("probe") == "1" {
			if err := g.chat.HealthCheck(r.Context()); err != nil {
				g.logger.Error("health probe failed", "op", "health", "kind", provider.KindOf(err), "error", err)
				writeJSON(w, http.StatusInternalServerError, HealthResponse{
					Status:    "unhealthy",
					Timestamp: resp.Timestamp,
					Error:     err.Error(),
				})
				return
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
