package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"company-pulse/internal/handler/http/respond"
	"company-pulse/internal/usecase/ai"
)

// HealthReporter returns the provider health snapshot.
type HealthReporter interface {
	Health(ctx context.Context, forceRefresh bool) (*ai.HealthSnapshot, error)
}

// AIHealthResponse is the body of GET /health/ai.
type AIHealthResponse struct {
	Status string `json:"status"` // "healthy", "degraded" or "unavailable"
	*ai.HealthSnapshot
	Error string `json:"error,omitempty"`
}

// AIHealthHandler serves GET /health/ai[?refresh=true].
//
// 200 when a primary provider exists ("degraded" if it is degraded or there
// is no fallback), 503 otherwise. refresh=true bypasses the snapshot cache.
type AIHealthHandler struct {
	reporter HealthReporter
}

// NewAIHealthHandler creates the provider health handler.
func NewAIHealthHandler(reporter HealthReporter) *AIHealthHandler {
	return &AIHealthHandler{reporter: reporter}
}

func (h *AIHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	snap, err := h.reporter.Health(ctx, refresh)
	if err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{
			Status: "unavailable",
			Error:  respond.SanitizeError(err),
		})
		return
	}
	if !snap.HasPrimary() {
		respond.JSON(w, http.StatusServiceUnavailable, AIHealthResponse{Status: "unavailable", HealthSnapshot: snap})
		return
	}

	status := "healthy"
	if snap.Providers[snap.PrimaryService].Status != ai.StatusHealthy || !snap.HasFallback() {
		status = "degraded"
	}
	respond.JSON(w, http.StatusOK, AIHealthResponse{Status: status, HealthSnapshot: snap})
}
