// Package http holds the API's health, metrics and middleware handlers.
// Feature routes live in subpackages.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"company-pulse/internal/handler/http/respond"
)

// Check reports one dependency's health. A nil error is healthy.
type Check func(ctx context.Context) error

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the outcome of one check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler runs every registered check and reports 200 when all pass,
// 503 otherwise.
type HealthHandler struct {
	Version string
	Checks  map[string]Check
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := runChecks(ctx, h.Checks)
	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func runChecks(ctx context.Context, checks map[string]Check) (map[string]CheckStatus, bool) {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]CheckStatus, len(checks))
	healthy := true
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			out[name] = CheckStatus{Status: "unhealthy", Message: err.Error()}
			healthy = false
			continue
		}
		out[name] = CheckStatus{Status: "healthy"}
	}
	return out, healthy
}

// ReadyHandler is the readiness probe: 200 "ready" when every check passes.
type ReadyHandler struct {
	Checks map[string]Check
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks, healthy := runChecks(ctx, h.Checks)
	if !healthy {
		for name, c := range checks {
			if c.Status != "healthy" {
				http.Error(w, name+" not ready: "+c.Message, http.StatusServiceUnavailable)
				return
			}
		}
	}
	writeText(w, "ready")
}

// LiveHandler is the liveness probe. It always answers 200 "alive".
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeText(w, "alive")
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("failed to write probe response", slog.Any("error", err))
	}
}
