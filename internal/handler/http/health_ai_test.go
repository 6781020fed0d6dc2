package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"company-pulse/internal/usecase/ai"
)

type stubReporter struct {
	snap    *ai.HealthSnapshot
	err     error
	refresh bool
}

func (s *stubReporter) Health(_ context.Context, forceRefresh bool) (*ai.HealthSnapshot, error) {
	s.refresh = forceRefresh
	return s.snap, s.err
}

func snapshot(primary, fallback string, statuses map[string]ai.HealthStatus) *ai.HealthSnapshot {
	providers := make(map[string]ai.ProviderHealth, len(statuses))
	for name, st := range statuses {
		providers[name] = ai.ProviderHealth{ServiceName: name, Status: st, LastCheckedAt: time.Now()}
	}
	return &ai.HealthSnapshot{Providers: providers, PrimaryService: primary, FallbackService: fallback, ComputedAt: time.Now()}
}

func getAIHealth(t *testing.T, r HealthReporter, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	NewAIHealthHandler(r).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestAIHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		snap       *ai.HealthSnapshot
		wantCode   int
		wantStatus string
	}{
		{
			"primary and fallback healthy",
			snapshot("claude", "openai", map[string]ai.HealthStatus{"claude": ai.StatusHealthy, "openai": ai.StatusHealthy}),
			http.StatusOK, "healthy",
		},
		{
			"primary degraded",
			snapshot("claude", "openai", map[string]ai.HealthStatus{"claude": ai.StatusDegraded, "openai": ai.StatusDegraded}),
			http.StatusOK, "degraded",
		},
		{
			"no fallback",
			snapshot("openai", "", map[string]ai.HealthStatus{"claude": ai.StatusUnhealthy, "openai": ai.StatusHealthy}),
			http.StatusOK, "degraded",
		},
		{
			"no primary",
			snapshot("", "", map[string]ai.HealthStatus{"claude": ai.StatusUnhealthy, "openai": ai.StatusUnhealthy}),
			http.StatusServiceUnavailable, "unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := getAIHealth(t, &stubReporter{snap: tt.snap}, "/health/ai")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Contains(t, body, "providers")
		})
	}
}

func TestAIHealthHandler_SerializesSnapshot(t *testing.T) {
	snap := snapshot("claude", "openai", map[string]ai.HealthStatus{"claude": ai.StatusHealthy, "openai": ai.StatusDegraded})
	_, body := getAIHealth(t, &stubReporter{snap: snap}, "/health/ai")

	assert.Equal(t, "claude", body["primary_service"])
	assert.Equal(t, "openai", body["fallback_service"])
	providers := body["providers"].(map[string]any)
	assert.Equal(t, "degraded", providers["openai"].(map[string]any)["status"])
}

func TestAIHealthHandler_Refresh(t *testing.T) {
	r := &stubReporter{snap: snapshot("claude", "", map[string]ai.HealthStatus{"claude": ai.StatusHealthy})}

	getAIHealth(t, r, "/health/ai")
	assert.False(t, r.refresh)

	getAIHealth(t, r, "/health/ai?refresh=true")
	assert.True(t, r.refresh)
}

func TestAIHealthHandler_Error(t *testing.T) {
	r := &stubReporter{err: errors.New("probe failed with key sk-1234567890abcdefghij")}
	code, body := getAIHealth(t, r, "/health/ai")

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, "probe failed with key sk-****", body["error"])
}
