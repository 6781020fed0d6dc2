package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"company-pulse/internal/domain/entity"
)

// MockProvider implements ProviderClient for testing.
type MockProvider struct {
	name      string
	probeFn   func(ctx context.Context) ProviderHealth
	extractFn func(ctx context.Context, req HighlightRequest) ([]entity.NewsHighlight, error)

	probes   atomic.Int32
	extracts atomic.Int32
}

func newMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) ProbeHealth(ctx context.Context) ProviderHealth {
	m.probes.Add(1)
	if m.probeFn != nil {
		return m.probeFn(ctx)
	}
	return healthyIn(m.name, 10*time.Millisecond)
}

func (m *MockProvider) ExtractHighlights(ctx context.Context, req HighlightRequest) ([]entity.NewsHighlight, error) {
	m.extracts.Add(1)
	if m.extractFn != nil {
		return m.extractFn(ctx, req)
	}
	return []entity.NewsHighlight{{Text: m.name + " highlight", Importance: 3, Category: "general"}}, nil
}

// MockFormatter implements ContentFormatter for testing.
type MockFormatter struct {
	formatFn func(ctx context.Context, req FormatRequest) ([]entity.PlatformPost, error)
	calls    atomic.Int32
	lastReq  FormatRequest
	mu       sync.Mutex
}

func (m *MockFormatter) Format(ctx context.Context, req FormatRequest) ([]entity.PlatformPost, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastReq = req
	m.mu.Unlock()
	if m.formatFn != nil {
		return m.formatFn(ctx, req)
	}
	posts := make([]entity.PlatformPost, 0, len(req.Platforms))
	for _, p := range req.Platforms {
		content := req.CompanyName + ": " + req.Highlights[0].Text
		posts = append(posts, entity.PlatformPost{
			Platform:       p,
			Content:        content,
			CharacterCount: len(content),
		})
	}
	return posts, nil
}

func (m *MockFormatter) last() FormatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

// MockMetrics captures recorder calls.
type MockMetrics struct {
	mu         sync.Mutex
	probes     []ProviderHealth
	operations []string
	fallbacks  []string
}

func (m *MockMetrics) RecordProbe(h ProviderHealth) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, h)
}

func (m *MockMetrics) RecordOperation(operation, provider, result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations = append(m.operations, operation+"/"+provider+"/"+result)
}

func (m *MockMetrics) RecordFallback(operation, from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks = append(m.fallbacks, operation+"/"+from+"->"+to)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func healthyIn(name string, rt time.Duration) ProviderHealth {
	return ProviderHealth{ServiceName: name, Status: StatusHealthy, ResponseTime: &rt}
}

func degradedIn(name string, rt time.Duration) ProviderHealth {
	return ProviderHealth{ServiceName: name, Status: StatusDegraded, ResponseTime: &rt}
}

func unhealthyProbe(name string) func(context.Context) ProviderHealth {
	return func(context.Context) ProviderHealth {
		return ProviderHealth{ServiceName: name, Status: StatusUnhealthy, Error: "probe failed"}
	}
}

func mustRegistry(clients ...ProviderClient) *ProviderRegistry {
	r, err := NewProviderRegistry(clients...)
	if err != nil {
		panic(err)
	}
	return r
}

func mustMonitor(r *ProviderRegistry, cfg HealthMonitorConfig, opts ...HealthMonitorOption) *HealthMonitor {
	m, err := NewHealthMonitor(r, cfg, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// newTestStack wires registry, monitor and orchestrator with claude preferred.
func newTestStack(clients ...ProviderClient) (*HealthMonitor, *FallbackOrchestrator) {
	r := mustRegistry(clients...)
	m := mustMonitor(r, HealthMonitorConfig{PreferenceOrder: []string{"claude", "openai"}})
	o, err := NewFallbackOrchestrator(m, r)
	if err != nil {
		panic(err)
	}
	return m, o
}
