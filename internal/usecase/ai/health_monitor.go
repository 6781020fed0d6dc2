package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultHealthCheckInterval is how long a snapshot stays fresh.
const DefaultHealthCheckInterval = 300000 * time.Millisecond

// DefaultProbeTimeout bounds a single provider probe.
const DefaultProbeTimeout = 10 * time.Second

// HealthMonitorConfig configures a HealthMonitor.
type HealthMonitorConfig struct {
	// Interval is the snapshot TTL and the period of the background refresher.
	Interval time.Duration
	// PreferenceOrder breaks ties between providers of equal status.
	PreferenceOrder []string
	// ProbeTimeout bounds each provider probe. A probe that overruns is unhealthy.
	ProbeTimeout time.Duration
}

// HealthMonitorOption customizes a HealthMonitor.
type HealthMonitorOption func(*HealthMonitor)

// WithClock replaces the wall clock used for TTL and timestamps.
func WithClock(now func() time.Time) HealthMonitorOption {
	return func(m *HealthMonitor) {
		if now != nil {
			m.now = now
		}
	}
}

// WithHealthMetrics sets the recorder that receives probe results.
func WithHealthMetrics(r MetricsRecorder) HealthMonitorOption {
	return func(m *HealthMonitor) {
		if r != nil {
			m.metrics = r
		}
	}
}

type demotion struct {
	seq    uint64
	reason string
}

// HealthMonitor probes every registered provider, ranks them and caches the
// resulting snapshot for Interval.
//
// Snapshots are copy-on-write: the cached pointer is only ever replaced under
// mu, never modified in place, so readers can hold a snapshot without locking.
type HealthMonitor struct {
	registry *ProviderRegistry
	cfg      HealthMonitorConfig
	now      func() time.Time
	metrics  MetricsRecorder
	refresh  singleflight.Group

	mu        sync.Mutex
	snapshot  *HealthSnapshot
	demotions map[string]demotion
	seq       uint64
}

// NewHealthMonitor creates a monitor over registry.
func NewHealthMonitor(registry *ProviderRegistry, cfg HealthMonitorConfig, opts ...HealthMonitorOption) (*HealthMonitor, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, newError(KindConfiguration, "", "health monitor requires at least one provider", nil)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultHealthCheckInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	cfg.PreferenceOrder = append([]string(nil), cfg.PreferenceOrder...)

	m := &HealthMonitor{
		registry:  registry,
		cfg:       cfg,
		now:       time.Now,
		metrics:   NoopMetrics{},
		demotions: make(map[string]demotion),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Interval returns the configured snapshot TTL.
func (m *HealthMonitor) Interval() time.Duration {
	return m.cfg.Interval
}

// GetSnapshot returns the cached snapshot while it is younger than Interval,
// otherwise probes all providers concurrently and publishes a new snapshot.
// forceRefresh skips the cache. Concurrent refreshes share one probe round.
func (m *HealthMonitor) GetSnapshot(ctx context.Context, forceRefresh bool) (*HealthSnapshot, error) {
	if !forceRefresh {
		if s := m.cached(); s != nil {
			return s, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return m.interrupted(err)
	}

	// The shared round must not inherit one caller's cancellation; each probe
	// is bounded by ProbeTimeout instead.
	ch := m.refresh.DoChan("refresh", func() (any, error) {
		return m.probeAll(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*HealthSnapshot).clone(), nil
	case <-ctx.Done():
		return m.interrupted(ctx.Err())
	}
}

// interrupted answers a caller whose context ended before a probe round
// could finish: the previous snapshot restamped, or a ConfigurationError.
// The round itself keeps running and publishes for everyone else.
func (m *HealthMonitor) interrupted(cause error) (*HealthSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, newError(KindConfiguration, "", "health probes interrupted before any snapshot existed", cause)
	}
	kept := m.snapshot.clone()
	kept.ComputedAt = m.now()
	return kept, nil
}

// MarkUnhealthy demotes name in the cached snapshot and re-ranks.
// The snapshot's ComputedAt is kept, so the demotion does not extend the TTL.
// Unknown names are ignored.
func (m *HealthMonitor) MarkUnhealthy(name, reason string) {
	if _, ok := m.registry.Get(name); !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	m.demotions[name] = demotion{seq: m.seq, reason: reason}

	if m.snapshot == nil {
		return
	}
	next := m.snapshot.clone()
	next.Providers[name] = Unhealthy(name, m.now(), reason)
	m.rank(next)
	m.snapshot = next

	slog.Warn("AI provider marked unhealthy",
		slog.String("provider", name),
		slog.String("reason", reason),
		slog.String("primary", next.PrimaryService),
		slog.String("fallback", next.FallbackService))
}

// ResetCache drops the cached snapshot; the next GetSnapshot probes.
func (m *HealthMonitor) ResetCache() {
	m.mu.Lock()
	m.snapshot = nil
	m.mu.Unlock()
}

// Start refreshes the snapshot every Interval until ctx is done.
// The first refresh happens immediately.
func (m *HealthMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.refreshInBackground(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("AI health refresher stopped")
			return
		case <-ticker.C:
			m.refreshInBackground(ctx)
		}
	}
}

func (m *HealthMonitor) refreshInBackground(ctx context.Context) {
	snap, err := m.GetSnapshot(ctx, true)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("AI health refresh failed", slog.Any("error", err))
		}
		return
	}
	slog.Debug("AI health refreshed",
		slog.String("primary", snap.PrimaryService),
		slog.String("fallback", snap.FallbackService))
}

func (m *HealthMonitor) cached() *HealthSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil
	}
	if m.now().Sub(m.snapshot.ComputedAt) >= m.cfg.Interval {
		return nil
	}
	return m.snapshot.clone()
}

func (m *HealthMonitor) probeAll(ctx context.Context) (*HealthSnapshot, error) {
	m.mu.Lock()
	startSeq := m.seq
	m.mu.Unlock()

	names := m.registry.Names()
	tasks := make([]func(context.Context) (ProviderHealth, error), len(names))
	for i, name := range names {
		client, _ := m.registry.Get(name)
		tasks[i] = func(ctx context.Context) (ProviderHealth, error) {
			return m.probe(ctx, client), nil
		}
	}
	outcomes := settleAll(ctx, tasks)
	_, failed := partition(outcomes)

	providers := make(map[string]ProviderHealth, len(names))
	usable := 0
	for _, o := range outcomes {
		name := names[o.index]
		h := o.value
		if o.err != nil {
			h = Unhealthy(name, m.now(), o.err.Error())
		}
		if h.Status != StatusUnhealthy {
			usable++
		}
		providers[name] = h
		m.metrics.RecordProbe(h)
	}
	if len(failed) > 0 {
		slog.Warn("AI provider probes panicked", slog.Int("count", len(failed)))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Demotions that landed while probes were running win over probe results.
	for name, d := range m.demotions {
		if d.seq <= startSeq {
			delete(m.demotions, name)
			continue
		}
		providers[name] = Unhealthy(name, m.now(), d.reason)
	}

	next := &HealthSnapshot{Providers: providers, ComputedAt: m.now()}
	m.rank(next)
	m.snapshot = next

	slog.Info("AI provider health refreshed",
		slog.String("primary", next.PrimaryService),
		slog.String("fallback", next.FallbackService),
		slog.Int("usable", usable),
		slog.Int("registered", len(names)))

	return next, nil
}

// probe runs one provider probe under ProbeTimeout.
// The result never carries an error; overruns and panics become unhealthy.
func (m *HealthMonitor) probe(ctx context.Context, client ProviderClient) ProviderHealth {
	name := client.Name()
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	done := make(chan ProviderHealth, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Unhealthy(name, m.now(), fmt.Sprintf("probe panicked: %v", r))
			}
		}()
		done <- client.ProbeHealth(probeCtx)
	}()

	select {
	case h := <-done:
		h.ServiceName = name
		if h.LastCheckedAt.IsZero() {
			h.LastCheckedAt = m.now()
		}
		return h
	case <-probeCtx.Done():
		reason := "probe timed out"
		if !errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			reason = "probe cancelled"
		}
		return Unhealthy(name, m.now(), reason)
	}
}

// rank sets PrimaryService and FallbackService on s. Caller holds mu or owns s.
func (m *HealthMonitor) rank(s *HealthSnapshot) {
	ranked := Rank(s.Providers, m.cfg.PreferenceOrder, m.registry.Names())
	s.PrimaryService, s.FallbackService = selectServices(ranked, s.Providers)
}
