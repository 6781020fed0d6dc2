package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"company-pulse/internal/observability/tracing"
)

// Operation is one unit of provider work, bound to its input by the caller.
type Operation[T any] func(ctx context.Context, client ProviderClient) (T, error)

// Execution is the result of an orchestrated call plus which backend served it.
type Execution[T any] struct {
	Value        T
	Provider     string
	FallbackUsed bool
	Attempts     int
	Duration     time.Duration
}

// FallbackOrchestratorOption customizes a FallbackOrchestrator.
type FallbackOrchestratorOption func(*FallbackOrchestrator)

// WithOrchestratorMetrics sets the recorder for call outcomes.
func WithOrchestratorMetrics(r MetricsRecorder) FallbackOrchestratorOption {
	return func(o *FallbackOrchestrator) {
		if r != nil {
			o.metrics = r
		}
	}
}

// FallbackOrchestrator runs an operation against the current primary provider
// and, if it fails, once against the fallback. It never loops and never runs
// attempts in parallel.
type FallbackOrchestrator struct {
	monitor  *HealthMonitor
	registry *ProviderRegistry
	metrics  MetricsRecorder
}

// NewFallbackOrchestrator creates an orchestrator reading health from monitor.
func NewFallbackOrchestrator(monitor *HealthMonitor, registry *ProviderRegistry, opts ...FallbackOrchestratorOption) (*FallbackOrchestrator, error) {
	if monitor == nil || registry == nil || registry.Len() == 0 {
		return nil, newError(KindConfiguration, "", "fallback orchestrator requires a health monitor and at least one provider", nil)
	}
	o := &FallbackOrchestrator{
		monitor:  monitor,
		registry: registry,
		metrics:  NoopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Monitor returns the health monitor the orchestrator reads from.
func (o *FallbackOrchestrator) Monitor() *HealthMonitor {
	return o.monitor
}

// Execute runs op against the best provider right now.
//
//  1. Read the (possibly cached) health snapshot.
//  2. No primary: fail with NoProviderAvailable.
//  3. Run op on the primary; success returns immediately.
//  4. On failure mark the primary unhealthy and, when a distinct fallback
//     exists, run op on it exactly once.
//  5. Fallback failure or absence fails with AllProvidersFailed carrying
//     every attempt's error.
func Execute[T any](ctx context.Context, o *FallbackOrchestrator, operation string, op Operation[T]) (*Execution[T], error) {
	start := time.Now()
	ctx, span := tracing.GetTracer().Start(ctx, "ai."+operation)
	defer span.End()

	fail := func(err error, provider string) (*Execution[T], error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.metrics.RecordOperation(operation, provider, "failure", time.Since(start))
		return nil, err
	}

	snap, err := o.monitor.GetSnapshot(ctx, false)
	if err != nil {
		return fail(err, "")
	}
	if !snap.HasPrimary() {
		return fail(newError(KindNoProviderAvailable, "", "no healthy AI provider available for "+operation, nil), "")
	}

	primary := snap.PrimaryService
	span.SetAttributes(attribute.String("ai.primary", primary))

	value, err := attempt(ctx, o, primary, operation, op)
	if err == nil {
		exec := &Execution[T]{Value: value, Provider: primary, Attempts: 1, Duration: time.Since(start)}
		span.SetAttributes(attribute.String("ai.provider", primary))
		o.metrics.RecordOperation(operation, primary, "success", exec.Duration)
		return exec, nil
	}

	slog.Warn("AI primary provider failed",
		slog.String("operation", operation),
		slog.String("provider", primary),
		slog.Any("error", err))
	o.monitor.MarkUnhealthy(primary, err.Error())

	if !snap.HasFallback() {
		return fail(allProvidersFailed(operation, []string{primary}, []error{err}), primary)
	}

	fallback := snap.FallbackService
	o.metrics.RecordFallback(operation, primary, fallback)
	span.AddEvent("fallback", trace.WithAttributes(
		attribute.String("ai.from", primary),
		attribute.String("ai.to", fallback),
	))

	fbValue, fbErr := attempt(ctx, o, fallback, operation, op)
	if fbErr != nil {
		slog.Error("AI fallback provider failed",
			slog.String("operation", operation),
			slog.String("provider", fallback),
			slog.Any("error", fbErr))
		return fail(allProvidersFailed(operation, []string{primary, fallback}, []error{err, fbErr}), fallback)
	}

	exec := &Execution[T]{
		Value:        fbValue,
		Provider:     fallback,
		FallbackUsed: true,
		Attempts:     2,
		Duration:     time.Since(start),
	}
	span.SetAttributes(attribute.String("ai.provider", fallback), attribute.Bool("ai.fallback_used", true))
	o.metrics.RecordOperation(operation, fallback, "fallback_success", exec.Duration)
	slog.Info("AI fallback provider succeeded",
		slog.String("operation", operation),
		slog.String("provider", fallback))
	return exec, nil
}

// attempt runs op on one provider and attributes any failure to it.
// A panicking operation counts as a failure of that provider.
func attempt[T any](ctx context.Context, o *FallbackOrchestrator, name, operation string, op Operation[T]) (value T, err error) {
	client, ok := o.registry.Get(name)
	if !ok {
		return value, newError(KindConfiguration, name, "provider in snapshot is not registered", nil)
	}
	defer func() {
		if r := recover(); r != nil {
			err = wrapProviderError(name, operation, fmt.Errorf("panic: %v", r))
		}
	}()
	value, err = op(ctx, client)
	if err != nil {
		return value, wrapProviderError(name, operation, err)
	}
	return value, nil
}
