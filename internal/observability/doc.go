// Package observability groups the logging, metrics and tracing subpackages.
//
//   - logging: slog construction and request/trace id propagation
//   - metrics: Prometheus HTTP, pipeline and circuit breaker metrics
//   - tracing: OpenTelemetry tracer and HTTP middleware
package observability
