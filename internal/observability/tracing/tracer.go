package tracing

import (
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by company-pulse.
const TracerName = "company-pulse"

// GetTracer returns the application tracer from the current global provider.
// It is resolved on every call so providers installed later are picked up.
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Config describes the process-wide tracer provider.
type Config struct {
	ServiceName string
	Version     string
	// SampleRatio is the fraction of new root traces recorded, in [0,1].
	// Remote parents keep their own sampling decision.
	SampleRatio float64
	// Exporter receives finished spans in batches. Nil records spans for
	// trace id propagation only.
	Exporter sdktrace.SpanExporter
}

// ConfigFromEnv reads TRACE_SAMPLE_RATIO (default 1). Values outside [0,1]
// or unparsable fall back to the default.
func ConfigFromEnv(serviceName, version string) Config {
	ratio := 1.0
	if v := os.Getenv("TRACE_SAMPLE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			ratio = f
		}
	}
	return Config{ServiceName: serviceName, Version: version, SampleRatio: ratio}
}

// Setup installs a global tracer provider and W3C trace context propagation.
// Callers stop it with Shutdown on exit.
func Setup(cfg Config) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
	)
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if cfg.Exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(cfg.Exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp
}
