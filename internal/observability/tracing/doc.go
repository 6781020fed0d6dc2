// Package tracing wires OpenTelemetry into the service.
//
// Setup installs the process tracer provider. Middleware opens a server span
// per request and echoes the trace id in X-Trace-Id; orchestrated AI calls
// and digest runs open child spans through GetTracer.
package tracing
