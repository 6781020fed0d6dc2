// Package requestctx carries the request id through contexts so that every
// layer can log and propagate it without depending on the HTTP handlers.
package requestctx

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// FromContext returns the request id in ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContextOrNew returns the request id in ctx or a fresh UUID v4.
func FromContextOrNew(ctx context.Context) string {
	if id := FromContext(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}
