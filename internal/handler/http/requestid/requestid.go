// Package requestid tags every request with an id that is echoed in the
// X-Request-ID response header and attached to the request context.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"company-pulse/internal/pkg/requestctx"
)

// RequestIDHeader carries the id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxLength bounds client supplied ids.
const maxLength = 128

// FromContext returns the request id in ctx, or "".
func FromContext(ctx context.Context) string {
	return requestctx.FromContext(ctx)
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return requestctx.WithRequestID(ctx, id)
}

// Valid reports whether a client supplied id can be reused as is:
// non-empty, at most 128 bytes, printable ASCII without spaces.
func Valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c <= ' ' || c > '~' {
			return false
		}
	}
	return true
}

// Middleware reuses a valid incoming X-Request-ID or generates a UUID v4.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !Valid(id) {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}
