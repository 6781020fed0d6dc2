package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "abc-123", FromContext(WithRequestID(context.Background(), "abc-123")))
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"uuid", uuid.NewString(), true},
		{"token", "digest-Acme_01", true},
		{"empty", "", false},
		{"space", "a b", false},
		{"newline", "abc\nLog-Injection: 1", false},
		{"non ascii", "idé", false},
		{"max length", strings.Repeat("a", 128), true},
		{"too long", strings.Repeat("a", 129), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.id))
		})
	}
}

func serve(t *testing.T, incoming string) (header, inContext string) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/companies/Acme/news", nil)
	if incoming != "" {
		req.Header.Set(RequestIDHeader, incoming)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Header().Get(RequestIDHeader), inContext
}

func TestMiddleware_Propagates(t *testing.T) {
	header, ctxID := serve(t, "client-id-7")
	assert.Equal(t, "client-id-7", header)
	assert.Equal(t, "client-id-7", ctxID)
}

func TestMiddleware_Generates(t *testing.T) {
	header, ctxID := serve(t, "")
	_, err := uuid.Parse(header)
	require.NoError(t, err)
	assert.Equal(t, header, ctxID)
}

func TestMiddleware_ReplacesInvalid(t *testing.T) {
	header, ctxID := serve(t, strings.Repeat("x", 200))
	_, err := uuid.Parse(header)
	require.NoError(t, err)
	assert.Equal(t, header, ctxID)
}
