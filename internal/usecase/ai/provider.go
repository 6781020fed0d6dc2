package ai

import (
	"context"
	"fmt"
	"time"

	"company-pulse/internal/domain/entity"
)

// ProviderClient is one text-generation backend (e.g. Claude, OpenAI).
// Implementations own transport concerns: timeouts, HTTP-level retries and
// circuit breaking all live behind this interface.
type ProviderClient interface {
	// Name returns the unique service name used in health snapshots and errors.
	Name() string

	// ProbeHealth checks the backend. It must not fail: every problem is
	// reported as a ProviderHealth with StatusUnhealthy and Error set.
	ProbeHealth(ctx context.Context) ProviderHealth

	// ExtractHighlights extracts key points from an article.
	ExtractHighlights(ctx context.Context, req HighlightRequest) ([]entity.NewsHighlight, error)
}

// ContentFormatter turns highlights into platform posts.
type ContentFormatter interface {
	Format(ctx context.Context, req FormatRequest) ([]entity.PlatformPost, error)
}

// HighlightRequest contains the input for highlight extraction.
type HighlightRequest struct {
	CompanyName string
	Title       string
	Text        string
	URL         string
}

// FormatRequest contains the input for post formatting.
type FormatRequest struct {
	CompanyName string
	Highlights  []entity.NewsHighlight
	Platforms   []entity.Platform
	Tone        entity.Tone
}

// HealthStatus is the coarse health of a provider.
// Lower values rank higher.
type HealthStatus int

const (
	StatusHealthy HealthStatus = iota
	StatusDegraded
	StatusUnhealthy
)

// String returns the status name.
func (s HealthStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name so snapshots serialize readably.
func (s HealthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ProviderHealth is the result of one probe against one provider.
// It is a value snapshot: a new probe produces a new value.
type ProviderHealth struct {
	ServiceName   string         `json:"service_name"`
	Status        HealthStatus   `json:"status"`
	ResponseTime  *time.Duration `json:"response_time,omitempty"`
	LastCheckedAt time.Time      `json:"last_checked_at"`
	Error         string         `json:"error,omitempty"`
}

// Unhealthy builds an unhealthy ProviderHealth for name.
func Unhealthy(name string, checkedAt time.Time, reason string) ProviderHealth {
	return ProviderHealth{
		ServiceName:   name,
		Status:        StatusUnhealthy,
		LastCheckedAt: checkedAt,
		Error:         reason,
	}
}

// HealthSnapshot is the health of every registered provider plus the derived
// primary/fallback choice. Published snapshots are never mutated; callers
// receive copies.
type HealthSnapshot struct {
	Providers       map[string]ProviderHealth `json:"providers"`
	PrimaryService  string                    `json:"primary_service,omitempty"`
	FallbackService string                    `json:"fallback_service,omitempty"`
	ComputedAt      time.Time                 `json:"computed_at"`
}

// HasPrimary reports whether a usable primary provider exists.
func (s *HealthSnapshot) HasPrimary() bool {
	return s != nil && s.PrimaryService != ""
}

// HasFallback reports whether a fallback distinct from the primary exists.
func (s *HealthSnapshot) HasFallback() bool {
	return s != nil && s.FallbackService != "" && s.FallbackService != s.PrimaryService
}

func (s *HealthSnapshot) clone() *HealthSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Providers = make(map[string]ProviderHealth, len(s.Providers))
	for k, v := range s.Providers {
		c.Providers[k] = v
	}
	return &c
}

// ProviderRegistry is the fixed, ordered set of configured providers.
type ProviderRegistry struct {
	clients map[string]ProviderClient
	order   []string
}

// NewProviderRegistry registers clients in the given order.
// It fails with a ConfigurationError when no clients are given, a client is nil,
// or two clients share a name.
func NewProviderRegistry(clients ...ProviderClient) (*ProviderRegistry, error) {
	if len(clients) == 0 {
		return nil, newError(KindConfiguration, "", "at least one AI provider must be configured", nil)
	}

	r := &ProviderRegistry{
		clients: make(map[string]ProviderClient, len(clients)),
		order:   make([]string, 0, len(clients)),
	}
	for i, c := range clients {
		if c == nil {
			return nil, newError(KindConfiguration, "", fmt.Sprintf("provider at position %d is nil", i), nil)
		}
		name := c.Name()
		if name == "" {
			return nil, newError(KindConfiguration, "", fmt.Sprintf("provider at position %d has no name", i), nil)
		}
		if _, dup := r.clients[name]; dup {
			return nil, newError(KindConfiguration, name, "provider registered twice", nil)
		}
		r.clients[name] = c
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get returns the client registered under name.
func (r *ProviderRegistry) Get(name string) (ProviderClient, bool) {
	c, ok := r.clients[name]
	return c, ok
}

// Names returns provider names in registration order.
func (r *ProviderRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered providers.
func (r *ProviderRegistry) Len() int {
	return len(r.order)
}
