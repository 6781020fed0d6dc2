package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dur(d time.Duration) *time.Duration { return &d }

func TestRank(t *testing.T) {
	tests := []struct {
		name       string
		providers  map[string]ProviderHealth
		preference []string
		order      []string
		want       []string
	}{
		{
			name: "status wins over preference",
			providers: map[string]ProviderHealth{
				"claude": {Status: StatusDegraded, ResponseTime: dur(time.Millisecond)},
				"openai": {Status: StatusHealthy, ResponseTime: dur(time.Second)},
			},
			preference: []string{"claude", "openai"},
			order:      []string{"claude", "openai"},
			want:       []string{"openai", "claude"},
		},
		{
			name: "preference breaks status tie before latency",
			providers: map[string]ProviderHealth{
				"claude": {Status: StatusHealthy, ResponseTime: dur(900 * time.Millisecond)},
				"openai": {Status: StatusHealthy, ResponseTime: dur(100 * time.Millisecond)},
			},
			preference: []string{"claude", "openai"},
			order:      []string{"openai", "claude"},
			want:       []string{"claude", "openai"},
		},
		{
			name: "unlisted providers rank after listed ones",
			providers: map[string]ProviderHealth{
				"local":  {Status: StatusHealthy, ResponseTime: dur(time.Millisecond)},
				"openai": {Status: StatusHealthy, ResponseTime: dur(time.Second)},
			},
			preference: []string{"openai"},
			order:      []string{"local", "openai"},
			want:       []string{"openai", "local"},
		},
		{
			name: "latency breaks tie when preference is silent",
			providers: map[string]ProviderHealth{
				"a": {Status: StatusHealthy, ResponseTime: dur(300 * time.Millisecond)},
				"b": {Status: StatusHealthy, ResponseTime: dur(100 * time.Millisecond)},
				"c": {Status: StatusHealthy},
			},
			order: []string{"c", "a", "b"},
			want:  []string{"b", "a", "c"},
		},
		{
			name: "registration order is the final tie-break",
			providers: map[string]ProviderHealth{
				"a": {Status: StatusUnhealthy},
				"b": {Status: StatusUnhealthy},
			},
			order: []string{"b", "a"},
			want:  []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(tt.providers, tt.preference, tt.order))
		})
	}
}

func TestRank_Deterministic(t *testing.T) {
	providers := map[string]ProviderHealth{
		"a": {Status: StatusHealthy},
		"b": {Status: StatusHealthy},
		"c": {Status: StatusHealthy},
		"d": {Status: StatusDegraded},
	}
	order := []string{"c", "b", "a", "d"}

	first := Rank(providers, nil, order)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Rank(providers, nil, order))
	}
	assert.Equal(t, []string{"c", "b", "a", "d"}, first)
}

func TestSelectServices(t *testing.T) {
	t.Run("best unhealthy means no primary and no fallback", func(t *testing.T) {
		providers := map[string]ProviderHealth{
			"claude": {Status: StatusUnhealthy},
			"openai": {Status: StatusUnhealthy},
		}
		primary, fallback := selectServices([]string{"claude", "openai"}, providers)
		assert.Empty(t, primary)
		assert.Empty(t, fallback)
	})

	t.Run("fallback is runner-up even when unhealthy", func(t *testing.T) {
		providers := map[string]ProviderHealth{
			"claude": {Status: StatusHealthy},
			"openai": {Status: StatusUnhealthy},
		}
		primary, fallback := selectServices([]string{"claude", "openai"}, providers)
		assert.Equal(t, "claude", primary)
		assert.Equal(t, "openai", fallback)
	})

	t.Run("single provider has no fallback", func(t *testing.T) {
		providers := map[string]ProviderHealth{"claude": {Status: StatusDegraded}}
		primary, fallback := selectServices([]string{"claude"}, providers)
		assert.Equal(t, "claude", primary)
		assert.Empty(t, fallback)
	})
}
