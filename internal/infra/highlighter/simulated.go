package highlighter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/usecase/ai"
)

// ErrSimulatedFailure is returned by a Simulated provider set to fail.
var ErrSimulatedFailure = errors.New("simulated provider failure")

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"financial", []string{"revenue", "profit", "earnings", "quarter", "billion", "million", "%", "$", "shares"}},
	{"partnership", []string{"partner", "partnership", "alliance", "collaborat", "joint venture"}},
	{"leadership", []string{"ceo", "cfo", "appoint", "resign", "chief", "board"}},
	{"product", []string{"launch", "release", "unveil", "product", "feature", "platform"}},
	{"legal", []string{"lawsuit", "regulator", "court", "settle", "fine", "antitrust"}},
	{"market", []string{"market", "competitor", "demand", "customers", "expansion"}},
}

// Simulated is a keyless provider that derives highlights from the article's
// own sentences. Its health and failure mode can be changed at runtime, which
// makes failover observable in local runs.
type Simulated struct {
	name          string
	maxHighlights int

	mu      sync.RWMutex
	status  ai.HealthStatus
	latency time.Duration
	failing bool
}

// NewSimulated creates a healthy simulated provider.
func NewSimulated(name string, maxHighlights int) *Simulated {
	if maxHighlights <= 0 {
		maxHighlights = defaultMaxHighlights
	}
	return &Simulated{name: name, maxHighlights: maxHighlights, status: ai.StatusHealthy, latency: 5 * time.Millisecond}
}

// Name implements ai.ProviderClient.
func (s *Simulated) Name() string { return s.name }

// SetHealth sets the status and latency reported by probes.
func (s *Simulated) SetHealth(status ai.HealthStatus, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.latency = latency
}

// SetFailing makes extraction calls fail until reset.
func (s *Simulated) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// ProbeHealth implements ai.ProviderClient.
func (s *Simulated) ProbeHealth(ctx context.Context) ai.ProviderHealth {
	s.mu.RLock()
	status, latency := s.status, s.latency
	s.mu.RUnlock()

	now := time.Now()
	if err := ctx.Err(); err != nil {
		return ai.Unhealthy(s.name, now, err.Error())
	}
	h := ai.ProviderHealth{ServiceName: s.name, Status: status, ResponseTime: &latency, LastCheckedAt: now}
	if status == ai.StatusUnhealthy {
		h.Error = "simulated outage"
	}
	return h
}

// ExtractHighlights implements ai.ProviderClient.
func (s *Simulated) ExtractHighlights(ctx context.Context, req ai.HighlightRequest) ([]entity.NewsHighlight, error) {
	s.mu.RLock()
	failing := s.failing
	s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failing {
		return nil, ErrSimulatedFailure
	}

	sentences := splitSentences(req.Text)
	highlights := make([]entity.NewsHighlight, 0, s.maxHighlights)
	company := strings.ToLower(req.CompanyName)
	for i, sentence := range sentences {
		if len(highlights) == s.maxHighlights {
			break
		}
		lower := strings.ToLower(sentence)
		importance := 5 - float64(i)*0.5
		if company != "" && strings.Contains(lower, company) {
			importance++
		}
		highlights = append(highlights, entity.NewsHighlight{
			Text:       sentence,
			Importance: entity.ClampImportance(max(importance, 1)),
			Category:   categorize(lower),
		})
	}
	return highlights, nil
}

// splitSentences splits on sentence-ending punctuation followed by a space and
// drops fragments too short to be a highlight.
func splitSentences(s string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(strings.TrimSpace(s))
	for i, r := range runes {
		b.WriteRune(r)
		end := r == '.' || r == '!' || r == '?' || r == '\n'
		if end && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			out = appendSentence(out, b.String())
			b.Reset()
		}
	}
	return appendSentence(out, b.String())
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if len(strings.Fields(s)) < 3 {
		return out
	}
	return append(out, s)
}

func categorize(lower string) string {
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(lower, w) {
				return c.category
			}
		}
	}
	return "general"
}
