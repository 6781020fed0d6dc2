package highlighter

import (
	"sync"
	"time"

	"company-pulse/internal/resilience/retry"
)

// MockMetrics implements ExtractionMetricsRecorder for testing.
type MockMetrics struct {
	mu         sync.Mutex
	successes  int
	failures   int
	highlights []int
}

func (m *MockMetrics) RecordDuration(_ string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.successes++
	} else {
		m.failures++
	}
}

func (m *MockMetrics) RecordHighlights(_ string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highlights = append(m.highlights, count)
}

func (m *MockMetrics) RecordRateLimitWait(string, time.Duration) {}

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

const highlightsReply = `[{"text":"Acme opened a plant in Ohio","importance":4,"category":"market"},{"text":"500 new jobs","importance":5,"category":"financial"}]`
