package ai

import (
	"math"
	"sort"
	"time"
)

// Rank orders provider names best-first.
//
// Keys, in order: health status (healthy < degraded < unhealthy), position in
// preference (unlisted names after listed ones), response time (missing is
// treated as infinitely slow), then position in registrationOrder. The result
// is deterministic for a given input.
func Rank(providers map[string]ProviderHealth, preference, registrationOrder []string) []string {
	prefIndex := indexOf(preference)
	regIndex := indexOf(registrationOrder)

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}

	sort.SliceStable(names, func(i, j int) bool {
		a, b := providers[names[i]], providers[names[j]]
		if a.Status != b.Status {
			return a.Status < b.Status
		}
		if pa, pb := position(prefIndex, names[i]), position(prefIndex, names[j]); pa != pb {
			return pa < pb
		}
		if ra, rb := responseSeconds(a.ResponseTime), responseSeconds(b.ResponseTime); ra != rb {
			return ra < rb
		}
		if ra, rb := position(regIndex, names[i]), position(regIndex, names[j]); ra != rb {
			return ra < rb
		}
		return names[i] < names[j]
	})

	return names
}

// selectServices derives primary and fallback from a ranked list.
// When the best provider is unhealthy there is neither a primary nor a
// fallback. Otherwise the fallback is the runner-up regardless of its status.
func selectServices(ranked []string, providers map[string]ProviderHealth) (primary, fallback string) {
	if len(ranked) == 0 || providers[ranked[0]].Status == StatusUnhealthy {
		return "", ""
	}
	primary = ranked[0]
	if len(ranked) > 1 {
		fallback = ranked[1]
	}
	return primary, fallback
}

func indexOf(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		if _, seen := m[n]; !seen {
			m[n] = i
		}
	}
	return m
}

func position(index map[string]int, name string) int {
	if i, ok := index[name]; ok {
		return i
	}
	return math.MaxInt
}

func responseSeconds(d *time.Duration) float64 {
	if d == nil {
		return math.Inf(1)
	}
	return d.Seconds()
}
