// Package resilience groups the fault tolerance helpers used around every
// outbound call: AI provider APIs, the news search feed, publisher sites and
// chat webhooks.
//
// Subpackages:
//   - circuitbreaker: named gobreaker wrappers, one profile per upstream
//   - retry: exponential backoff with jitter, Retry-After aware
//
// The AI orchestration layer only switches providers; retries against a single
// provider happen here.
//
//	cb := circuitbreaker.New(circuitbreaker.ClaudeAPIConfig())
//	err := retry.WithBackoff(ctx, retry.AIAPIConfig(), func() error {
//	    reply, err := circuitbreaker.Do(cb, func() (string, error) {
//	        return callProvider(ctx)
//	    })
//	    ...
//	})
package resilience
