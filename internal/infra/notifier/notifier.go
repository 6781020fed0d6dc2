// Package notifier announces finished company digests in team chat.
// Slack and Discord webhooks share one delivery path with a per-destination
// rate limiter, retry policy and circuit breaker.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"company-pulse/internal/usecase/digest"
)

// Notifier announces a finished digest.
type Notifier interface {
	NotifyDigest(ctx context.Context, d *digest.Digest) error
}

// Noop discards every digest. It is used when no webhook is configured.
type Noop struct{}

// NotifyDigest implements Notifier.
func (Noop) NotifyDigest(context.Context, *digest.Digest) error { return nil }

// Multi sends every digest to all of its notifiers, even when some fail.
type Multi []Notifier

// NotifyDigest implements Notifier. The returned error joins every failure.
func (m Multi) NotifyDigest(ctx context.Context, d *digest.Digest) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyDigest(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// topArticles bounds how many articles a chat message lists.
const topArticles = 5

func statsLine(d *digest.Digest) string {
	return fmt.Sprintf("%d articles fetched, %d processed, %d failed",
		d.Stats.Fetched, d.Stats.Processed, d.Stats.Failed)
}
