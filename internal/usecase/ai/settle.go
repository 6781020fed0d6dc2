package ai

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// outcome is the settled result of one task passed to settleAll.
type outcome[T any] struct {
	index int
	value T
	err   error
}

// settleAll runs every task concurrently and waits for all of them.
// One task failing or panicking never cancels or hides the others; results
// are returned in task order.
func settleAll[T any](ctx context.Context, tasks []func(context.Context) (T, error)) []outcome[T] {
	results := make([]outcome[T], len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() (err error) {
			results[i].index = i
			defer func() {
				if r := recover(); r != nil {
					results[i].err = fmt.Errorf("task panicked: %v", r)
				}
			}()
			results[i].value, results[i].err = task(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// partition splits settled outcomes into fulfilled and failed ones.
func partition[T any](outcomes []outcome[T]) (fulfilled, failed []outcome[T]) {
	for _, o := range outcomes {
		if o.err != nil {
			failed = append(failed, o)
			continue
		}
		fulfilled = append(fulfilled, o)
	}
	return fulfilled, failed
}
