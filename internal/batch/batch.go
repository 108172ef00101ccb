// Package batch provides a concurrency-bounded parallel mapper that preserves
// input order and isolates per-item failures.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of one worker invocation.
type Result[R any] struct {
	Value R
	Err   error
}

// Run applies worker to every item with at most concurrency in-flight workers.
// Results are returned in input order regardless of completion order. A worker
// returning an error does not abort the batch; the error is captured in the
// corresponding Result so one slow or failing item never blocks the rest.
func Run[T, R any](ctx context.Context, items []T, concurrency int, worker func(ctx context.Context, item T) (R, error)) []Result[R] {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result[R], len(items))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result[R]{Err: err}
				return nil
			}
			val, err := worker(ctx, item)
			results[i] = Result[R]{Value: val, Err: err}
			return nil // don't abort batch on individual failure
		})
	}

	_ = g.Wait()
	return results
}

// Errors returns the non-nil errors captured in results.
func Errors[R any](results []Result[R]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
