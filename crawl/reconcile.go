package crawl

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ReconcileResult holds the outcome of a reconciliation pass.
type ReconcileResult struct {
	Pages    int
	Values   int
	TimedOut bool
}

// Reconcile re-fetches pages 0 through pages-1 with a fresh pool and writes
// their values to the sink. Items inserted during the adaptive pass push
// older items towards higher page indices, so the leading pages are the ones
// holding anything the first pass could not see. The pass does not look for
// further growth.
func (c *Crawler) Reconcile(ctx context.Context, pages int) (ReconcileResult, error) {
	if pages <= 0 {
		return ReconcileResult{}, nil
	}
	if err := c.validate(); err != nil {
		return ReconcileResult{}, err
	}

	c.report(ProgressEvent{Type: ProgressReconcileStarted, Total: pages})

	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var completed, values atomic.Int64
	g, gctx := errgroup.WithContext(passCtx)
	g.SetLimit(c.poolSize())

	// Submission runs inside the drained group so DrainTimeout also covers
	// pages still waiting for a free worker.
	pass := &errgroup.Group{}
	pass.Go(func() error {
		for index := range pages {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				// g.Go may have blocked on a free slot past a shutdown.
				if err := gctx.Err(); err != nil {
					return err
				}
				outcome, err := FetchWithRetry(gctx, c.Fetcher, c.request(index), c.retryPolicy(), c.Logger)
				if err != nil {
					return err
				}
				if err := c.write(outcome.Page); err != nil {
					return err
				}
				values.Add(int64(len(outcome.Page.Values)))
				done := completed.Add(1)
				c.report(ProgressEvent{Type: ProgressReconcilePage, Page: index, Completed: int(done), Total: pages})
				return nil
			})
		}
		return g.Wait()
	})

	timedOut, err := c.drain(ctx, pass, cancel)
	if err != nil {
		return ReconcileResult{}, err
	}
	return ReconcileResult{
		Pages:    int(completed.Load()),
		Values:   int(values.Load()),
		TimedOut: timedOut,
	}, nil
}
