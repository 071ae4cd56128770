// Package crawl provides the adaptive pagination crawler. It probes the
// dataset size, fetches every page with a bounded worker pool while
// following growth of the total count, and finally re-fetches the leading
// pages that growth pushed items out of.
package crawl

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/attrdump"
	"golang.org/x/sync/errgroup"
)

// Crawl defaults.
const (
	DefaultPoolSize     = 16
	DefaultPageSize     = 100
	DefaultDrainTimeout = 60 * time.Second
)

// Crawler extracts one attribute from every page of the dataset.
type Crawler struct {
	Fetcher   attrdump.PageFetcher
	Sink      attrdump.Sink
	Attribute attrdump.Attribute

	// PoolSize is the number of concurrent fetches. The adaptive pass keeps
	// twice as many pages in flight.
	PoolSize int
	PageSize int

	// RetryPolicy defaults to DefaultRetryPolicy when nil.
	RetryPolicy *RetryPolicy

	// DrainTimeout bounds the wait for a pool to finish once all of its
	// work has been submitted. Zero means DefaultDrainTimeout, negative
	// means wait forever.
	DrainTimeout time.Duration

	Logger   LogFunc
	Progress ProgressFunc
}

// Result holds the outcome of a crawl.
type Result struct {
	InitialCount int
	FinalCount   int
	// Pages is the number of pages completed by the adaptive pass.
	Pages int
	// GrowthPages is the number of leading pages re-fetched afterwards.
	GrowthPages int
	// Values is the number of values appended to the sink by both passes.
	Values int
	// ReconcileTimedOut is set when the reconciliation pool was shut down
	// by DrainTimeout before every page finished.
	ReconcileTimedOut bool
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type ProgressType
	Page int
	// Completed and Total count pages of the current pass.
	Completed int
	Total     int
	// Count is the highest total item count observed so far.
	Count int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressPage
	ProgressGrowth
	ProgressReconcileStarted
	ProgressReconcilePage
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
// It is called concurrently from worker goroutines.
type ProgressFunc func(event ProgressEvent)

// Run probes the dataset size, runs the adaptive pass and then the
// reconciliation pass. The sink is not closed.
//
// A fatal fetch failure, a sink failure or cancellation of ctx stops both
// passes and is returned; values already appended stay in the sink.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	initial, err := c.ProbeCount(ctx)
	if err != nil {
		return nil, err
	}
	c.report(ProgressEvent{
		Type:  ProgressStarted,
		Total: attrdump.Frontier(initial, c.pageSize()),
		Count: initial,
	})

	first, err := c.adaptivePass(ctx, initial)
	if err != nil {
		return nil, err
	}

	growth := attrdump.GrowthPages(first.InitialCount, first.MaxCount, c.pageSize())
	rec, err := c.Reconcile(ctx, growth)
	if err != nil {
		return nil, err
	}

	result := &Result{
		InitialCount:      first.InitialCount,
		FinalCount:        first.MaxCount,
		Pages:             first.Completed,
		GrowthPages:       growth,
		Values:            first.Values + rec.Values,
		ReconcileTimedOut: rec.TimedOut,
	}
	c.report(ProgressEvent{
		Type:      ProgressFinished,
		Completed: result.Pages,
		Total:     result.Pages,
		Count:     result.FinalCount,
	})
	return result, nil
}

// adaptivePass fetches every page below the frontier, moving the frontier
// forward whenever a page reports a larger total count.
func (c *Crawler) adaptivePass(ctx context.Context, initialCount int) (snapshot, error) {
	poolSize := c.poolSize()
	window := 2 * poolSize
	agg := newAggregator(initialCount, c.pageSize(), window)

	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// At most window pages are reserved at once, so sends never block.
	tasks := make(chan int, window)
	for _, index := range agg.start() {
		tasks <- index
	}

	g, gctx := errgroup.WithContext(passCtx)
	for range poolSize {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case index, ok := <-tasks:
					if !ok {
						return nil
					}
					if err := c.fetchAdaptive(gctx, agg, tasks, index); err != nil {
						return err
					}
				}
			}
		})
	}

	select {
	case <-agg.Done():
		// Draining: every reserved page has completed, nothing will be sent.
		close(tasks)
	case <-gctx.Done():
	}

	if _, err := c.drain(ctx, g, cancel); err != nil {
		return snapshot{}, err
	}
	return agg.snapshot(), nil
}

// fetchAdaptive fetches one page, writes its values and schedules whatever
// the aggregator hands back.
func (c *Crawler) fetchAdaptive(ctx context.Context, agg *aggregator, tasks chan<- int, index int) error {
	outcome, err := FetchWithRetry(ctx, c.Fetcher, c.request(index), c.retryPolicy(), c.Logger)
	if err != nil {
		return err
	}

	if outcome.Kind == attrdump.OutcomeEndOfData {
		c.logf("page %d reported end of data", index)
	}
	if err := c.write(outcome.Page); err != nil {
		return err
	}

	next, grew := agg.complete(outcome.Page)
	for _, p := range next {
		tasks <- p
	}

	if c.Progress != nil {
		s := agg.snapshot()
		if grew {
			c.report(ProgressEvent{Type: ProgressGrowth, Page: index, Completed: s.Completed, Total: s.Frontier, Count: s.MaxCount})
		}
		c.report(ProgressEvent{Type: ProgressPage, Page: index, Completed: s.Completed, Total: s.Frontier, Count: s.MaxCount})
	}
	return nil
}

// drain waits for g, cancelling the pool if DrainTimeout passes first.
// Cancellation caused by the timeout is not reported as an error. After the
// cancel it still waits for work already inside a fetch or a sink write, so
// callers may close the sink once drain returns.
func (c *Crawler) drain(ctx context.Context, g *errgroup.Group, cancel context.CancelFunc) (timedOut bool, err error) {
	errc := make(chan error, 1)
	go func() { errc <- g.Wait() }()

	timeout := c.drainTimeout()
	if timeout < 0 {
		return false, <-errc
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-errc:
		return false, err
	case <-timer.C:
		c.logf("pool did not drain within %s, shutting down", timeout)
		cancel()
		err := <-errc
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			err = nil
		}
		return true, err
	}
}

func (c *Crawler) write(page attrdump.PageResult) error {
	if len(page.Values) == 0 {
		return nil
	}
	if err := c.Sink.Append(page.Values); err != nil {
		if attrdump.ErrorCode(err) == attrdump.EINTERNAL {
			return attrdump.WrapError(attrdump.EIO, err, "writing values of page %d", page.Index)
		}
		return err
	}
	return nil
}

func (c *Crawler) request(index int) attrdump.PageRequest {
	return attrdump.PageRequest{
		Index:     index,
		Attribute: c.Attribute,
		Size:      c.pageSize(),
	}
}

func (c *Crawler) validate() error {
	if c.Fetcher == nil {
		return attrdump.Errorf(attrdump.EINVALID, "crawler fetcher required")
	}
	if c.Sink == nil {
		return attrdump.Errorf(attrdump.EINVALID, "crawler sink required")
	}
	return c.Attribute.Validate()
}

func (c *Crawler) poolSize() int {
	if c.PoolSize <= 0 {
		return DefaultPoolSize
	}
	return c.PoolSize
}

func (c *Crawler) pageSize() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

func (c *Crawler) drainTimeout() time.Duration {
	if c.DrainTimeout == 0 {
		return DefaultDrainTimeout
	}
	return c.DrainTimeout
}

func (c *Crawler) retryPolicy() RetryPolicy {
	if c.RetryPolicy == nil {
		return DefaultRetryPolicy()
	}
	return *c.RetryPolicy
}

func (c *Crawler) report(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}

func (c *Crawler) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger(format, args...)
	}
}
