package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/bloom"
	"github.com/fwojciec/attrdump/crawl"
	"github.com/fwojciec/attrdump/fs"
	attrslog "github.com/fwojciec/attrdump/slog"
	"github.com/fwojciec/attrdump/sqlite"
	"golang.org/x/time/rate"
)

// progressInterval throttles per-page progress lines.
const progressInterval = 2 * time.Second

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	attr, err := attrdump.ParseAttribute(c.Attribute)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", attrdump.ErrorMessage(err))
		return err
	}

	run := &attrdump.Run{
		Attribute: attr,
		BaseURL:   c.BaseURL,
		Output:    c.Output,
	}
	if deps.Runs != nil {
		if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", attrdump.ErrorMessage(err))
			return err
		}
	}

	err = c.crawl(deps, run)
	if deps.Runs != nil {
		if err != nil {
			run.Status = attrdump.RunStatusFailed
			run.Error = err.Error()
		} else {
			run.Status = attrdump.RunStatusFinished
		}
		// Record the outcome even when ctx was canceled.
		if ferr := deps.Runs.FinishRun(context.WithoutCancel(deps.Ctx), run); ferr != nil && err == nil {
			err = ferr
		}
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %v\n", err)
		return err
	}

	if run.ID != "" {
		fmt.Fprintf(deps.Stdout, "Run %s\n", run.ID)
	}
	return nil
}

func (c *CrawlCmd) crawl(deps *Dependencies, run *attrdump.Run) error {
	rawPath := c.Output
	if !c.NoDedupe {
		rawPath = c.Output + ".raw"
	}

	file, err := fs.CreateFileSink(rawPath)
	if err != nil {
		return attrdump.WrapError(attrdump.EIO, err, "failed to create %s", rawPath)
	}

	sinks := []attrdump.Sink{file}
	if c.Store {
		if deps.DB == nil || run.ID == "" {
			file.Close()
			return attrdump.Errorf(attrdump.EINVALID, "--store requires a database")
		}
		sinks = append(sinks, sqlite.NewValueSink(deps.Ctx, deps.DB, run.ID))
	}
	dups := bloom.NewSink(attrdump.MultiSink(sinks...), c.ExpectedValues, 0)
	var sink attrdump.Sink = dups
	if deps.Verbose {
		sink = attrslog.NewLoggingSink(sink, deps.Logger)
	}

	drainTimeout := c.DrainTimeout
	if drainTimeout == 0 {
		drainTimeout = -1
	}

	crawler := &crawl.Crawler{
		Fetcher:      c.fetcher(deps),
		Sink:         sink,
		Attribute:    run.Attribute,
		PoolSize:     c.PoolSize,
		PageSize:     c.PageSize,
		RetryPolicy:  c.retryPolicy(),
		DrainTimeout: drainTimeout,
		Logger:       retryLogger(deps.Logger),
		Progress:     progressPrinter(deps),
	}

	result, err := crawler.Run(deps.Ctx)
	if cerr := sink.Close(); cerr != nil && err == nil {
		err = attrdump.WrapError(attrdump.EIO, cerr, "failed to close output")
	}
	if err != nil {
		return err
	}

	run.InitialCount = result.InitialCount
	run.FinalCount = result.FinalCount
	run.Pages = result.Pages
	run.GrowthPages = result.GrowthPages
	run.Values = result.Values
	run.Duplicates = dups.Duplicates()

	fmt.Fprintf(deps.Stdout, "Fetched %d pages (%d growth pages re-fetched), %d values, ~%d duplicates\n",
		result.Pages, result.GrowthPages, result.Values, run.Duplicates)
	if result.ReconcileTimedOut {
		fmt.Fprintln(deps.Stderr, "warning: reconciliation pass timed out, some growth pages were not re-fetched")
	}

	if c.NoDedupe {
		fmt.Fprintf(deps.Stdout, "Wrote %s (not deduplicated)\n", c.Output)
		return nil
	}

	stats, err := fs.Dedupe(rawPath, c.Output)
	if err != nil {
		return attrdump.WrapError(attrdump.EIO, err, "failed to deduplicate %s", rawPath)
	}
	if !c.KeepRaw {
		if err := os.Remove(rawPath); err != nil {
			return attrdump.WrapError(attrdump.EIO, err, "failed to remove %s", rawPath)
		}
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d unique values to %s (xxhash %s)\n", stats.Unique, c.Output, stats.Digest)
	return nil
}

// progressPrinter renders crawl progress. Page events are throttled.
func progressPrinter(deps *Dependencies) crawl.ProgressFunc {
	pages := &rate.Sometimes{First: 1, Interval: progressInterval}
	return func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			deps.Logger.Info("crawl started", "count", event.Count, "pages", event.Total)
		case crawl.ProgressGrowth:
			deps.Logger.Info("dataset grew", "count", event.Count, "pages", event.Total)
		case crawl.ProgressPage, crawl.ProgressReconcilePage:
			pages.Do(func() {
				deps.Logger.Info("progress", "completed", event.Completed, "total", event.Total, "count", event.Count)
			})
		case crawl.ProgressReconcileStarted:
			deps.Logger.Info("reconciling", "pages", event.Total)
		case crawl.ProgressFinished:
			deps.Logger.Info("crawl finished", "pages", event.Completed, "count", event.Count)
		}
	}
}
