package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/attrdump"
)

// Ensure LoggingPageFetcher implements attrdump.PageFetcher.
var _ attrdump.PageFetcher = (*LoggingPageFetcher)(nil)

// LoggingPageFetcher wraps a PageFetcher with per-request logging.
type LoggingPageFetcher struct {
	next   attrdump.PageFetcher
	logger *slog.Logger
}

// NewLoggingPageFetcher creates a new LoggingPageFetcher.
func NewLoggingPageFetcher(next attrdump.PageFetcher, logger *slog.Logger) *LoggingPageFetcher {
	return &LoggingPageFetcher{next: next, logger: logger}
}

// FetchPage delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingPageFetcher) FetchPage(ctx context.Context, req attrdump.PageRequest) (out attrdump.FetchOutcome, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"page", req.Index,
			"size", req.Size,
			"duration", time.Since(begin),
		}
		switch {
		case err != nil:
			attrs = append(attrs, "failure", attrdump.Classify(err).String(), "err", err)
		case out.Kind == attrdump.OutcomeEndOfData:
			attrs = append(attrs, "end_of_data", true)
		default:
			attrs = append(attrs, "count", out.Page.Count, "values", len(out.Page.Values))
		}
		f.logger.Info("fetch page", attrs...)
	}(time.Now())
	return f.next.FetchPage(ctx, req)
}
