package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/attrdump"
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// RetryPolicy holds the fixed delay applied before retrying each class of
// transient failure. Retries are unbounded; only context cancellation or a
// fatal failure ends them.
type RetryPolicy struct {
	HostDelay   time.Duration
	SocketDelay time.Duration
	ServerDelay time.Duration
}

// DefaultRetryPolicy returns the delays used in production: 5s after a host
// resolution failure, none after a socket failure, 2s after a 5xx response.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		HostDelay:   5 * time.Second,
		SocketDelay: 0,
		ServerDelay: 2 * time.Second,
	}
}

// Delay returns the wait before retrying a failure of class f.
// The bool result is false for fatal failures.
func (p RetryPolicy) Delay(f attrdump.Failure) (time.Duration, bool) {
	switch f {
	case attrdump.FailureHostResolution:
		return p.HostDelay, true
	case attrdump.FailureSocket:
		return p.SocketDelay, true
	case attrdump.FailureServer:
		return p.ServerDelay, true
	default:
		return 0, false
	}
}

// FetchWithRetry fetches req until it succeeds, a fatal failure occurs, or
// ctx is canceled. Fatal failures that are not already application errors
// are wrapped as EIO. The logger function, if provided, is called for each
// retry attempt.
func FetchWithRetry(ctx context.Context, fetcher attrdump.PageFetcher, req attrdump.PageRequest, policy RetryPolicy, logger LogFunc) (attrdump.FetchOutcome, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attrdump.FetchOutcome{}, err
		}
		outcome, err := fetcher.FetchPage(ctx, req)
		if err == nil {
			return outcome, nil
		}

		// A canceled context surfaces as a transport error; report the
		// cancellation instead of classifying it.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attrdump.FetchOutcome{}, ctxErr
		}

		class := attrdump.Classify(err)
		delay, retry := policy.Delay(class)
		if !retry {
			if attrdump.ErrorCode(err) == attrdump.EINTERNAL {
				err = attrdump.WrapError(attrdump.EIO, err, "unrecognised failure fetching page %d", req.Index)
			}
			return attrdump.FetchOutcome{}, err
		}

		if logger != nil {
			logger("retry page %d (attempt %d, %s, wait %s): %v", req.Index, attempt+1, class, delay, err)
		}

		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attrdump.FetchOutcome{}, ctx.Err()
		case <-timer.C:
		}
	}
}
