package crawl_test

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/crawl"
	"github.com/fwojciec/attrdump/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failOnce returns a fetcher that fails the first attempt with err and then
// serves a fixed page. The returned counter reports attempts.
func failOnce(err error) (*mock.PageFetcher, *int) {
	attempts := 0
	return &mock.PageFetcher{
		FetchPageFn: func(_ context.Context, req attrdump.PageRequest) (attrdump.FetchOutcome, error) {
			attempts++
			if attempts == 1 {
				return attrdump.FetchOutcome{}, err
			}
			return attrdump.PageOutcome(attrdump.PageResult{Index: req.Index, Values: []string{"a", "b"}, Count: 2}), nil
		},
	}, &attempts
}

var testRequest = attrdump.PageRequest{Index: 4, Attribute: attrdump.AttributeID, Size: 100}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	want := attrdump.PageOutcome(attrdump.PageResult{Index: 4, Values: []string{"a", "b"}, Count: 2})

	t.Run("returns first successful outcome", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		fetcher := &mock.PageFetcher{
			FetchPageFn: func(_ context.Context, req attrdump.PageRequest) (attrdump.FetchOutcome, error) {
				attempts++
				return want, nil
			},
		}

		got, err := crawl.FetchWithRetry(context.Background(), fetcher, testRequest, crawl.RetryPolicy{}, nil)

		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1, attempts)
	})

	t.Run("waits host delay after resolution failure", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := failOnce(&net.DNSError{Err: "no such host", Name: "example.invalid", IsNotFound: true})
		policy := crawl.RetryPolicy{HostDelay: 50 * time.Millisecond, ServerDelay: time.Hour, SocketDelay: time.Hour}

		start := time.Now()
		got, err := crawl.FetchWithRetry(context.Background(), fetcher, testRequest, policy, nil)

		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 2, *attempts)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("waits server delay after 503", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := failOnce(&attrdump.StatusError{StatusCode: 503, URL: "https://example.com"})
		policy := crawl.RetryPolicy{HostDelay: time.Hour, ServerDelay: 20 * time.Millisecond, SocketDelay: time.Hour}

		start := time.Now()
		got, err := crawl.FetchWithRetry(context.Background(), fetcher, testRequest, policy, nil)

		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 2, *attempts)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("retries socket failure immediately", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := failOnce(&net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET})
		policy := crawl.DefaultRetryPolicy()

		start := time.Now()
		_, err := crawl.FetchWithRetry(context.Background(), fetcher, testRequest, policy, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, *attempts)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("wraps unclassified failure as io error without retrying", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := failOnce(errors.New("x509: certificate signed by unknown authority"))

		_, err := crawl.FetchWithRetry(context.Background(), fetcher, testRequest, crawl.RetryPolicy{}, nil)

		require.Error(t, err)
		assert.Equal(t, 1, *attempts)
		assert.Equal(t, attrdump.EIO, attrdump.ErrorCode(err))
		assert.Equal(t, attrdump.ExitIO, attrdump.ExitCode(err))
		assert.Contains(t, err.Error(), "certificate signed by unknown authority")
	})

	t.Run("returns parse failure unchanged", func(t *testing.T) {
		t.Parallel()

		parseErr := attrdump.Errorf(attrdump.EPARSE, "page 4 has no root element")
		fetcher, attempts := failOnce(parseErr)

		_, err := crawl.FetchWithRetry(context.Background(), fetcher, testRequest, crawl.RetryPolicy{}, nil)

		assert.Equal(t, parseErr, err)
		assert.Equal(t, 1, *attempts)
	})

	t.Run("treats 4xx as fatal", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := failOnce(&attrdump.StatusError{StatusCode: 403, URL: "https://example.com"})

		_, err := crawl.FetchWithRetry(context.Background(), fetcher, testRequest, crawl.RetryPolicy{}, nil)

		require.Error(t, err)
		assert.Equal(t, 1, *attempts)
		assert.Equal(t, attrdump.EIO, attrdump.ErrorCode(err))
	})

	t.Run("does not fetch once the context is canceled", func(t *testing.T) {
		t.Parallel()

		fetcher, attempts := failOnce(nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := crawl.FetchWithRetry(ctx, fetcher, testRequest, crawl.RetryPolicy{}, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, *attempts)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		fetcher, _ := failOnce(&net.DNSError{Err: "no such host", Name: "example.invalid"})
		policy := crawl.RetryPolicy{HostDelay: time.Hour}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := crawl.FetchWithRetry(ctx, fetcher, testRequest, policy, nil)

		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("logs each retry", func(t *testing.T) {
		t.Parallel()

		fetcher, _ := failOnce(&attrdump.StatusError{StatusCode: 502, URL: "https://example.com"})
		var logged []string

		_, err := crawl.FetchWithRetry(context.Background(), fetcher, testRequest, crawl.RetryPolicy{}, func(format string, args ...any) {
			logged = append(logged, format)
		})

		require.NoError(t, err)
		assert.Len(t, logged, 1)
	})
}

func TestRetryPolicy_Delay(t *testing.T) {
	t.Parallel()

	policy := crawl.DefaultRetryPolicy()

	tests := []struct {
		failure attrdump.Failure
		delay   time.Duration
		retry   bool
	}{
		{attrdump.FailureHostResolution, 5 * time.Second, true},
		{attrdump.FailureSocket, 0, true},
		{attrdump.FailureServer, 2 * time.Second, true},
		{attrdump.FailureFatal, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.failure.String(), func(t *testing.T) {
			t.Parallel()

			delay, retry := policy.Delay(tt.failure)
			assert.Equal(t, tt.delay, delay)
			assert.Equal(t, tt.retry, retry)
		})
	}
}
