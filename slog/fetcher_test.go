package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/mock"
	attrslog "github.com/fwojciec/attrdump/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingPageFetcher_FetchPage(t *testing.T) {
	t.Parallel()

	t.Run("logs page with count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, req attrdump.PageRequest) (attrdump.FetchOutcome, error) {
				return attrdump.PageOutcome(attrdump.PageResult{Index: req.Index, Values: []string{"a", "b"}, Count: 250}), nil
			},
		}

		fetcher := attrslog.NewLoggingPageFetcher(inner, logger)
		out, err := fetcher.FetchPage(context.Background(), attrdump.PageRequest{Index: 3, Size: 100})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, out.Page.Values)
		output := buf.String()
		assert.Contains(t, output, "fetch page")
		assert.Contains(t, output, "page=3")
		assert.Contains(t, output, "count=250")
		assert.Contains(t, output, "values=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs end of data", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, req attrdump.PageRequest) (attrdump.FetchOutcome, error) {
				return attrdump.EndOfDataOutcome(req.Index), nil
			},
		}

		fetcher := attrslog.NewLoggingPageFetcher(inner, logger)
		out, err := fetcher.FetchPage(context.Background(), attrdump.PageRequest{Index: 7, Size: 100})

		require.NoError(t, err)
		assert.Equal(t, attrdump.OutcomeEndOfData, out.Kind)
		assert.Contains(t, buf.String(), "end_of_data=true")
	})

	t.Run("logs failure class on error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, req attrdump.PageRequest) (attrdump.FetchOutcome, error) {
				return attrdump.FetchOutcome{}, &attrdump.StatusError{StatusCode: 503, URL: "http://x"}
			},
		}

		fetcher := attrslog.NewLoggingPageFetcher(inner, logger)
		_, err := fetcher.FetchPage(context.Background(), attrdump.PageRequest{Index: 0, Size: 100})

		var statusErr *attrdump.StatusError
		require.True(t, errors.As(err, &statusErr))
		output := buf.String()
		assert.Contains(t, output, `failure="server error"`)
		assert.Contains(t, output, "err=")
	})
}
