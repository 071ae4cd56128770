// Package mock provides function-field implementations of the attrdump
// interfaces for tests.
package mock

import (
	"context"

	"github.com/fwojciec/attrdump"
)

var _ attrdump.PageFetcher = (*PageFetcher)(nil)

// PageFetcher is a mock implementation of attrdump.PageFetcher.
type PageFetcher struct {
	FetchPageFn func(ctx context.Context, req attrdump.PageRequest) (attrdump.FetchOutcome, error)
}

func (f *PageFetcher) FetchPage(ctx context.Context, req attrdump.PageRequest) (attrdump.FetchOutcome, error) {
	return f.FetchPageFn(ctx, req)
}
