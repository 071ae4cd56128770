package crawl

import (
	"context"

	"github.com/fwojciec/attrdump"
)

// ProbeCount reads the current total item count with a minimal request for
// page 0 holding a single item. A document without a count means the
// dataset is empty.
func (c *Crawler) ProbeCount(ctx context.Context) (int, error) {
	if c.Fetcher == nil {
		return 0, attrdump.Errorf(attrdump.EINVALID, "crawler fetcher required")
	}

	req := attrdump.PageRequest{
		Index:     0,
		Attribute: c.Attribute,
		Size:      1,
	}
	outcome, err := FetchWithRetry(ctx, c.Fetcher, req, c.retryPolicy(), c.Logger)
	if err != nil {
		return 0, err
	}
	if outcome.Kind == attrdump.OutcomeEndOfData {
		return 0, nil
	}
	return outcome.Page.Count, nil
}
