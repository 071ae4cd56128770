package attrdump

import "context"

// PageRequest addresses one page of the remote dataset.
type PageRequest struct {
	Index     int
	Attribute Attribute
	Size      int
}

// PageResult holds the values extracted from one page together with the
// total item count the API reported when the page was served.
type PageResult struct {
	Index  int
	Values []string
	Count  int
}

// OutcomeKind tags a FetchOutcome.
type OutcomeKind int

const (
	// OutcomePage means the page was served and parsed.
	OutcomePage OutcomeKind = iota
	// OutcomeEndOfData means the document carried no total count, so there
	// is nothing left to read.
	OutcomeEndOfData
)

// FetchOutcome is the non-error result of fetching a page.
// Page is only meaningful when Kind is OutcomePage.
type FetchOutcome struct {
	Kind OutcomeKind
	Page PageResult
}

// PageOutcome returns an outcome carrying r.
func PageOutcome(r PageResult) FetchOutcome {
	return FetchOutcome{Kind: OutcomePage, Page: r}
}

// EndOfDataOutcome returns the outcome for a document without a total count.
func EndOfDataOutcome(index int) FetchOutcome {
	return FetchOutcome{Kind: OutcomeEndOfData, Page: PageResult{Index: index}}
}

// PageFetcher retrieves and parses a single page.
type PageFetcher interface {
	// FetchPage makes one attempt at the page. Failures are returned as-is;
	// Classify decides whether the caller should retry.
	FetchPage(ctx context.Context, req PageRequest) (FetchOutcome, error)
}

// Frontier returns the number of pages that hold count items at size items
// per page.
func Frontier(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// GrowthPages returns how many leading pages must be fetched again after the
// dataset grew from initial to final items.
func GrowthPages(initial, final, size int) int {
	if final <= initial || size <= 0 {
		return 0
	}
	return (final - initial) / size
}
