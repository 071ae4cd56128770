// Package bloom estimates duplicate values in a crawl using Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter for value membership.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected values
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// TestAndAdd adds value and reports whether it might have been present.
// False positives are possible; false negatives are not.
func (f *Filter) TestAndAdd(value string) bool {
	return f.f.TestAndAddString(value)
}

// Test returns true if the value might be in the filter.
func (f *Filter) Test(value string) bool {
	return f.f.TestString(value)
}

// EstimatedCount returns the approximate number of distinct values added.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
