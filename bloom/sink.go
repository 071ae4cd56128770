package bloom

import (
	"sync"

	"github.com/fwojciec/attrdump"
)

// DefaultFalsePositiveRate is the rate used when none is given.
const DefaultFalsePositiveRate = 0.001

var _ attrdump.Sink = (*Sink)(nil)

// Sink forwards every value to the next sink and counts values the filter
// has probably seen before. It never drops a write; the count is an
// estimate that may be slightly high.
type Sink struct {
	mu         sync.Mutex
	next       attrdump.Sink
	filter     *Filter
	duplicates int
}

// NewSink wraps next with a filter sized for n expected values.
// A non-positive fpRate uses DefaultFalsePositiveRate.
func NewSink(next attrdump.Sink, n uint, fpRate float64) *Sink {
	if fpRate <= 0 {
		fpRate = DefaultFalsePositiveRate
	}
	return &Sink{next: next, filter: NewFilter(n, fpRate)}
}

// Append records values in the filter and forwards them.
func (s *Sink) Append(values []string) error {
	s.mu.Lock()
	for _, v := range values {
		if s.filter.TestAndAdd(v) {
			s.duplicates++
		}
	}
	s.mu.Unlock()
	return s.next.Append(values)
}

// Close closes the next sink.
func (s *Sink) Close() error {
	return s.next.Close()
}

// Duplicates returns the estimated number of repeated values appended.
func (s *Sink) Duplicates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duplicates
}
