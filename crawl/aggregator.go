package crawl

import (
	"sync"

	"github.com/fwojciec/attrdump"
)

// aggregator owns the shared state of the adaptive pass. Every field is read
// and written under mu, so deciding what to submit next and detecting the
// last completion happen in one critical section.
//
// Pages are only scheduled below the current frontier, which gives
// completed <= next <= frontier at all times. The pass is therefore finished
// exactly when completed reaches the frontier: nothing can still be in flight.
type aggregator struct {
	mu sync.Mutex

	pageSize int
	window   int

	initialCount int
	maxCount     int
	completed    int
	next         int
	inFlight     int
	values       int

	draining bool
	done     chan struct{}
}

func newAggregator(initialCount, pageSize, window int) *aggregator {
	return &aggregator{
		pageSize:     pageSize,
		window:       window,
		initialCount: initialCount,
		maxCount:     initialCount,
		done:         make(chan struct{}),
	}
}

// start reserves the initial window and returns the page indices to submit.
// If the dataset is empty the pass finishes immediately.
func (a *aggregator) start() []int {
	a.mu.Lock()
	defer a.mu.Unlock()

	pages := a.refill()
	a.checkDone()
	return pages
}

// complete records a finished page. It returns the page indices to submit
// next and whether the observed count moved the frontier.
func (a *aggregator) complete(result attrdump.PageResult) (next []int, grew bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if result.Count > a.maxCount {
		grew = attrdump.Frontier(result.Count, a.pageSize) > a.frontier()
		a.maxCount = result.Count
	}
	a.values += len(result.Values)
	a.inFlight--
	a.completed++

	next = a.refill()
	a.checkDone()
	return next, grew
}

// refill tops the in-flight window up with indices below the frontier.
// Must be called with mu held.
func (a *aggregator) refill() []int {
	if a.draining {
		return nil
	}
	var pages []int
	frontier := a.frontier()
	for a.inFlight < a.window && a.next < frontier {
		pages = append(pages, a.next)
		a.next++
		a.inFlight++
	}
	return pages
}

// checkDone moves the pass to draining once every page below the frontier
// has completed. Must be called with mu held.
func (a *aggregator) checkDone() {
	if a.draining || a.completed != a.frontier() {
		return
	}
	a.draining = true
	close(a.done)
}

// frontier must be called with mu held.
func (a *aggregator) frontier() int {
	return attrdump.Frontier(a.maxCount, a.pageSize)
}

// Done is closed when the pass has completed every page.
func (a *aggregator) Done() <-chan struct{} {
	return a.done
}

// snapshot is a consistent copy of the aggregator counters.
type snapshot struct {
	InitialCount int
	MaxCount     int
	Completed    int
	Frontier     int
	Values       int
}

func (a *aggregator) snapshot() snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return snapshot{
		InitialCount: a.initialCount,
		MaxCount:     a.maxCount,
		Completed:    a.completed,
		Frontier:     a.frontier(),
		Values:       a.values,
	}
}
