package crawl

import (
	"testing"

	"github.com/fwojciec/attrdump"
	"github.com/stretchr/testify/assert"
)

func isDone(a *aggregator) bool {
	select {
	case <-a.Done():
		return true
	default:
		return false
	}
}

func TestAggregator(t *testing.T) {
	t.Parallel()

	t.Run("clamps initial window to frontier", func(t *testing.T) {
		t.Parallel()

		// 250 items at 100 per page with a pool of 2: window 4, frontier 3.
		a := newAggregator(250, 100, 4)

		assert.Equal(t, []int{0, 1, 2}, a.start())
		assert.False(t, isDone(a))
	})

	t.Run("finishes when completed reaches frontier", func(t *testing.T) {
		t.Parallel()

		a := newAggregator(250, 100, 4)
		a.start()

		for _, index := range []int{2, 0} {
			next, grew := a.complete(attrdump.PageResult{Index: index, Count: 250})
			assert.Empty(t, next)
			assert.False(t, grew)
			assert.False(t, isDone(a))
		}
		a.complete(attrdump.PageResult{Index: 1, Count: 250})

		assert.True(t, isDone(a))
		s := a.snapshot()
		assert.Equal(t, 3, s.Completed)
		assert.Equal(t, 3, s.Frontier)
	})

	t.Run("refills one page per completion in steady state", func(t *testing.T) {
		t.Parallel()

		a := newAggregator(1000, 100, 4)
		assert.Equal(t, []int{0, 1, 2, 3}, a.start())

		next, _ := a.complete(attrdump.PageResult{Index: 0, Count: 1000})
		assert.Equal(t, []int{4}, next)
		next, _ = a.complete(attrdump.PageResult{Index: 2, Count: 1000})
		assert.Equal(t, []int{5}, next)
	})

	t.Run("growth past the page boundary extends the frontier", func(t *testing.T) {
		t.Parallel()

		a := newAggregator(400, 100, 4)
		assert.Equal(t, []int{0, 1, 2, 3}, a.start())

		next, grew := a.complete(attrdump.PageResult{Index: 0, Count: 500})
		assert.True(t, grew)
		assert.Equal(t, []int{4}, next)

		for _, index := range []int{1, 2, 3} {
			a.complete(attrdump.PageResult{Index: index, Count: 500})
		}
		assert.False(t, isDone(a))

		a.complete(attrdump.PageResult{Index: 4, Count: 500})
		assert.True(t, isDone(a))
		assert.Equal(t, 5, a.snapshot().Completed)
	})

	t.Run("growth within the last page does not report frontier growth", func(t *testing.T) {
		t.Parallel()

		a := newAggregator(410, 100, 8)
		a.start()

		_, grew := a.complete(attrdump.PageResult{Index: 0, Count: 450})

		assert.False(t, grew)
		assert.Equal(t, 450, a.snapshot().MaxCount)
	})

	t.Run("refills the whole window after large growth", func(t *testing.T) {
		t.Parallel()

		// Frontier 1, so the window starts nearly empty.
		a := newAggregator(100, 100, 4)
		assert.Equal(t, []int{0}, a.start())

		next, grew := a.complete(attrdump.PageResult{Index: 0, Count: 1000})

		assert.True(t, grew)
		assert.Equal(t, []int{1, 2, 3, 4}, next)
		assert.False(t, isDone(a))
	})

	t.Run("never lowers the observed count", func(t *testing.T) {
		t.Parallel()

		a := newAggregator(300, 100, 4)
		a.start()

		a.complete(attrdump.PageResult{Index: 0, Count: 200})

		assert.Equal(t, 300, a.snapshot().MaxCount)
		assert.Equal(t, 3, a.snapshot().Frontier)
	})

	t.Run("empty dataset is done at start", func(t *testing.T) {
		t.Parallel()

		a := newAggregator(0, 100, 4)

		assert.Empty(t, a.start())
		assert.True(t, isDone(a))
	})

	t.Run("end of data completes without changing the count", func(t *testing.T) {
		t.Parallel()

		a := newAggregator(100, 100, 2)
		a.start()

		a.complete(attrdump.EndOfDataOutcome(0).Page)

		assert.True(t, isDone(a))
		assert.Equal(t, 100, a.snapshot().MaxCount)
	})
}
