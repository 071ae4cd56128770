package mock_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/attrdump"
	"github.com/fwojciec/attrdump/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ attrdump.Sink = &mock.Sink{}
}

func TestSink_Append(t *testing.T) {
	t.Parallel()

	t.Run("delegates to AppendFn", func(t *testing.T) {
		t.Parallel()

		var calledWith []string
		s := &mock.Sink{
			AppendFn: func(values []string) error {
				calledWith = values
				return nil
			},
		}

		err := s.Append([]string{"a", "b"})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, calledWith)
	})

	t.Run("returns CloseFn error", func(t *testing.T) {
		t.Parallel()

		s := &mock.Sink{
			CloseFn: func() error { return errors.New("closed twice") },
		}

		assert.EqualError(t, s.Close(), "closed twice")
	})
}
