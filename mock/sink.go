package mock

import "github.com/fwojciec/attrdump"

var _ attrdump.Sink = (*Sink)(nil)

// Sink is a mock implementation of attrdump.Sink.
type Sink struct {
	AppendFn func(values []string) error
	CloseFn  func() error
}

func (s *Sink) Append(values []string) error {
	return s.AppendFn(values)
}

func (s *Sink) Close() error {
	return s.CloseFn()
}
