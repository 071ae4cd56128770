package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/attrdump"
)

// Ensure LoggingSink implements attrdump.Sink.
var _ attrdump.Sink = (*LoggingSink)(nil)

// LoggingSink wraps a Sink and logs each append.
type LoggingSink struct {
	next   attrdump.Sink
	logger *slog.Logger
}

// NewLoggingSink creates a new LoggingSink.
func NewLoggingSink(next attrdump.Sink, logger *slog.Logger) *LoggingSink {
	return &LoggingSink{next: next, logger: logger}
}

// Append delegates to the wrapped sink and logs the write.
func (s *LoggingSink) Append(values []string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("sink append",
			"values", len(values),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Append(values)
}

// Close delegates to the wrapped sink.
func (s *LoggingSink) Close() (err error) {
	defer func() {
		s.logger.Info("sink close", "err", err)
	}()
	return s.next.Close()
}
