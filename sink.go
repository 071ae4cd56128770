package attrdump

import (
	"errors"
	"strings"
)

// Sink receives extracted values. Implementations must be safe for
// concurrent use and must never interleave two values.
type Sink interface {
	// Append writes values in order.
	Append(values []string) error

	// Close flushes and releases the underlying resource.
	// Appending after Close returns an error.
	Close() error
}

// lineBreaks maps every line break to a space.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// SingleLine returns v with each line break (CRLF, CR or LF) replaced by a
// single space, so a value always occupies exactly one output line.
func SingleLine(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	return lineBreaks.Replace(v)
}

// MultiSink returns a Sink that appends to every sink in turn.
// Close closes all sinks and joins their errors.
func MultiSink(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Append(values []string) error {
	for _, s := range m {
		if err := s.Append(values); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
