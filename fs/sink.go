// Package fs provides file-based output for extracted values.
package fs

import (
	"bufio"
	"os"
	"sync"

	"github.com/fwojciec/attrdump"
)

// Ensure FileSink implements attrdump.Sink at compile time.
var _ attrdump.Sink = (*FileSink)(nil)

// FileSink appends newline-delimited values to a file.
// It is safe for concurrent use; each Append is written as one unit.
type FileSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	w      *bufio.Writer
	closed bool
}

// CreateFileSink creates (or truncates) the file at path.
func CreateFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileSink{
		path: path,
		file: f,
		w:    bufio.NewWriter(f),
	}, nil
}

// Path returns the file being written.
func (s *FileSink) Path() string {
	return s.path
}

// Append writes each value followed by a newline. Line breaks inside a
// value are replaced by spaces.
func (s *FileSink) Append(values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return attrdump.Errorf(attrdump.EINVALID, "append to closed sink %s", s.path)
	}
	for _, v := range values {
		if _, err := s.w.WriteString(attrdump.SingleLine(v)); err != nil {
			return err
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered values and closes the file. Only the first call
// does any work.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
