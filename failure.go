package attrdump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// Process exit statuses for fatal conditions.
const (
	ExitIO       = 1
	ExitParse    = 2
	ExitCanceled = 130
)

// Failure classifies a fetch error for the retry policy.
type Failure int

const (
	// FailureFatal errors are never retried.
	FailureFatal Failure = iota
	// FailureHostResolution means the API host could not be resolved.
	FailureHostResolution
	// FailureSocket means the connection failed below HTTP.
	FailureSocket
	// FailureServer means the API answered with a 5xx status.
	FailureServer
)

func (f Failure) String() string {
	switch f {
	case FailureHostResolution:
		return "host resolution"
	case FailureSocket:
		return "socket"
	case FailureServer:
		return "server error"
	default:
		return "fatal"
	}
}

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Classify decides how a failed fetch is handled. Application errors
// (parse failures, invalid input) and anything not recognised as a
// transient network condition are fatal.
func Classify(err error) Failure {
	if err == nil {
		return FailureFatal
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return FailureFatal
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureHostResolution
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= 500 && statusErr.StatusCode <= 599 {
			return FailureServer
		}
		return FailureFatal
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureSocket
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return FailureSocket
	}

	// Client timeouts surface as *url.Error rather than *net.OpError.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureSocket
	}

	return FailureFatal
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	switch ErrorCode(err) {
	case EPARSE:
		return ExitParse
	case ECANCELED:
		return ExitCanceled
	default:
		return ExitIO
	}
}
