package attrdump

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECANCELED = "canceled"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	EIO       = "io"
	ENOTFOUND = "not_found"
	EPARSE    = "parse"
)

// Error represents an application-specific error.
// Err, if set, is the underlying cause and is reachable via errors.Unwrap.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attrdump error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("attrdump error: code=%s message=%s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code that wraps err.
func WrapError(code string, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error."
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
