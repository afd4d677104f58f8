// Package apperr defines the error kinds surfaced to API callers.
//
// Every operational failure is an *Error carrying one of the kind sentinels
// below, so callers at the edge only need errors.Is to pick a status code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrProvider     = errors.New("payment provider error")
	ErrInternal     = errors.New("internal error")
)

// Error is an operational error with a caller-safe message.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Message is the text shown to API callers; it never includes the cause.
func (e *Error) Message() string { return e.msg }

// Kind returns the kind sentinel of the error.
func (e *Error) Kind() error { return e.kind }

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func newError(kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

func Validation(format string, args ...any) *Error {
	return newError(ErrValidation, nil, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newError(ErrUnauthorized, nil, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, nil, format, args...)
}

// Provider wraps a payment-provider failure.
func Provider(cause error, format string, args ...any) *Error {
	return newError(ErrProvider, cause, format, args...)
}

// Internal wraps an unclassified failure.
func Internal(cause error, format string, args ...any) *Error {
	return newError(ErrInternal, cause, format, args...)
}

// KindOf reports the kind sentinel of err, ErrInternal when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrUnauthorized, ErrNotFound, ErrProvider, ErrInternal} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// MessageOf returns the caller-safe message of the outermost *Error in err.
func MessageOf(err error) (string, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.msg, true
	}
	return "", false
}
