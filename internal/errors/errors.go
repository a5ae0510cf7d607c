// Package errors defines the application error taxonomy used to map failures
// to HTTP responses.
package errors

import "fmt"

// Kind represents the type of error
type Kind int

const (
	// ErrInternal is an unclassified failure inside this process.
	ErrInternal Kind = iota
	// ErrConfiguration means a required secret or setting is missing.
	ErrConfiguration
	// ErrValidation means a required request parameter is missing or malformed.
	ErrValidation
	// ErrUpstreamAuth means the upstream API rejected our credentials.
	ErrUpstreamAuth
	// ErrUpstreamData means an upstream call failed (transport error or
	// non-success status) while fetching data.
	ErrUpstreamData
)

// Error is an application-level error with a kind for classification
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructor functions for common error types

func Configuration(msg string) *Error {
	return &Error{Kind: ErrConfiguration, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func UpstreamAuth(msg string, err error) *Error {
	return &Error{Kind: ErrUpstreamAuth, Message: msg, Err: err}
}

func UpstreamData(msg string, err error) *Error {
	return &Error{Kind: ErrUpstreamData, Message: msg, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the Kind of err, or ErrInternal when err is not an *Error.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrInternal
}
