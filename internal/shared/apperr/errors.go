// Package apperr defines the application error taxonomy shared by all features.
// Each error carries a Kind that transport layers map to a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is the zero value so that unclassified errors are never exposed.
	KindInternal Kind = iota
	// KindValidation indicates bad input or a violated constraint.
	KindValidation
	// KindAuthentication indicates a missing or invalid credential.
	KindAuthentication
	// KindAuthorization indicates an authenticated caller lacking permission.
	KindAuthorization
	// KindNotFound indicates that the requested entity does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified application error.
// Message is safe to show to clients; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
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

// Is matches another *Error with the same kind and message, so a sentinel
// still matches after Wrap attaches a cause to a copy of it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func Authorization(msg string) *Error  { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func Authorizationf(format string, args ...any) *Error {
	return Authorization(fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of err.
// Unclassified errors yield a generic message.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
