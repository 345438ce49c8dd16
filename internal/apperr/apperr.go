// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how the client should react to it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindLocked
	KindForbidden
	KindNotFound
)

// Status maps the kind onto its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindLocked:
		return http.StatusTooManyRequests
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

const internalMessage = "Internal server error"

// Error is the service-level error carrying everything a response needs.
type Error struct {
	Kind    Kind
	Message string
	// Code is a stable machine-readable reason, e.g. "expired_token".
	Code string
	// Details are merged into the JSON body next to "error".
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error.
func (e *Error) Status() int { return e.Kind.Status() }

// With returns a copy of e with an extra detail field.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Unauthorized(code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

func Locked(message string) *Error {
	return &Error{Kind: KindLocked, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps an unexpected failure; the cause is never shown to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: internalMessage, Err: err}
}

// From extracts an *Error from err, treating anything else as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
