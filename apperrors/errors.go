// Package apperrors defines the typed failures handlers hand to the shared
// error handler, which maps each Kind to an HTTP status.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindNotAllowed
	KindConflict
	KindExpired
	KindInvalidCode
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindNotAllowed:
		return "not_allowed"
	case KindConflict:
		return "conflict"
	case KindExpired:
		return "expired"
	case KindInvalidCode:
		return "invalid_code"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// HTTPStatus is the status code the error handler responds with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindNotAllowed:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindExpired:
		return http.StatusGone
	case KindInvalidCode:
		return http.StatusUnprocessableEntity
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap keeps err as the cause; only Message is shown to the caller.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func BadRequest(message string) *Error      { return New(KindBadRequest, message) }
func Unauthorized(message string) *Error    { return New(KindUnauthorized, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func NotAllowed(message string) *Error      { return New(KindNotAllowed, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func Expired(message string) *Error         { return New(KindExpired, message) }
func InvalidCode(message string) *Error     { return New(KindInvalidCode, message) }
func TooManyRequests(message string) *Error { return New(KindTooManyRequests, message) }

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
