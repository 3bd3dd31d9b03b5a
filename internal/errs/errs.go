// Package errs defines the error taxonomy shared by the entitlement, sales
// hierarchy and streaming code paths. Every error carries a stable HTTP
// status so handlers never have to guess; unexpected storage failures map to
// 500 and are never downgraded to an access denial.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindNotFound Kind = iota
	KindForbidden
	KindBadRequest
	KindConflict
	KindRangeNotSatisfiable
	KindStorage
)

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

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two taxonomy errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// StatusCode maps the kind to its HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindRangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	case KindStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func BadRequest(msg string) *Error { return &Error{Kind: KindBadRequest, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }

func RangeNotSatisfiable(msg string) *Error {
	return &Error{Kind: KindRangeNotSatisfiable, Message: msg}
}

// Storage wraps an unexpected storage-layer failure. The wrapped error is
// preserved for logging but must not leak to callers as a denial.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

func IsNotFound(err error) bool  { return kindOf(err) == KindNotFound }
func IsForbidden(err error) bool { return kindOf(err) == KindForbidden }
func IsConflict(err error) bool  { return kindOf(err) == KindConflict }

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Kind(-1)
}
