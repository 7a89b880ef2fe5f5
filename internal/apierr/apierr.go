// Package apierr is the error taxonomy shared by services and handlers.
// Services return *Error values; handlers turn them into status codes and
// response envelopes without inspecting storage or transport errors.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

type Kind string

const (
	KindConflict            Kind = "conflict"
	KindNotFound            Kind = "not_found"
	KindValidation          Kind = "validation_error"
	KindInvalidInput        Kind = "invalid_input"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
	KindInternal            Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindConflict:            http.StatusConflict,
	KindNotFound:            http.StatusNotFound,
	KindValidation:          http.StatusBadRequest,
	KindInvalidInput:        http.StatusBadRequest,
	KindUpstreamUnavailable: http.StatusServiceUnavailable,
	KindUnauthorized:        http.StatusUnauthorized,
	KindForbidden:           http.StatusForbidden,
	KindInternal:            http.StatusInternalServerError,
}

type Error struct {
	Kind    Kind
	Message string
	// Details carries every violated rule for validation errors.
	Details []string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (e *Error) Code() string { return string(e.Kind) }

func New(kind Kind, message string, err error) *Error {
	var stack []byte
	if err != nil {
		var ge *goerrors.Error
		if errors.As(err, &ge) {
			stack = ge.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}
	return &Error{Kind: kind, Message: message, Err: err, Stack: stack}
}

func Conflict(message string) *Error { return New(KindConflict, message, nil) }

func NotFound(message string) *Error { return New(KindNotFound, message, nil) }

func InvalidInput(message string) *Error { return New(KindInvalidInput, message, nil) }

func Unauthorized(message string) *Error { return New(KindUnauthorized, message, nil) }

func Forbidden(message string) *Error { return New(KindForbidden, message, nil) }

func Validation(message string, details ...string) *Error {
	e := New(KindValidation, message, nil)
	e.Details = details
	return e
}

func UpstreamUnavailable(message string, err error) *Error {
	return New(KindUpstreamUnavailable, message, err)
}

func Internal(message string, err error) *Error {
	return New(KindInternal, message, err)
}

// As extracts an *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
