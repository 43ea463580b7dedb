// Package apperr carries the typed failures that cross layer boundaries.
// Handlers map a Kind to an HTTP status; everything else stays internal.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindStorage      Kind = "storage_error"
	KindRender       Kind = "render_error"
	KindInternal     Kind = "internal_error"
)

// FieldIssue is a single field-level validation message.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Error struct {
	Kind     Kind
	Message  string
	Resource string
	Fields   []FieldIssue
	Err      error
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

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether Message may be shown to API clients as-is.
func (e *Error) Public() bool {
	return e.Status() < http.StatusInternalServerError
}

func Validation(fields ...FieldIssue) *Error {
	return &Error{Kind: KindValidation, Message: "payload validation failed", Fields: fields}
}

func Invalid(field, reason string) *Error {
	return &Error{Kind: KindValidation, Message: field + " " + reason, Fields: []FieldIssue{{Field: field, Reason: reason}}}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found", Resource: resource}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

func Render(err error) *Error {
	return &Error{Kind: KindRender, Message: "document rendering failed", Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	target, ok := As(err)
	return ok && target.Kind == kind
}

// Of returns the kind of err, or KindInternal when it is untyped.
func Of(err error) Kind {
	if target, ok := As(err); ok {
		return target.Kind
	}
	return KindInternal
}
