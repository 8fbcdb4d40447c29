// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by the stores, the
// domain services and the HTTP layer. Every failure that reaches a caller
// is classified by a Kind; the HTTP layer maps kinds to status codes.
package apperr

import (
	"errors"
	"strings"
)

// Kind classifies an error for the caller.
type Kind int

const (
	// KindServer is an unexpected failure. It is the zero value so that
	// unclassified errors are never reported as client mistakes.
	KindServer Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	default:
		return "ServerError"
	}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Field + " " + f.Msg)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error with optional field details.
func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Unauthenticated returns a KindUnauthenticated error.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Forbidden returns a KindForbidden error.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict returns a KindConflict error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Server wraps an unexpected error. The message shown to callers is fixed.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Message: "Server Error", Err: err}
}

// KindOf reports the kind of err. Errors that were never classified are
// treated as server errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Is reports whether err is classified as kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Fields accumulates field-level validation failures.
type Fields []FieldError

// Add records a failure for field. A nil receiver is not allowed.
func (f *Fields) Add(field, msg string) {
	*f = append(*f, FieldError{Field: field, Msg: msg})
}

// Err returns a validation error carrying the collected fields, or nil
// when nothing was recorded.
func (f Fields) Err(msg string) error {
	if len(f) == 0 {
		return nil
	}
	return Validation(msg, f...)
}
