package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the web layer can pick a status
// code without inspecting message strings.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    ErrorKind
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

// ValidationErr reports missing or malformed input.
func ValidationErr(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// UnauthorizedErr reports a missing or invalid session.
func UnauthorizedErr(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// ForbiddenErr reports a valid session acting on another user's record.
func ForbiddenErr(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFoundErr reports a record that does not exist.
func NotFoundErr(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// ConflictErr reports a duplicate unique field.
func ConflictErr(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// InternalErr wraps an unexpected store or signing failure.
func InternalErr(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the classification of err, defaulting to KindInternal
// for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "something went wrong"
}
