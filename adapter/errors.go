// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes adapter errors.
type ErrorKind uint8

const (
	// ErrInternal indicates the module handed to the adapter is inconsistent
	// with its own analysis. The module must be abandoned.
	ErrInternal ErrorKind = iota

	// ErrUnsupportedStage indicates an execution model the adapter cannot wrap.
	ErrUnsupportedStage

	// ErrUnknownSemantic indicates a semantic that has no interface mapping.
	ErrUnknownSemantic

	// ErrInvalidArgument indicates an entry-point parameter that cannot be filled.
	ErrInvalidArgument
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInternal:
		return "InternalError"
	case ErrUnsupportedStage:
		return "UnsupportedStage"
	case ErrUnknownSemantic:
		return "UnknownSemantic"
	case ErrInvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Error is an adapter failure for one entry point.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Entry is the entry point being wrapped, if known.
	Entry string

	// Message provides details about the error.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Entry != "" {
		return fmt.Sprintf("spvwrap %s in %s: %s", e.Kind, e.Entry, msg)
	}
	return fmt.Sprintf("spvwrap %s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new adapter error.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapError attaches a cause to a new adapter error.
func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsInternal reports whether err is, or wraps, an ErrInternal adapter error.
func IsInternal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrInternal
}

// withEntry fills in the entry point name on adapter errors that lack one.
func withEntry(err error, entry string) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Entry == "" {
			e.Entry = entry
		}
		return err
	}
	return &Error{Kind: ErrInternal, Entry: entry, Message: "code generation failed", Err: err}
}
