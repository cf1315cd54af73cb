// Package errs defines the engine's error kinds as an enumerable type
// rather than ad hoc sentinel strings. Every package that can fail in a
// caller-meaningful way returns (or wraps) an *errs.Error so the engine
// can classify failures without string-matching messages.
package errs

import (
	"errors"
	"fmt"
)

// Kind enumerates the caller-visible failure categories.
//
//go:generate enumer -type=Kind errs.go
type Kind int

const (
	// ConfigurationLoad covers a missing file, malformed JSON, or an
	// unsupported language in an assistant/resource configuration.
	ConfigurationLoad Kind = iota
	// ModelShape covers disagreeing matrix dimensions (weights vs. feature
	// vector, transitions vs. tag count, ...).
	ModelShape
	// ResourceMissing covers a gazetteer/clusterer/stemmer not loaded for
	// a language a request needs.
	ResourceMissing
	// MissingEntityMapping covers a tag naming a slot with no entry in the
	// intent's slot->entity mapping.
	MissingEntityMapping
	// UnknownIntent covers a caller-supplied intent name absent from the
	// loaded registry.
	UnknownIntent
	// InvalidInput covers a threshold outside [0,1] or empty text where
	// disallowed.
	InvalidInput
	// Cancelled covers a request-scoped cancellation observed mid-dispatch.
	Cancelled
	// Internal covers an arithmetic or I/O surprise with no more specific
	// classification.
	Internal
)

func (k Kind) String() string {
	switch k {
	case ConfigurationLoad:
		return "ConfigurationLoad"
	case ModelShape:
		return "ModelShape"
	case ResourceMissing:
		return "ResourceMissing"
	case MissingEntityMapping:
		return "MissingEntityMapping"
	case UnknownIntent:
		return "UnknownIntent"
	case InvalidInput:
		return "InvalidInput"
	case Cancelled:
		return "Cancelled"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is a Kind-tagged error wrapping an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a Kind-tagged error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a Kind-tagged error around cause. A nil cause yields a nil
// error (so callers can write `return errs.Wrap(k, msg, err)` directly
// from a function that returns (T, error) without an extra nil check).
func Wrap(kind Kind, message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
