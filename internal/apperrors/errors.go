// Package apperrors defines the error taxonomy shared by every component of
// the analytics-assistant core. Every fault raised by the domain packages
// maps to exactly one Kind; transport and orchestration code branch on Kind,
// never on error string content.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	ConfigError         Kind = "ConfigError"
	UnknownProduct      Kind = "UnknownProduct"
	ArtifactUnavailable Kind = "ArtifactUnavailable"
	PlanningFailed      Kind = "PlanningFailed"
	LLMParseError       Kind = "LLMParseError"
	LLMTransient        Kind = "LLMTransient"
	DimensionError      Kind = "DimensionError"
	UnsupportedFormat   Kind = "UnsupportedFormat"
	CancelledByClient   Kind = "CancelledByClient"
)

// Error is the concrete type carried by every domain-level failure. Kind is
// stable and machine-readable; Message is the human-readable text shown to
// the client (in a red card, per the transport contract) or logged at
// startup.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
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

// As extracts an *Error from err, if any is present in its chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the Kind carried by err, or the empty Kind if err does not
// wrap an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps a Kind to the status code used by non-streaming endpoints.
// Streaming endpoints never use this: failures after the SSE stream opens
// are expressed as terminal events, not status codes.
func HTTPStatus(kind Kind) int {
	switch kind {
	case UnsupportedFormat:
		return 400
	case UnknownProduct:
		return 404
	case LLMTransient:
		return 503
	case ArtifactUnavailable, PlanningFailed, LLMParseError:
		return 502
	case ConfigError, DimensionError:
		return 500
	default:
		return 500
	}
}
