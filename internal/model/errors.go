package model

import (
	"errors"
	"fmt"
)

// Run error kinds. A *RunError matches its kind through errors.Is, so callers
// can write errors.Is(err, model.ErrRetrieval) without a type assertion.
var (
	// ErrConfiguration is returned when user input or process configuration
	// is invalid. No external call is made.
	ErrConfiguration = errors.New("configuration error")

	// ErrRetrieval is returned when the search provider call fails.
	// The run aborts before synthesis.
	ErrRetrieval = errors.New("retrieval error")

	// ErrSynthesis is returned when the completion provider call fails or
	// returns no usable text.
	ErrSynthesis = errors.New("synthesis error")

	// ErrInvalidTransition is returned when a run is moved to a state that is
	// not reachable from its current state.
	ErrInvalidTransition = errors.New("invalid run state transition")
)

// Cause identifies why an external call failed.
type Cause int

const (
	// CauseUnknown is used when the failure could not be classified.
	CauseUnknown Cause = iota

	// CauseInvalidInput is a user or configuration input problem.
	CauseInvalidInput

	// CauseTimeout means the call exceeded its configured deadline.
	CauseTimeout

	// CauseNetwork means the provider could not be reached.
	CauseNetwork

	// CauseAuthentication means the provider rejected the credentials.
	CauseAuthentication

	// CauseRateLimited means the provider rejected the call for quota or rate reasons.
	CauseRateLimited

	// CauseProvider is any other provider-side failure.
	CauseProvider

	// CauseMalformedResponse means the provider answered with content that
	// could not be decoded.
	CauseMalformedResponse

	// CauseEmptyResponse means the provider answered without usable content.
	CauseEmptyResponse

	// CauseCanceled means the caller went away before the call finished.
	CauseCanceled
)

// String returns a short label for the cause.
func (c Cause) String() string {
	switch c {
	case CauseInvalidInput:
		return "invalid input"
	case CauseTimeout:
		return "timeout"
	case CauseNetwork:
		return "network"
	case CauseAuthentication:
		return "authentication"
	case CauseRateLimited:
		return "rate limited"
	case CauseProvider:
		return "provider error"
	case CauseMalformedResponse:
		return "malformed response"
	case CauseEmptyResponse:
		return "empty response"
	case CauseCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// RunError describes the failure of one stage of a run.
type RunError struct {
	// Kind is one of ErrConfiguration, ErrRetrieval or ErrSynthesis.
	Kind error

	// Cause classifies the failure.
	Cause Cause

	// Reason is a short user-facing explanation.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

// Error implements error.
func (e *RunError) Error() string {
	msg := e.Kind.Error()
	if e.Cause != CauseUnknown {
		msg += " (" + e.Cause.String() + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying error to errors.Is/As.
func (e *RunError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// UserMessage returns the text shown in the error panel. It omits the
// underlying error, which may include provider response bodies.
func (e *RunError) UserMessage() string {
	var prefix string
	switch {
	case errors.Is(e.Kind, ErrConfiguration):
		prefix = "Invalid request"
	case errors.Is(e.Kind, ErrRetrieval):
		prefix = "Search failed"
	case errors.Is(e.Kind, ErrSynthesis):
		prefix = "Report generation failed"
	default:
		prefix = "Research failed"
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s (%s)", prefix, e.Cause)
	}
	if e.Cause == CauseUnknown || e.Cause == CauseInvalidInput {
		return prefix + ": " + e.Reason
	}
	return fmt.Sprintf("%s (%s): %s", prefix, e.Cause, e.Reason)
}

// NewConfigurationError returns a configuration RunError.
func NewConfigurationError(reason string, err error) *RunError {
	return &RunError{Kind: ErrConfiguration, Cause: CauseInvalidInput, Reason: reason, Err: err}
}

// NewRetrievalError returns a retrieval RunError.
func NewRetrievalError(cause Cause, reason string, err error) *RunError {
	return &RunError{Kind: ErrRetrieval, Cause: cause, Reason: reason, Err: err}
}

// NewSynthesisError returns a synthesis RunError.
func NewSynthesisError(cause Cause, reason string, err error) *RunError {
	return &RunError{Kind: ErrSynthesis, Cause: cause, Reason: reason, Err: err}
}

// AsRunError extracts a *RunError from err. Errors that are not RunErrors
// are wrapped with the given fallback kind.
func AsRunError(err error, fallback error) *RunError {
	if err == nil {
		return nil
	}
	var re *RunError
	if errors.As(err, &re) {
		return re
	}
	return &RunError{Kind: fallback, Cause: CauseUnknown, Err: err}
}
