package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport indicates the search service could not be reached or
	// answered with a non-success status. Session state is never modified.
	ErrTransport = errors.New("transport failure")

	// ErrUpstream indicates the search service reported an explicit error,
	// such as an unreachable target site or rejected credentials.
	ErrUpstream = errors.New("search service error")

	// ErrRateLimited indicates the search service rejected the request
	// because too many were sent.
	ErrRateLimited = errors.New("rate limited")

	// ErrEndpointUnavailable indicates no search service is configured.
	ErrEndpointUnavailable = errors.New("search endpoint unavailable")
)

// TransportError describes a failed round-trip to the search service.
type TransportError struct {
	// Op is the operation that failed (e.g. "send request").
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Retryable is true for timeouts, rate limits and server-side failures.
	Retryable bool

	// Err is the underlying cause.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", ErrTransport, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// UpstreamError carries the message the search service returned.
// The message is shown to users verbatim.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Is matches ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// FailureKind classifies an error for presentation.
type FailureKind string

// Failure kinds.
const (
	FailureNone      FailureKind = ""
	FailureInput     FailureKind = "input"
	FailureTransport FailureKind = "transport"
	FailureUpstream  FailureKind = "upstream"
	FailureUnknown   FailureKind = "unknown"
)

// ClassifyError maps err to the failure taxonomy.
func ClassifyError(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrInvalidInput):
		return FailureInput
	case errors.Is(err, ErrUpstream):
		return FailureUpstream
	case errors.Is(err, ErrTransport), errors.Is(err, ErrRateLimited):
		return FailureTransport
	default:
		return FailureUnknown
	}
}

// IsRetryable reports whether re-submitting the same search may succeed.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return errors.Is(err, ErrRateLimited)
}
