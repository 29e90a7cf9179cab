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

	// ErrNotConfigured indicates a collaborator has no usable configuration,
	// e.g. missing upstream credentials or a read-only backend.
	ErrNotConfigured = errors.New("not configured")

	// Catalog Errors.

	// ErrInvalidRecord indicates a raw record failed structural validation.
	// It is recoverable: the record is dropped and the rest of the set survives.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrSourceUnavailable indicates the upstream store could not be read
	// or returned nothing. Callers recover by using the fallback set.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrTransport indicates the serving endpoint itself could not be reached.
	// This is the only failure class shown to the user.
	ErrTransport = errors.New("transport error")

	// ErrRefreshInProgress indicates a load is already running.
	// The new request is dropped, not queued.
	ErrRefreshInProgress = errors.New("refresh in progress")
)

// TransportError describes a failed request to the serving endpoint.
type TransportError struct {
	// URL is the endpoint that was requested.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("transport error: %s returned %d: %v", e.URL, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("transport error: %s returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("transport error: %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
