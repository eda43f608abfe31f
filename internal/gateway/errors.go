package gateway

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned before any network I/O when no auth token
// is stored. Every token-requiring operation checks it first.
var ErrUnauthenticated = errors.New("not authenticated: no auth token stored")

// ErrNotFound is returned when a requested entity is absent from a
// successful server response (e.g. a refreshed book that was deleted).
var ErrNotFound = errors.New("not found")

// RemoteError is a non-2xx response, carrying the server-supplied message
// when one was present in the body.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("server rejected request (HTTP %d): %s", e.Status, e.Message)
}

// DecodeError is a 2xx response whose body could not be parsed as the
// expected JSON shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError is a client-side precondition failure, checked before any
// network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
