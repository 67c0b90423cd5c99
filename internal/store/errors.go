package store

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlkv/internal/dialect"
)

var (
	// ErrUnavailable is returned when neither the store nor the call has a connection.
	ErrUnavailable = errors.New("connection is not available")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store is closed")
	// ErrNotFound is returned by GetInto when the key holds no value.
	ErrNotFound = errors.New("key not found")
)

// ConnectionError reports a malformed descriptor or an unreachable backend.
type ConnectionError = dialect.ConnectionError

// BackendError wraps a failed statement.
type BackendError struct {
	Op  dialect.Op
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// SerializationError wraps a value that could not be encoded or decoded.
type SerializationError struct {
	Op  dialect.Op
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// ValidationError reports an argument the table schema cannot hold.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// result classifies err for metrics labels.
func result(err error) string {
	var (
		backendErr *BackendError
		serialErr  *SerializationError
		validErr   *ValidationError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &serialErr):
		return "serialization_error"
	case errors.As(err, &validErr):
		return "invalid"
	case errors.As(err, &backendErr):
		return "backend_error"
	default:
		return "error"
	}
}
