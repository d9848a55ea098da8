package api

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

var (
	// ErrTransport matches failures to reach the API or read its answer.
	ErrTransport = errors.New("api unreachable")
	// ErrUnauthorized matches rejected or expired admin tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("not found")
)

// Error is a failure reported by the API itself.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// Is makes 401 and 403 responses match ErrUnauthorized.
func (e *Error) Is(target error) bool {
	if target == ErrUnauthorized {
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// TransportError wraps a network or decoding failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Message returns the text to show a user for err.
func Message(err error) string {
	var apiErr *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrTransport):
		return "Could not reach the server. Check your connection and try again."
	default:
		return err.Error()
	}
}
