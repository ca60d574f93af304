package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when a repository call is attempted with no
// stored token. No network call is made in that case.
var ErrMissingCredential = errors.New("no active session: log in first")

// ErrNotFound is returned by local-fallback paths (such as restore) when the
// id is absent from the snapshot.
var ErrNotFound = errors.New("product not found")

// ValidationError is a client-side field check failure, raised before any
// request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RemoteError carries a non-2xx response from the inventory API with a
// best-effort human-readable message.
type RemoteError struct {
	Op      string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// remoteError builds a RemoteError from a response body, preferring the
// server's message field and falling back to a generic status line.
func remoteError(op string, status int, body []byte) *RemoteError {
	msg := fmt.Sprintf("%s failed: %d", op, status)

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			msg = payload.Message
		} else if payload.Error != "" {
			msg = payload.Error
		}
	}

	return &RemoteError{Op: op, Status: status, Message: msg}
}
