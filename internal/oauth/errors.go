package oauth

import (
	"errors"
	"fmt"
	"time"
)

// ErrAuthCancelled is returned by WaitForAuthentication when the subscriber
// is stopped or its parent context is cancelled before authentication.
var ErrAuthCancelled = errors.New("authentication cancelled")

// AuthTimeoutError is returned when authentication does not complete in time.
type AuthTimeoutError struct {
	Timeout time.Duration
}

// Error implements the error interface.
func (e *AuthTimeoutError) Error() string {
	return fmt.Sprintf("authentication timeout after %v - please try again", e.Timeout)
}

// IsAuthTimeout reports whether err is an AuthTimeoutError.
func IsAuthTimeout(err error) bool {
	var timeoutErr *AuthTimeoutError
	return errors.As(err, &timeoutErr)
}

// StreamError wraps a failure of the auth status stream.
type StreamError struct {
	Err error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("authentication stream error: %v", e.Err)
}

// Unwrap returns the underlying stream error.
func (e *StreamError) Unwrap() error {
	return e.Err
}
