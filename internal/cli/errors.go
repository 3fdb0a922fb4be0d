package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"codeassist/internal/oauth"
)

// AuthRequiredError indicates the command needs a signed-in user.
type AuthRequiredError struct {
	// Provider is the display name of the provider to sign in to.
	Provider string
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Not signed in to %s

To sign in, run:
  codeassist auth login

To check current authentication status:
  codeassist auth status`, e.Provider)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthFailedError indicates the browser sign-in did not complete.
type AuthFailedError struct {
	// Provider is the display name of the provider.
	Provider string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	hint := "To retry, run:\n  codeassist auth login"
	if oauth.IsAuthTimeout(e.Reason) {
		hint = "The browser sign-in was not completed in time. " + hint
	}
	return fmt.Sprintf("Sign-in to %s failed: %v\n\n%s", e.Provider, e.Reason, hint)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}

// CoreUnavailableError indicates the core process could not be reached.
type CoreUnavailableError struct {
	// Address is the gRPC address that was dialled.
	Address string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *CoreUnavailableError) Error() string {
	var hint string
	switch {
	case errors.Is(e.Reason, syscall.ECONNREFUSED):
		hint = "Nothing is listening there. Start the core with:\n  codeassist core serve"
	case errors.Is(e.Reason, context.DeadlineExceeded):
		hint = "The core did not answer in time. Check that it is running:\n  codeassist core serve"
	default:
		hint = "Check the core address in your config or set CODEASSIST_CORE_ADDRESS."
	}
	return fmt.Sprintf("Cannot reach the core at %s: %v\n\n%s", e.Address, e.Reason, hint)
}

// Unwrap returns the underlying error.
func (e *CoreUnavailableError) Unwrap() error {
	return e.Reason
}
