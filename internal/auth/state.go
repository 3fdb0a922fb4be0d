package auth

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// State is a step of the sign-in state machine.
type State int

const (
	StateUnauthenticated State = iota
	StateModeSelection
	StatePersisted
	StateAwaitingBrowserAuth
	StateAuthenticated
	StateAlreadyAuthenticated
	StateSignedOut
	StateStillAuthenticated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateModeSelection:
		return "mode_selection"
	case StatePersisted:
		return "state_persisted"
	case StateAwaitingBrowserAuth:
		return "awaiting_browser_auth"
	case StateAuthenticated:
		return "authenticated"
	case StateAlreadyAuthenticated:
		return "already_authenticated"
	case StateSignedOut:
		return "signed_out"
	case StateStillAuthenticated:
		return "still_authenticated"
	default:
		return "unknown"
	}
}

// ErrModeNotSet is returned when the state document carries no mode.
var ErrModeNotSet = errors.New("mode not found in state")

// ProviderState is the provider's view of the core state document.
type ProviderState struct {
	Mode        string
	BaseURL     string
	APIKey      string
	UserID      string
	DisplayName string
	Email       string
	ModelID     string
}

// ParseProviderState reads f's fields out of the raw state document.
// Missing and empty keys both read as "".
func (f ProviderFieldSet) ParseProviderState(raw string) (*ProviderState, error) {
	if raw == "" {
		raw = "{}"
	}
	if !gjson.Valid(raw) {
		return nil, errors.New("failed to parse state: invalid JSON")
	}
	doc := gjson.Parse(raw)
	user := doc.Get(gjson.Escape(f.UserInfo))
	return &ProviderState{
		Mode:        doc.Get(gjson.Escape(f.Mode)).String(),
		BaseURL:     doc.Get(gjson.Escape(f.BaseURL)).String(),
		APIKey:      doc.Get(gjson.Escape(f.APIKey)).String(),
		UserID:      user.Get("uid").String(),
		DisplayName: user.Get("displayName").String(),
		Email:       user.Get("email").String(),
		ModelID:     doc.Get(gjson.Escape(f.ActModelID)).String(),
	}, nil
}

// SignedIn reports whether the state holds an identity or a credential.
func (s *ProviderState) SignedIn() bool {
	return s.UserID != "" || s.APIKey != ""
}

// GetModeFromState returns the stored mode of f's provider.
func (f ProviderFieldSet) GetModeFromState(raw string) (string, error) {
	state, err := f.ParseProviderState(raw)
	if err != nil {
		return "", err
	}
	if state.Mode == "" {
		return "", ErrModeNotSet
	}
	return state.Mode, nil
}

// verifyPersisted checks that mode and, if given, baseURL round-tripped.
func (f ProviderFieldSet) verifyPersisted(raw, mode, baseURL string) error {
	state, err := f.ParseProviderState(raw)
	if err != nil {
		return err
	}
	if state.Mode != mode {
		return fmt.Errorf("mode not properly stored (expected: %s, got: %q)", mode, state.Mode)
	}
	if baseURL != "" && state.BaseURL != baseURL {
		return fmt.Errorf("base URL not properly stored (expected: %s, got: %q)", baseURL, state.BaseURL)
	}
	return nil
}
