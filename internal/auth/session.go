package auth

import (
	"fmt"
	"sync"
	"time"

	"codeassist/internal/config"

	"github.com/google/uuid"
)

// Session is one sign-in attempt. It lives from mode selection until the
// attempt succeeds, fails, or times out.
type Session struct {
	ID        string
	Mode      string
	BaseURL   string
	StartedAt time.Time
}

// NewSession starts a sign-in attempt for mode. baseURL may be empty.
func NewSession(mode, baseURL string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		BaseURL:   baseURL,
		StartedAt: time.Now(),
	}
}

// ValidateMode rejects anything other than the two known deployment modes.
func ValidateMode(mode string) error {
	switch mode {
	case config.ModeInternal, config.ModeExternal:
		return nil
	default:
		return fmt.Errorf("invalid mode %q: must be %q or %q", mode, config.ModeInternal, config.ModeExternal)
	}
}

// SessionCache remembers that this process has a confirmed sign-in, so
// repeated entry checks do not have to ask the core again.
type SessionCache struct {
	mu            sync.RWMutex
	authenticated bool
}

// NewSessionCache returns an empty cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{}
}

// Authenticated reports whether a sign-in has been confirmed.
func (c *SessionCache) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// MarkAuthenticated records a confirmed sign-in.
func (c *SessionCache) MarkAuthenticated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = true
}

// Clear forgets the sign-in.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = false
}
