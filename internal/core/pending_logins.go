package core

import (
	"sync"
	"time"

	"codeassist/pkg/logging"

	"golang.org/x/oauth2"
)

// defaultLoginExpiry matches the lifetime of the CLI's redirect listener.
const defaultLoginExpiry = 10 * time.Minute

// pendingLogin is everything needed to finish a login when the identity
// provider redirects back with an authorization code.
type pendingLogin struct {
	Mode         string
	BaseURL      string
	CodeVerifier string
	OAuth2       *oauth2.Config
	CreatedAt    time.Time
}

// PendingLogins stores in-flight logins keyed by their OAuth state value.
// Each state can be taken exactly once.
type PendingLogins struct {
	mu     sync.Mutex
	logins map[string]*pendingLogin

	expiry      time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewPendingLogins creates a store and starts its cleanup loop.
func NewPendingLogins(expiry time.Duration) *PendingLogins {
	if expiry <= 0 {
		expiry = defaultLoginExpiry
	}
	p := &PendingLogins{
		logins:      make(map[string]*pendingLogin),
		expiry:      expiry,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go p.cleanupLoop()

	return p
}

// Put records a login under state.
func (p *PendingLogins) Put(state string, login *pendingLogin) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins[state] = login
}

// Take removes and returns the login for state. It returns nil for unknown
// or expired states.
func (p *PendingLogins) Take(state string) *pendingLogin {
	p.mu.Lock()
	defer p.mu.Unlock()

	login, ok := p.logins[state]
	if !ok {
		return nil
	}
	delete(p.logins, state)

	if p.now().Sub(login.CreatedAt) > p.expiry {
		logging.Warn("Core", "Login state expired after %v", p.now().Sub(login.CreatedAt))
		return nil
	}
	return login
}

// Len returns the number of stored logins.
func (p *PendingLogins) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.logins)
}

// Stop stops the background cleanup goroutine.
func (p *PendingLogins) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCleanup)
	})
}

func (p *PendingLogins) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.cleanup()
		case <-p.stopCleanup:
			return
		}
	}
}

// cleanup removes all expired logins.
func (p *PendingLogins) cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	count := 0
	for state, login := range p.logins {
		if p.now().Sub(login.CreatedAt) > p.expiry {
			delete(p.logins, state)
			count++
		}
	}

	if count > 0 {
		logging.Debug("Core", "Cleaned up %d expired logins", count)
	}
}
