package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"codeassist/internal/catalog"
	"codeassist/internal/oauth"
	"codeassist/pkg/corerpc"
)

// memoryStore applies masked updates to an in-memory document.
type memoryStore struct {
	mu      sync.Mutex
	doc     map[string]any
	updates []*corerpc.ProviderUpdate

	// dropKeys are accepted but never stored.
	dropKeys map[string]bool
	// failActive fails updates that set the provider active.
	failActive bool
	failGet    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{doc: map[string]any{}, dropKeys: map[string]bool{}}
}

func (s *memoryStore) GetLatestState(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return "", s.failGet
	}
	raw, err := json.Marshal(s.doc)
	return string(raw), err
}

func (s *memoryStore) UpdateProviderPartial(_ context.Context, update *corerpc.ProviderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if update.SetAsActive && s.failActive {
		return errors.New("store unavailable")
	}
	s.updates = append(s.updates, update)
	for _, key := range update.UpdateMask {
		if s.dropKeys[key] {
			continue
		}
		if v, ok := update.Updates[key]; ok {
			s.doc[key] = v
		} else {
			delete(s.doc, key)
		}
	}
	if update.SetAsActive {
		s.doc["planModeApiProvider"] = update.Provider
		s.doc["actModeApiProvider"] = update.Provider
	}
	return nil
}

func (s *memoryStore) set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc[key] = value
}

func (s *memoryStore) get(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc[key]
}

// fakeStream delivers events pushed by the test until its context ends.
type fakeStream struct {
	ctx    context.Context
	events chan *corerpc.AuthState
}

func (s *fakeStream) Recv() (*corerpc.AuthState, error) {
	select {
	case ev, ok := <-s.events:
		if !ok {
			return nil, io.EOF
		}
		return ev, nil
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	}
}

// fakeAccount records the order of calls and lets the test script what the
// core emits after a login.
type fakeAccount struct {
	mu        sync.Mutex
	calls     []string
	streamCtx context.Context
	stream    *fakeStream

	authURL   string
	loginErr  error
	logoutErr error
	onLogin   func(events chan<- *corerpc.AuthState)
	gotURI    string
}

func (a *fakeAccount) record(call string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
}

func (a *fakeAccount) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeAccount) SubscribeAuthStatus(ctx context.Context) (oauth.AuthStatusStream, error) {
	a.record("subscribe")
	a.mu.Lock()
	defer a.mu.Unlock()
	a.streamCtx = ctx
	a.stream = &fakeStream{ctx: ctx, events: make(chan *corerpc.AuthState, 16)}
	return a.stream, nil
}

func (a *fakeAccount) LoginInitiate(_ context.Context, callbackURI string) (string, error) {
	a.record("login")
	a.mu.Lock()
	a.gotURI = callbackURI
	stream := a.stream
	a.mu.Unlock()
	if a.loginErr != nil {
		return "", a.loginErr
	}
	if a.onLogin != nil && stream != nil {
		go a.onLogin(stream.events)
	}
	return a.authURL, nil
}

func (a *fakeAccount) Logout(context.Context) error {
	a.record("logout")
	return a.logoutErr
}

func (a *fakeAccount) subscriptionCtx() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.streamCtx
}

type fakeCallback struct {
	uri string
	err error
}

func (c *fakeCallback) CallbackURI(context.Context) (string, error) {
	return c.uri, c.err
}

type fakeCatalog struct {
	models       catalog.Models
	err          error
	gotBaseURL   string
	gotAPIKey    string
	gotRequestID string
}

func (c *fakeCatalog) ListModels(_ context.Context, baseURL, apiKey, requestID string) (catalog.Models, error) {
	c.gotBaseURL = baseURL
	c.gotAPIKey = apiKey
	c.gotRequestID = requestID
	return c.models, c.err
}

type fakePrompter struct {
	mode       string
	baseURL    string
	confirm    bool
	model      string
	modeErr    error
	modeAsked  int
	gotModels  []string
	gotCurrent string
}

func (p *fakePrompter) SelectMode(context.Context) (string, error) {
	p.modeAsked++
	return p.mode, p.modeErr
}

func (p *fakePrompter) BaseURL(context.Context, string) (string, error) {
	return p.baseURL, nil
}

func (p *fakePrompter) ConfirmSignOut(context.Context) (bool, error) {
	return p.confirm, nil
}

func (p *fakePrompter) SelectModel(_ context.Context, ids []string, current string) (string, error) {
	p.gotModels = ids
	p.gotCurrent = current
	return p.model, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	authURL   string
	signedIn  string
	signedOut bool
	model     string
	warnings  []string
	waited    time.Duration
}

func (n *recordingNotifier) AuthURL(_, authURL string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.authURL = authURL
}

func (n *recordingNotifier) WaitingForBrowser(timeout time.Duration) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.waited = timeout
	return func() {}
}

func (n *recordingNotifier) SignedIn(mode string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signedIn = mode
}

func (n *recordingNotifier) SignedOut() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signedOut = true
}

func (n *recordingNotifier) ModelSelected(modelID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.model = modelID
}

func (n *recordingNotifier) Warning(format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, fmt.Sprintf(format, args...))
}

func (n *recordingNotifier) Warnings() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.warnings...)
}

func strPtr(s string) *string {
	return &s
}
