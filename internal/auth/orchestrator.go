package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"codeassist/internal/catalog"
	"codeassist/internal/config"
	"codeassist/internal/oauth"
	"codeassist/pkg/corerpc"
	"codeassist/pkg/logging"
	pkgoauth "codeassist/pkg/oauth"
)

const loggerSubsystem = "Auth"

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("not signed in to " + ProviderDisplayName)

// ConfigStore is the core's provider settings store.
type ConfigStore interface {
	GetLatestState(ctx context.Context) (string, error)
	UpdateProviderPartial(ctx context.Context, update *corerpc.ProviderUpdate) error
}

// AccountClient starts and ends sign-ins in the core.
type AccountClient interface {
	oauth.AuthStatusSource
	LoginInitiate(ctx context.Context, callbackURI string) (string, error)
	Logout(ctx context.Context) error
}

// CallbackURIProvider hands out the local redirect target.
type CallbackURIProvider interface {
	CallbackURI(ctx context.Context) (string, error)
}

// ModelCatalog lists the models available to a signed-in user.
type ModelCatalog interface {
	ListModels(ctx context.Context, baseURL, apiKey, requestID string) (catalog.Models, error)
}

// Prompter collects the choices the sign-in flow cannot default.
type Prompter interface {
	SelectMode(ctx context.Context) (string, error)
	BaseURL(ctx context.Context, mode string) (string, error)
	ConfirmSignOut(ctx context.Context) (bool, error)
	SelectModel(ctx context.Context, ids []string, current string) (string, error)
}

// Notifier reports progress to the user.
type Notifier interface {
	AuthURL(mode, authURL string)
	// WaitingForBrowser starts a progress indicator and returns its stop func.
	WaitingForBrowser(timeout time.Duration) func()
	SignedIn(mode string)
	SignedOut()
	ModelSelected(modelID string)
	Warning(format string, args ...any)
}

// Dependencies are the collaborators of an Orchestrator.
type Dependencies struct {
	Store    ConfigStore
	Account  AccountClient
	Callback CallbackURIProvider
	Catalog  ModelCatalog
	Prompter Prompter
	Notifier Notifier
	Session  *SessionCache

	// OpenBrowser defaults to oauth.OpenBrowser.
	OpenBrowser func(url string) error
}

// Orchestrator runs the browser sign-in flow.
type Orchestrator struct {
	deps     Dependencies
	fields   ProviderFieldSet
	provider config.ProviderConfig
	timeout  time.Duration

	mu    sync.Mutex
	state State
}

// NewOrchestrator wires an Orchestrator. Store, Account, Callback and
// Session are required.
func NewOrchestrator(cfg config.CodeAssistConfig, deps Dependencies) (*Orchestrator, error) {
	if deps.Store == nil || deps.Account == nil || deps.Callback == nil || deps.Session == nil {
		return nil, errors.New("orchestrator requires a config store, account client, callback server and session cache")
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.NewClient(catalog.WithLogger(logging.Logger("Catalog")))
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.OpenBrowser == nil {
		deps.OpenBrowser = oauth.OpenBrowser
	}

	timeout := cfg.Auth.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAuthTimeout
	}

	return &Orchestrator{
		deps:     deps,
		fields:   OCAFields,
		provider: cfg.Provider,
		timeout:  timeout,
		state:    StateUnauthenticated,
	}, nil
}

// State returns the current step of the state machine.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	prev := o.state
	o.state = s
	o.mu.Unlock()
	logging.Debug(loggerSubsystem, "Sign-in state %s -> %s", prev, s)
}

// Run is the interactive entry point: signed-in users are offered a sign-out,
// everyone else goes through mode selection and sign-in.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.IsAuthenticated(ctx) {
		o.setState(StateAlreadyAuthenticated)
		return o.signOutDialog(ctx)
	}

	if o.deps.Prompter == nil {
		return errors.New("interactive sign-in requires a prompter")
	}

	o.setState(StateModeSelection)
	mode, err := o.deps.Prompter.SelectMode(ctx)
	if err != nil {
		return fmt.Errorf("failed to select mode: %w", err)
	}
	baseURL, err := o.deps.Prompter.BaseURL(ctx, mode)
	if err != nil {
		return fmt.Errorf("failed to get base URL: %w", err)
	}

	return o.SignIn(ctx, mode, baseURL)
}

func (o *Orchestrator) signOutDialog(ctx context.Context) error {
	if o.deps.Prompter == nil {
		o.setState(StateStillAuthenticated)
		return nil
	}
	confirm, err := o.deps.Prompter.ConfirmSignOut(ctx)
	if err != nil {
		return err
	}
	if !confirm {
		o.setState(StateStillAuthenticated)
		return nil
	}
	return o.SignOut(ctx)
}

// IsAuthenticated reports whether the user is signed in, consulting the
// session cache first and the core's state second.
func (o *Orchestrator) IsAuthenticated(ctx context.Context) bool {
	if o.deps.Session.Authenticated() {
		logging.Debug(loggerSubsystem, "Session is already authenticated")
		return true
	}

	raw, err := o.deps.Store.GetLatestState(ctx)
	if err != nil {
		logging.Debug(loggerSubsystem, "Failed to get state for auth check: %v", err)
		return false
	}
	state, err := o.fields.ParseProviderState(raw)
	if err != nil {
		logging.Debug(loggerSubsystem, "Failed to parse state for auth check: %v", err)
		return false
	}
	if !state.SignedIn() {
		return false
	}

	o.deps.Session.MarkAuthenticated()
	return true
}

// SignIn persists mode and baseURL, runs the browser login, and waits for
// the core to confirm it. Model configuration problems after a confirmed
// sign-in are reported as warnings only.
func (o *Orchestrator) SignIn(ctx context.Context, mode, baseURL string) error {
	if err := ValidateMode(mode); err != nil {
		return err
	}
	session := NewSession(mode, baseURL)
	logging.Debug(loggerSubsystem, "Starting sign-in %s (mode: %s)", session.ID, mode)

	if err := o.persist(ctx, session); err != nil {
		o.setState(StateUnauthenticated)
		return err
	}
	o.setState(StatePersisted)

	if err := o.awaitBrowserAuth(ctx, session); err != nil {
		o.setState(StateUnauthenticated)
		return err
	}

	o.deps.Session.MarkAuthenticated()
	o.setState(StateAuthenticated)
	o.deps.Notifier.SignedIn(mode)
	logging.Info(loggerSubsystem, "Signed in to %s (%s mode)", ProviderDisplayName, mode)

	if err := o.ConfigureDefaultModel(ctx, session); err != nil {
		logging.Warn(loggerSubsystem, "Could not configure default model: %v", err)
		o.deps.Notifier.Warning("Could not configure default model: %v. Run 'codeassist auth models' to pick one", err)
	}
	return nil
}

// persist stores mode and base URL as independent partial updates and reads
// them back.
func (o *Orchestrator) persist(ctx context.Context, session *Session) error {
	mode := session.Mode
	if err := o.update(ctx, ProviderUpdatesPartial{Mode: &mode}, false); err != nil {
		return fmt.Errorf("failed to store mode: %w", err)
	}

	if session.BaseURL != "" {
		baseURL := session.BaseURL
		if err := o.update(ctx, ProviderUpdatesPartial{BaseURL: &baseURL}, false); err != nil {
			return fmt.Errorf("failed to store base URL: %w", err)
		}
	}

	raw, err := o.deps.Store.GetLatestState(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify state: %w", err)
	}
	if err := o.fields.verifyPersisted(raw, session.Mode, session.BaseURL); err != nil {
		return fmt.Errorf("failed to verify state: %w", err)
	}
	logging.Debug(loggerSubsystem, "State verified (mode: %s, base URL: %q)", session.Mode, session.BaseURL)
	return nil
}

// awaitBrowserAuth subscribes, triggers the login and blocks until the core
// reports an authenticated state. The subscriber is always stopped.
func (o *Orchestrator) awaitBrowserAuth(ctx context.Context, session *Session) error {
	callbackURI, err := o.deps.Callback.CallbackURI(ctx)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}

	subscriber, err := oauth.NewStatusSubscriber(ctx, o.deps.Account)
	if err != nil {
		return err
	}
	defer subscriber.Stop()
	subscriber.Start()

	o.setState(StateAwaitingBrowserAuth)

	authURL, err := o.deps.Account.LoginInitiate(ctx, callbackURI)
	if err != nil {
		return fmt.Errorf("failed to initiate login: %w", err)
	}
	logging.Debug(loggerSubsystem, "Authorization URL generated for session %s", session.ID)

	o.deps.Notifier.AuthURL(session.Mode, authURL)
	if err := o.deps.OpenBrowser(authURL); err != nil {
		logging.Debug(loggerSubsystem, "Failed to open browser: %v", err)
		o.deps.Notifier.Warning("Could not open a browser. Open the URL above to continue")
	}

	stop := o.deps.Notifier.WaitingForBrowser(o.timeout)
	err = subscriber.WaitForAuthentication(o.timeout)
	stop()
	if err != nil {
		logging.Debug(loggerSubsystem, "Sign-in %s ended in state %s: %v", session.ID, subscriber.State(), err)
		return err
	}
	return nil
}

// SignOut asks the core to sign out and clears the session cache.
func (o *Orchestrator) SignOut(ctx context.Context) error {
	if err := o.deps.Account.Logout(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	o.deps.Session.Clear()
	o.setState(StateSignedOut)
	o.deps.Notifier.SignedOut()
	return nil
}

// Status returns the provider's current state document view.
func (o *Orchestrator) Status(ctx context.Context) (*ProviderState, error) {
	raw, err := o.deps.Store.GetLatestState(ctx)
	if err != nil {
		return nil, err
	}
	return o.fields.ParseProviderState(raw)
}

func (o *Orchestrator) update(ctx context.Context, u ProviderUpdatesPartial, setAsActive bool) error {
	update, err := o.fields.BuildUpdate(u, setAsActive)
	if err != nil {
		return err
	}
	return o.deps.Store.UpdateProviderPartial(ctx, update)
}

// requestID derives the catalog correlation id. A failure only loses the
// header.
func requestID(sessionID, apiKey string) string {
	id, err := pkgoauth.RequestID(sessionID, apiKey)
	if err != nil {
		logging.Debug(loggerSubsystem, "Failed to generate request id: %v", err)
		return ""
	}
	return id
}

type nopNotifier struct{}

func (nopNotifier) AuthURL(string, string)                 {}
func (nopNotifier) WaitingForBrowser(time.Duration) func() { return func() {} }
func (nopNotifier) SignedIn(string)                        {}
func (nopNotifier) SignedOut()                             {}
func (nopNotifier) ModelSelected(string)                   {}
func (nopNotifier) Warning(string, ...any)                 {}
