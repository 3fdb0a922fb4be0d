package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"codeassist/internal/auth"
	"codeassist/internal/catalog"
	"codeassist/internal/cli"
	"codeassist/internal/client"
	"codeassist/internal/config"
	"codeassist/internal/oauth"
	"codeassist/pkg/logging"

	"github.com/spf13/cobra"
)

// authEnv is everything an auth command needs, wired for one invocation.
type authEnv struct {
	cfg      config.CodeAssistConfig
	core     *client.CoreClient
	callback *oauth.CallbackServer
	orch     *auth.Orchestrator
	prompter auth.Prompter
	closers  []func()
}

// newAuthEnv connects to the core and builds the orchestrator. With
// interactive set, a readline prompter is attached.
func newAuthEnv(ctx context.Context, cmd *cobra.Command, interactive bool) (*authEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	core, err := client.Dial(ctx, cfg.Core.Address, client.DefaultDialTimeout)
	if err != nil {
		return nil, &cli.CoreUnavailableError{Address: cfg.Core.Address, Reason: err}
	}

	env := &authEnv{cfg: cfg, core: core}
	env.closers = append(env.closers, func() { core.Close() })

	env.callback = oauth.NewCallbackServer(oauth.CallbackServerConfig{
		Ports:        cfg.Auth.CallbackPorts,
		RedirectBase: cfg.RedirectBase(),
		IdleTimeout:  cfg.Auth.CallbackIdleTimeout,
	})
	env.closers = append(env.closers, env.callback.Stop)

	deps := auth.Dependencies{
		Store:    core,
		Account:  core,
		Callback: env.callback,
		Catalog:  catalog.NewClient(catalog.WithLogger(logging.Logger("Catalog"))),
		Notifier: cli.NewConsole(cmd.OutOrStdout(), rootQuiet),
		Session:  auth.NewSessionCache(),
	}

	if interactive {
		prompter, rl, err := cli.NewPrompter()
		if err != nil {
			env.Close()
			return nil, err
		}
		env.closers = append(env.closers, func() { rl.Close() })
		deps.Prompter = prompter
		env.prompter = prompter
	}

	env.orch, err = auth.NewOrchestrator(cfg, deps)
	if err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

// Close releases the connection, the callback listener and the terminal.
func (e *authEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// signalContext is cancelled on Ctrl-C so a pending sign-in ends as
// cancelled instead of killing the process mid-write.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// authError turns sign-in failures into user-facing errors with exit codes.
func authError(err error) error {
	if err == nil {
		return nil
	}

	var timeout *oauth.AuthTimeoutError
	var stream *oauth.StreamError
	if errors.As(err, &timeout) || errors.As(err, &stream) || errors.Is(err, oauth.ErrAuthCancelled) {
		return &cli.AuthFailedError{Provider: auth.ProviderDisplayName, Reason: err}
	}
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return &cli.AuthRequiredError{Provider: auth.ProviderDisplayName}
	}
	if errors.Is(err, cli.ErrPromptCancelled) {
		return errors.New("cancelled")
	}
	return err
}
