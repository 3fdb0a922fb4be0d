package cmd

import (
	"codeassist/internal/auth"

	"github.com/spf13/cobra"
)

var (
	loginMode    string
	loginBaseURL string
)

// authLoginCmd signs in, prompting only for what the flags leave open.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Oracle Code Assist",
	Long: `Sign in to Oracle Code Assist through your browser.

Without --mode you are asked for the mode and an optional base URL. The
command waits until the core confirms the sign-in, then selects the
default model.

Examples:
  codeassist auth login
  codeassist auth login --mode internal
  codeassist auth login --mode external --base-url https://oca.example.com`,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().StringVar(&loginMode, "mode", "", "Deployment to sign in to: internal or external")
	authLoginCmd.Flags().StringVar(&loginBaseURL, "base-url", "", "Override the API base URL")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if loginMode != "" {
		if err := auth.ValidateMode(loginMode); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	env, err := newAuthEnv(ctx, cmd, loginMode == "")
	if err != nil {
		return err
	}
	defer env.Close()

	if env.orch.IsAuthenticated(ctx) {
		authPrintf(cmd, "Already signed in to %s. Run 'codeassist auth logout' first to switch accounts.\n", auth.ProviderDisplayName)
		return nil
	}

	mode, baseURL := loginMode, loginBaseURL
	if mode == "" {
		if mode, err = env.prompter.SelectMode(ctx); err != nil {
			return authError(err)
		}
		if baseURL == "" {
			if baseURL, err = env.prompter.BaseURL(ctx, mode); err != nil {
				return authError(err)
			}
		}
	}

	return authError(env.orch.SignIn(ctx, mode, baseURL))
}
