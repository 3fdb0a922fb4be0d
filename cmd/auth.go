package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authCmd runs the interactive sign-in, or offers a sign-out to a user who
// is already signed in.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to or out of Oracle Code Assist",
	Long: `Sign in to Oracle Code Assist through your browser.

Run without a subcommand for the interactive flow: pick internal or
external mode, optionally override the base URL, and complete the sign-in
in the browser that opens. If you are already signed in you are offered a
sign-out instead.

Examples:
  codeassist auth                                  # Interactive sign-in or sign-out
  codeassist auth login --mode external            # Sign in without prompts
  codeassist auth status                           # Show the current sign-in
  codeassist auth models                           # List available models
  codeassist auth models --set oca/gpt-4.1         # Switch model
  codeassist auth logout                           # Sign out`,
	RunE: runAuth,
}

// authLogoutCmd signs out.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of Oracle Code Assist",
	RunE:  runAuthLogout,
}

// authPrintf prints only if --quiet is not set.
func authPrintf(cmd *cobra.Command, format string, args ...interface{}) {
	if !rootQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authModelsCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	env, err := newAuthEnv(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	return authError(env.orch.Run(ctx))
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	env, err := newAuthEnv(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	if !env.orch.IsAuthenticated(ctx) {
		authPrintf(cmd, "Not signed in.\n")
		return nil
	}
	return env.orch.SignOut(ctx)
}
