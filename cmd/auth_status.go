package cmd

import (
	"codeassist/internal/auth"
	"codeassist/internal/cli"

	"github.com/spf13/cobra"
)

// authStatusCmd shows the stored sign-in.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current Oracle Code Assist sign-in",
	Long: `Show whether you are signed in, as whom, in which mode, and which
model is active.`,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	env, err := newAuthEnv(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	state, err := env.orch.Status(ctx)
	if err != nil {
		return err
	}

	user := state.DisplayName
	if user == "" {
		user = state.UserID
	}
	if state.Email != "" {
		if user != "" {
			user += " <" + state.Email + ">"
		} else {
			user = state.Email
		}
	}

	baseURL := state.BaseURL
	if baseURL == "" && state.Mode != "" {
		baseURL = env.cfg.Provider.Mode(state.Mode).BaseURL
	}

	table := cli.NewPlainTableWriter(cmd.OutOrStdout())
	table.SetHeaders("provider", "signed in", "user", "mode", "base url", "model")
	table.AppendRow(
		auth.ProviderDisplayName,
		cli.FormatBool(state.SignedIn()),
		cli.FormatOptional(user),
		cli.FormatOptional(state.Mode),
		cli.FormatOptional(baseURL),
		cli.FormatOptional(state.ModelID),
	)
	table.Render()

	if !state.SignedIn() {
		authPrintf(cmd, "\nRun 'codeassist auth login' to sign in.\n")
	}
	return nil
}
