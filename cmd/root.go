package cmd

import (
	"errors"
	"os"

	"codeassist/internal/cli"
	"codeassist/internal/config"
	"codeassist/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates the command needs a signed-in user.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the browser sign-in failed.
	ExitCodeAuthFailed = 3
)

var (
	rootDebug      bool
	rootQuiet      bool
	rootConfigPath string
)

// rootCmd is the entry point when codeassist is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "codeassist",
	Short: "Sign in to Oracle Code Assist from the terminal",
	Long: `codeassist signs you in to Oracle Code Assist through your browser and
manages the model used by the Code Assist core.

The core process (codeassist core serve) keeps the provider settings and
completes the OAuth code exchange; the CLI drives the sign-in and waits
for the core to confirm it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelWarn
		if rootDebug {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
	},
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code describing the failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "codeassist version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps an error to a semantic exit code for scripts.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

// loadConfig reads config.yaml from --config-path or the default directory.
func loadConfig() (config.CodeAssistConfig, error) {
	path := rootConfigPath
	if path == "" {
		var err error
		if path, err = config.GetDefaultConfigPath(); err != nil {
			return config.CodeAssistConfig{}, err
		}
	}
	return config.LoadConfig(path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default ~/.config/codeassist)")

	rootCmd.AddCommand(newVersionCmd())
}
