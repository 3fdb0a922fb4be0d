package cmd

import (
	"codeassist/internal/core"
	"codeassist/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
)

// coreCmd groups the commands of the core process.
var coreCmd = &cobra.Command{
	Use:   "core",
	Short: "Run the Code Assist core",
}

// coreServeCmd runs the core in the foreground.
var coreServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the core: provider settings, login URLs and the OAuth callback",
	Long: `Run the Code Assist core in the foreground.

The core serves the account and state gRPC services on core.address and
receives forwarded OAuth callbacks on core.httpAddress. It keeps provider
settings in core.stateFile. Under systemd it reports readiness with
sd_notify once both listeners are bound.`,
	RunE: runCoreServe,
}

func init() {
	rootCmd.AddCommand(coreCmd)
	coreCmd.AddCommand(coreServeCmd)
}

func runCoreServe(cmd *cobra.Command, args []string) error {
	if !rootDebug {
		logging.InitForCLI(logging.LevelInfo, cmd.ErrOrStderr())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	server, err := core.NewServer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	ready := func() {
		if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
			logging.Warn("Core", "Failed to notify systemd: %v", err)
		} else if sent {
			logging.Debug("Core", "Notified systemd of readiness")
		}
	}

	err = server.ListenAndServe(ctx, ready)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	return err
}
