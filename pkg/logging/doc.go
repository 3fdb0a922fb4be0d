// Package logging provides the subsystem-tagged structured logger used across
// codeassist.
//
// It is a thin layer over log/slog: every record carries a "subsystem"
// attribute and an optional "error" attribute, and level filtering happens in
// the slog handler.
//
// # Usage
//
//	import "codeassist/pkg/logging"
//
//	logging.InitForCLI(logging.LevelWarn, os.Stderr)
//
//	logging.Debug("CallbackServer", "listening on port %d", port)
//	logging.Warn("Auth", "default model not configured: %v", err)
//	logging.Error("Core", err, "token exchange failed")
//
// Components that accept a *slog.Logger can obtain one bound to a subsystem:
//
//	logger := logging.Logger("Catalog")
//
// # Subsystems
//
//   - Auth: sign-in orchestration
//   - CallbackServer: local OAuth redirect listener
//   - AuthStatus: auth status stream consumption
//   - Catalog: model catalog HTTP calls
//   - Core: the core backend process
//   - ConfigLoader: configuration loading
//
// Attributes named like credentials (code, api_key, refresh_token and
// friends) are written as [REDACTED].
//
// Before InitForCLI is called only errors are written, to stderr.
package logging
