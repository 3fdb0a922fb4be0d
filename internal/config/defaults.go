package config

import "time"

const (
	// DefaultCoreAddress is where the core process serves gRPC.
	DefaultCoreAddress = "localhost:50052"

	// DefaultCoreHTTPAddress is where the core process serves the OAuth callback.
	DefaultCoreHTTPAddress = "localhost:50053"

	// DefaultCallbackIdleTimeout is how long an unused redirect listener lives.
	DefaultCallbackIdleTimeout = 10 * time.Minute

	// DefaultAuthTimeout bounds the wait for browser sign-in.
	DefaultAuthTimeout = 5 * time.Minute

	// DefaultModelID is configured after a successful sign-in.
	DefaultModelID = "oca/gpt-4.1"

	stateFileName = "state.json"
)

// DefaultCallbackPorts are the candidate ports for the redirect listener.
// They must match the redirect URIs registered with the identity provider.
var DefaultCallbackPorts = []int{48801, 48802, 48803, 48804, 48805}

var defaultScopes = []string{"openid", "offline_access"}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() CodeAssistConfig {
	return CodeAssistConfig{
		Core: CoreConfig{
			Address:     DefaultCoreAddress,
			HTTPAddress: DefaultCoreHTTPAddress,
		},
		Auth: AuthConfig{
			CallbackPorts:       append([]int(nil), DefaultCallbackPorts...),
			CallbackIdleTimeout: DefaultCallbackIdleTimeout,
			Timeout:             DefaultAuthTimeout,
		},
		Provider: ProviderConfig{
			DefaultModelID: DefaultModelID,
			Modes: map[string]ModeConfig{
				ModeInternal: {Scopes: append([]string(nil), defaultScopes...)},
				ModeExternal: {Scopes: append([]string(nil), defaultScopes...)},
			},
		},
	}
}
