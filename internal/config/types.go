package config

import "time"

// Mode selects which Code Assist deployment a user signs in to.
const (
	ModeInternal = "internal"
	ModeExternal = "external"
)

// CodeAssistConfig is the top-level configuration structure for codeassist.
type CodeAssistConfig struct {
	Core     CoreConfig     `yaml:"core"`
	Auth     AuthConfig     `yaml:"auth"`
	Provider ProviderConfig `yaml:"provider"`
}

// CoreConfig locates the core process.
type CoreConfig struct {
	Address     string `yaml:"address,omitempty"`     // gRPC address (default: localhost:50052)
	HTTPAddress string `yaml:"httpAddress,omitempty"` // OAuth callback endpoint (default: localhost:50053)
	StateFile   string `yaml:"stateFile,omitempty"`   // Persisted state (default: <config dir>/state.json)
}

// AuthConfig tunes the browser sign-in flow.
type AuthConfig struct {
	// CallbackPorts are tried in order for the local redirect listener.
	CallbackPorts []int `yaml:"callbackPorts,omitempty"`
	// CallbackIdleTimeout tears the listener down when unused for this long.
	CallbackIdleTimeout time.Duration `yaml:"callbackIdleTimeout,omitempty"`
	// CallbackRedirectBase is the externally reachable callback the listener
	// forwards to. Empty means the core HTTP address.
	CallbackRedirectBase string `yaml:"callbackRedirectBase,omitempty"`
	// Timeout bounds the wait for the browser sign-in to complete.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ProviderConfig configures the Code Assist provider.
type ProviderConfig struct {
	DefaultModelID string                `yaml:"defaultModelId,omitempty"`
	Modes          map[string]ModeConfig `yaml:"modes,omitempty"`
}

// ModeConfig holds the API and identity provider endpoints for one mode.
type ModeConfig struct {
	BaseURL      string   `yaml:"baseUrl,omitempty"`
	AuthorizeURL string   `yaml:"authorizeUrl,omitempty"`
	TokenURL     string   `yaml:"tokenUrl,omitempty"`
	ClientID     string   `yaml:"clientId,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty"`
}

// Mode returns the configuration for mode, or an empty ModeConfig.
func (p ProviderConfig) Mode(mode string) ModeConfig {
	if p.Modes == nil {
		return ModeConfig{}
	}
	return p.Modes[mode]
}

// RedirectBase returns the external callback base URL, falling back to the
// core HTTP address.
func (c CodeAssistConfig) RedirectBase() string {
	if c.Auth.CallbackRedirectBase != "" {
		return c.Auth.CallbackRedirectBase
	}
	return "http://" + c.Core.HTTPAddress
}
