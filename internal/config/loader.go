package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"codeassist/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/codeassist"
	configFileName = "config.yaml"

	// EnvCoreAddress overrides core.address.
	EnvCoreAddress = "CODEASSIST_CORE_ADDRESS"
)

var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/codeassist.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}

	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath on top of the defaults.
// A missing file is not an error.
func LoadConfig(configPath string) (CodeAssistConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return CodeAssistConfig{}, &ConfigurationError{FilePath: configFilePath, Message: "cannot read file", Err: err}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return CodeAssistConfig{}, &ConfigurationError{FilePath: configFilePath, Message: "malformed YAML", Err: err}
		}
		logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if addr := os.Getenv(EnvCoreAddress); addr != "" {
		logging.Debug("ConfigLoader", "Using core address %s from %s", addr, EnvCoreAddress)
		config.Core.Address = addr
	}

	applyDefaults(&config, configPath)

	if err := Validate(config); err != nil {
		return CodeAssistConfig{}, &ConfigurationError{FilePath: configFilePath, Message: "invalid configuration", Err: err}
	}
	return config, nil
}

// applyDefaults fills fields a partial config.yaml left empty.
func applyDefaults(config *CodeAssistConfig, configPath string) {
	defaults := GetDefaultConfig()

	if config.Core.Address == "" {
		config.Core.Address = defaults.Core.Address
	}
	if config.Core.HTTPAddress == "" {
		config.Core.HTTPAddress = defaults.Core.HTTPAddress
	}
	if config.Core.StateFile == "" {
		config.Core.StateFile = filepath.Join(configPath, stateFileName)
	}
	if len(config.Auth.CallbackPorts) == 0 {
		config.Auth.CallbackPorts = defaults.Auth.CallbackPorts
	}
	if config.Auth.CallbackIdleTimeout == 0 {
		config.Auth.CallbackIdleTimeout = defaults.Auth.CallbackIdleTimeout
	}
	if config.Auth.Timeout == 0 {
		config.Auth.Timeout = defaults.Auth.Timeout
	}
	if config.Provider.DefaultModelID == "" {
		config.Provider.DefaultModelID = defaults.Provider.DefaultModelID
	}
	if config.Provider.Modes == nil {
		config.Provider.Modes = map[string]ModeConfig{}
	}
	for _, mode := range []string{ModeInternal, ModeExternal} {
		mc := config.Provider.Modes[mode]
		if len(mc.Scopes) == 0 {
			mc.Scopes = append([]string(nil), defaultScopes...)
		}
		config.Provider.Modes[mode] = mc
	}
}
