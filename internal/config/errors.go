package config

import "fmt"

// ConfigurationError reports a problem loading config.yaml.
type ConfigurationError struct {
	FilePath string
	Message  string
	Err      error
}

func (ce *ConfigurationError) Error() string {
	if ce.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", ce.FilePath, ce.Message, ce.Err)
	}
	return fmt.Sprintf("config %s: %s", ce.FilePath, ce.Message)
}

func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}
