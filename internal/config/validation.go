package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Validate checks a fully defaulted configuration.
func Validate(config CodeAssistConfig) error {
	var errs []error

	if _, _, err := net.SplitHostPort(config.Core.Address); err != nil {
		errs = append(errs, fmt.Errorf("core.address %q: %w", config.Core.Address, err))
	}
	if _, _, err := net.SplitHostPort(config.Core.HTTPAddress); err != nil {
		errs = append(errs, fmt.Errorf("core.httpAddress %q: %w", config.Core.HTTPAddress, err))
	}

	for _, port := range config.Auth.CallbackPorts {
		if port < 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("auth.callbackPorts: %d is not a valid port", port))
		}
	}
	if config.Auth.CallbackIdleTimeout < 0 {
		errs = append(errs, errors.New("auth.callbackIdleTimeout must not be negative"))
	}
	if config.Auth.Timeout < 0 {
		errs = append(errs, errors.New("auth.timeout must not be negative"))
	}
	if err := validateAbsoluteURL(config.RedirectBase()); err != nil {
		errs = append(errs, fmt.Errorf("auth.callbackRedirectBase: %w", err))
	}

	for name, mode := range config.Provider.Modes {
		if name != ModeInternal && name != ModeExternal {
			errs = append(errs, fmt.Errorf("provider.modes: unknown mode %q", name))
			continue
		}
		for field, value := range map[string]string{
			"baseUrl":      mode.BaseURL,
			"authorizeUrl": mode.AuthorizeURL,
			"tokenUrl":     mode.TokenURL,
		} {
			if value == "" {
				continue
			}
			if err := validateAbsoluteURL(value); err != nil {
				errs = append(errs, fmt.Errorf("provider.modes.%s.%s: %w", name, field, err))
			}
		}
	}

	return errors.Join(errs...)
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
