// Package config loads the codeassist configuration.
//
// Configuration lives in a single directory, ~/.config/codeassist by default
// (overridable with --config-path), containing config.yaml. A missing file
// yields the defaults from defaults.go; a partial file is filled in from the
// defaults after decoding.
//
// Example config.yaml:
//
//	core:
//	  address: localhost:50052
//	  httpAddress: localhost:50053
//	auth:
//	  callbackPorts: [48801, 48802, 48803]
//	  callbackIdleTimeout: 10m
//	  timeout: 5m
//	provider:
//	  defaultModelId: oca/gpt-4.1
//	  modes:
//	    external:
//	      baseUrl: https://oca.oracle.com
//	      authorizeUrl: https://idcs.example.com/oauth2/v1/authorize
//	      tokenUrl: https://idcs.example.com/oauth2/v1/token
//	      clientId: codeassist-cli
//
// The CODEASSIST_CORE_ADDRESS environment variable overrides core.address.
package config
