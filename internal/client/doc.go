// Package client is the CLI side of the core connection.
//
// CoreClient wraps one gRPC connection to the core process and exposes the
// operations the sign-in flow needs: reading the state document, masked
// provider updates, starting a login, signing out, and subscribing to auth
// status updates. Dial waits for the core's gRPC health check before
// returning, so callers get a *DialError instead of a hanging first call
// when the core is not running.
package client
