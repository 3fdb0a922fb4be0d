// Package oauth holds the CLI half of the browser sign-in handshake.
//
// The core owns the authorization request and the code exchange. What runs
// in the CLI process is the plumbing around the browser:
//
//   - CallbackServer binds a loopback listener on the first free port from a
//     configured list and reports it as the callback URI the core sends to
//     the identity provider. The first redirect it receives is answered with
//     a 302 to the core's external callback URL, query string intact, and
//     the listener then shuts down. An idle timer stops an unused listener.
//   - StatusSubscriber consumes the core's auth status stream and reports
//     whether an event carrying both a user identity and an API key arrives
//     before a deadline.
//   - OpenBrowser launches the platform browser for the authorization URL.
//
// # Flow
//
//  1. The orchestrator asks the CallbackServer for its URI.
//  2. A StatusSubscriber is started before the login is initiated, so the
//     authenticated event cannot be missed.
//  3. The core returns an authorization URL and the browser is opened.
//  4. The identity provider redirects to the loopback listener, which
//     forwards the browser to the core.
//  5. The core exchanges the code, stores the credential and publishes the
//     new auth state on the stream.
//
// Errors returned from WaitForAuthentication are *AuthTimeoutError,
// *StreamError or ErrAuthCancelled.
package oauth
