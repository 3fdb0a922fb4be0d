// Package core implements the core process the codeassist CLI talks to.
//
// The core owns the persisted state document and the identity provider
// conversation:
//
//   - StateService serves the state document and applies masked provider
//     updates (see corerpc.ProviderUpdate).
//   - AccountService turns a login request into an authorization URL (PKCE,
//     state and nonce included), signs users out, and streams auth state
//     changes to subscribers.
//   - CallbackHandler receives the browser at CallbackPath after the CLI's
//     local listener forwarded it, exchanges the code, records the access
//     token and identity, and publishes the new auth state.
//
// Server runs the gRPC services and the HTTP callback endpoint together and
// shuts both down when its context ends.
package core
