// Package oauth provides the OAuth primitives shared by the codeassist CLI
// and the core process.
//
// # Core Components
//
//   - RandomString: crypto/rand backed strings over a caller supplied alphabet
//   - PKCE: code verifier and S256 challenge generation (RFC 7636)
//   - State/Nonce: 32 character random values for authorization requests
//   - RequestID: correlation ids sent as the opc-request-id header
//
// # Usage
//
//	import "codeassist/pkg/oauth"
//
//	pkce, err := oauth.GeneratePKCE()
//	state, err := oauth.GenerateState()
//	reqID, err := oauth.RequestID(sessionID, apiKey)
package oauth
