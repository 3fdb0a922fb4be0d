package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// URLSafeAlphabet is the unreserved character set from RFC 7636 section 4.1.
	URLSafeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

	// AlphanumericAlphabet is used for state and nonce values.
	AlphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// CodeVerifierLength is the length of a generated PKCE code verifier.
	// 128 is the maximum RFC 7636 allows.
	CodeVerifierLength = 128

	// StateLength is the length of generated state and nonce values.
	StateLength = 32

	// CodeChallengeMethodS256 is the only challenge method we emit.
	CodeChallengeMethodS256 = "S256"
)

// PKCEChallenge holds a PKCE code verifier together with its derived challenge.
type PKCEChallenge struct {
	CodeVerifier        string
	CodeChallenge       string
	CodeChallengeMethod string
}

// RandomString returns a string of the given length whose characters are
// drawn from alphabet. Each character is picked by taking one byte from
// crypto/rand modulo the alphabet size.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("invalid length %d", length)
	}
	if alphabet == "" {
		return "", fmt.Errorf("alphabet must not be empty")
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}

// CodeChallenge returns the S256 challenge for verifier: the base64url
// encoding (no padding) of its SHA-256 digest.
func CodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// GeneratePKCE generates a new 128 character code verifier over the URL-safe
// alphabet and its S256 challenge.
func GeneratePKCE() (*PKCEChallenge, error) {
	verifier, err := RandomString(CodeVerifierLength, URLSafeAlphabet)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       CodeChallenge(verifier),
		CodeChallengeMethod: CodeChallengeMethodS256,
	}, nil
}

// GenerateState generates a random state parameter for OAuth.
// The state links the authorization response back to the original request.
func GenerateState() (string, error) {
	state, err := RandomString(StateLength, AlphanumericAlphabet)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return state, nil
}

// GenerateNonce generates a random nonce for OIDC requests.
func GenerateNonce() (string, error) {
	return GenerateState()
}

// RequestID builds a 32 character hex correlation id for outbound API calls.
//
// Layout (16 bytes before encoding):
//
//	[0:4]   first 4 bytes of SHA-256(credential)
//	[4:8]   first 4 bytes of SHA-256(sessionID)
//	[8:12]  Unix seconds, big-endian
//	[12:16] random
//
// The value is for log correlation only and carries no security properties.
func RequestID(sessionID, credential string) (string, error) {
	return requestIDAt(sessionID, credential, time.Now())
}

func requestIDAt(sessionID, credential string, now time.Time) (string, error) {
	var id [16]byte

	credHash := sha256.Sum256([]byte(credential))
	copy(id[0:4], credHash[:4])

	sessionHash := sha256.Sum256([]byte(sessionID))
	copy(id[4:8], sessionHash[:4])

	binary.BigEndian.PutUint32(id[8:12], uint32(now.Unix()))

	if _, err := rand.Read(id[12:16]); err != nil {
		return "", fmt.Errorf("failed to generate request id: %w", err)
	}

	return hex.EncodeToString(id[:]), nil
}
