package authsdk

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/upbanklab/upgate/pkg/cryptox"
)

// PKCEChallenge holds a verifier/challenge pair for one login attempt.
// Only the challenge travels to the authorization endpoint; the verifier
// stays client-side until the code exchange.
type PKCEChallenge struct {
	Verifier  string
	Challenge string
	Method    string
}

// GeneratePKCEChallenge creates a fresh 32-byte verifier and its S256
// challenge.
func GeneratePKCEChallenge() (*PKCEChallenge, error) {
	verifier, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("authsdk: failed to generate verifier: %w", err)
	}

	return &PKCEChallenge{
		Verifier:  verifier,
		Challenge: ChallengeFromVerifier(verifier),
		Method:    "S256",
	}, nil
}

// ChallengeFromVerifier computes the S256 challenge for a verifier:
// base64url(SHA-256(verifier)), unpadded. Deterministic.
func ChallengeFromVerifier(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
