// Package jwtx wraps JWT parsing and verification for identity tokens.
package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed reports a token that is not a structurally valid JWT.
	ErrMalformed = errors.New("jwtx: malformed token")
	// ErrInvalidSignature reports a signature that fails verification.
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	// ErrExpired reports a token past its expiry claim.
	ErrExpired = errors.New("jwtx: token expired")
	// ErrIssuer reports a token from an unexpected issuer.
	ErrIssuer = errors.New("jwtx: unexpected issuer")
)

// Verifier validates an identity token and extracts its claims.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// HS256Verifier verifies tokens signed with HMAC-SHA256 by a shared secret.
type HS256Verifier struct {
	secret []byte
	issuer string
}

// NewVerifierHS256 returns a verifier for HS256-signed tokens. When issuer is
// non-empty the token's iss claim must match it.
func NewVerifierHS256(secret []byte, issuer string) *HS256Verifier {
	return &HS256Verifier{secret: secret, issuer: issuer}
}

// Verify parses, verifies and validates the token. It maps library errors
// onto the package's sentinel errors so callers can branch without depending
// on the underlying JWT implementation.
func (v *HS256Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrIssuer
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	return claims, nil
}

// SignHS256 mints an HS256 token for the given claims. It exists for tests
// and local tooling; production tokens come from the identity provider.
func SignHS256(secret []byte, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to sign token: %w", err)
	}
	return signed, nil
}
