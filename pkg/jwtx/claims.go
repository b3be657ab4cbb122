package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the set of identity-token claims the gateway cares about. It
// embeds the registered claims and adds the email claim that the identity
// provider includes for interactive users.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// ExpiresAt returns the token expiry, or the zero time when the claim is
// absent.
func (c *Claims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}
