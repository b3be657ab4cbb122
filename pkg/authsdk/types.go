package authsdk

import "time"

// TokenResponse is the token endpoint's success payload.
type TokenResponse struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// TokenSet is the persisted session state derived from a TokenResponse.
type TokenSet struct {
	IDToken      string    `json:"idToken"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Identity is the authenticated-user view derived from the identity token's
// claims. It is recomputed on demand, never stored.
type Identity struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
}

// TokenStatus reports whether the caller has a secret registered with the
// gateway, and when it was last written.
type TokenStatus struct {
	Registered bool       `json:"registered"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// Account is the caller-facing account shape returned by the gateway.
// Every attribute the upstream may omit is a pointer so absence survives
// round trips as null rather than a zero value.
type Account struct {
	ID                      string  `json:"id"`
	DisplayName             *string `json:"displayName"`
	AccountType             *string `json:"accountType"`
	OwnershipType           *string `json:"ownershipType"`
	BalanceValue            *string `json:"balanceValue"`
	BalanceValueInBaseUnits *int64  `json:"balanceValueInBaseUnits"`
	CurrencyCode            *string `json:"currencyCode"`
	CreatedAt               *string `json:"createdAt"`
}

// FieldError is a structured error entry returned by the gateway alongside
// (or instead of) data.
type FieldError struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType,omitempty"`
}
