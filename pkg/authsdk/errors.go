package authsdk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingAuthorizationInput reports a code exchange attempted without
	// an authorization code or without the verifier stored at login time.
	// The caller must restart the login flow.
	ErrMissingAuthorizationInput = errors.New("authsdk: missing authorization code or verifier")

	// ErrNotAuthenticated reports a gateway call attempted without a valid
	// local session. Checked before any network traffic.
	ErrNotAuthenticated = errors.New("authsdk: not authenticated")

	// ErrEmptyResponse reports a 2xx gateway response with no data payload.
	ErrEmptyResponse = errors.New("authsdk: empty response from gateway")
)

// TokenExchangeError reports a non-success response from the token endpoint.
type TokenExchangeError struct {
	StatusCode  int
	Code        string // upstream "error" field, e.g. "invalid_grant"
	Description string // upstream "error_description", may be empty
}

func (e *TokenExchangeError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authsdk: token exchange failed (%d %s): %s", e.StatusCode, e.Code, e.Description)
	}
	if e.Code != "" {
		return fmt.Sprintf("authsdk: token exchange failed (%d): %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("authsdk: token exchange failed with status %d", e.StatusCode)
}

// GatewayError reports a non-2xx HTTP response from the gateway.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authsdk: gateway returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("authsdk: gateway returned %d", e.StatusCode)
}

// FieldErrors reports structured errors carried in an otherwise successful
// gateway response.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return "authsdk: gateway errors: " + strings.Join(msgs, "; ")
}

// HasType reports whether any field error carries the given errorType.
func (e FieldErrors) HasType(errorType string) bool {
	for _, fe := range e {
		if fe.ErrorType == errorType {
			return true
		}
	}
	return false
}
