package authsdk

import (
	"context"
	"encoding/json"
)

// Operation documents sent to the gateway. These mirror the gateway's fixed
// schema; variables ride alongside in the request envelope.
const (
	queryTokenRegistered = `query GetTokenRegistered { getTokenRegistered }`

	mutationRegisterToken = `mutation RegisterToken($token: String!) { registerToken(token: $token) }`

	queryMe = `query Me { me { sub email } }`

	queryStatusAndMe = `query StatusAndMe { getTokenRegistered me { sub email } }`

	queryAccounts = `query ListAccounts { accounts { id displayName accountType ownershipType balanceValue balanceValueInBaseUnits currencyCode createdAt } }`

	queryAccountByID = `query AccountByID($id: String!) { account(id: $id) { id displayName accountType ownershipType balanceValue balanceValueInBaseUnits currencyCode createdAt } }`
)

// normalizeRegistered interprets the registration flag however the gateway
// shaped it: a bare boolean, an object with a registered field, or anything
// else, which normalizes to false. One deterministic function so shape
// drift never throws.
func normalizeRegistered(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var obj struct {
		Registered bool `json:"registered"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Registered
	}

	return false
}

// RegistrationStatus reports whether the caller has a secret registered.
func (c *Client) RegistrationStatus(ctx context.Context) (bool, error) {
	var data struct {
		GetTokenRegistered json.RawMessage `json:"getTokenRegistered"`
	}
	if err := c.call(ctx, queryTokenRegistered, nil, &data); err != nil {
		return false, err
	}
	return normalizeRegistered(data.GetTokenRegistered), nil
}

// RegisterSecret stores value as the caller's external-API secret and
// returns the resulting registration flag.
func (c *Client) RegisterSecret(ctx context.Context, value string) (bool, error) {
	var data struct {
		RegisterToken json.RawMessage `json:"registerToken"`
	}
	vars := map[string]any{"token": value}
	if err := c.call(ctx, mutationRegisterToken, vars, &data); err != nil {
		return false, err
	}
	return normalizeRegistered(data.RegisterToken), nil
}

// Me returns the caller's identity as the gateway sees it.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var data struct {
		Me *Identity `json:"me"`
	}
	if err := c.call(ctx, queryMe, nil, &data); err != nil {
		return nil, err
	}
	if data.Me == nil {
		return nil, ErrEmptyResponse
	}
	return data.Me, nil
}

// IdentityAndStatus fetches the registration flag and identity in one round
// trip. Equivalent to calling RegistrationStatus and Me separately.
func (c *Client) IdentityAndStatus(ctx context.Context) (*Identity, bool, error) {
	var data struct {
		GetTokenRegistered json.RawMessage `json:"getTokenRegistered"`
		Me                 *Identity       `json:"me"`
	}
	if err := c.call(ctx, queryStatusAndMe, nil, &data); err != nil {
		return nil, false, err
	}
	return data.Me, normalizeRegistered(data.GetTokenRegistered), nil
}

// Accounts lists the caller's accounts from the external API via the
// gateway.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var data struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.call(ctx, queryAccounts, nil, &data); err != nil {
		return nil, err
	}
	return data.Accounts, nil
}

// AccountByID fetches a single account. Returns nil without error when the
// account does not exist.
func (c *Client) AccountByID(ctx context.Context, id string) (*Account, error) {
	var data struct {
		Account *Account `json:"account"`
	}
	vars := map[string]any{"id": id}
	if err := c.call(ctx, queryAccountByID, vars, &data); err != nil {
		return nil, err
	}
	return data.Account, nil
}
