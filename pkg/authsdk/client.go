package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client calls the gateway's query endpoint with the current session's
// identity token. Every method checks session validity locally first, so an
// expired session fails fast with ErrNotAuthenticated instead of a network
// round trip that would 401 anyway.
type Client struct {
	gatewayURL string
	sessions   *SessionStore
	httpClient *http.Client
}

// NewClient builds a gateway client. httpClient may be nil, in which case
// http.DefaultClient is used.
func NewClient(gatewayURL string, sessions *SessionStore, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{gatewayURL: gatewayURL, sessions: sessions, httpClient: httpClient}
}

type gatewayRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gatewayResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors FieldErrors     `json:"errors,omitempty"`
}

// call posts one operation and decodes the data payload into out.
func (c *Client) call(ctx context.Context, query string, variables map[string]any, out any) error {
	if !c.sessions.IsValid() {
		return ErrNotAuthenticated
	}

	payload, err := json.Marshal(gatewayRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("authsdk: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("authsdk: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.sessions.IDToken())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("authsdk: gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("authsdk: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{StatusCode: resp.StatusCode, Message: bestEffortMessage(body)}
	}

	var envelope gatewayResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("authsdk: failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return envelope.Errors
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return ErrEmptyResponse
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("authsdk: failed to decode data payload: %w", err)
	}
	return nil
}

// bestEffortMessage pulls a human-readable message out of an error body,
// preferring the structured errors array, then falling back to raw text.
func bestEffortMessage(body []byte) string {
	var envelope gatewayResponse
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		return envelope.Errors[0].Message
	}
	if len(body) > 0 && len(body) <= 512 {
		return string(bytes.TrimSpace(body))
	}
	return ""
}
