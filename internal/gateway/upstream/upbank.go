// Package upstream holds the HTTP client for the external banking API.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result is one upstream response, status and body both preserved. Statuses
// at or above 400 are not errors here; the resolver layer owns translating
// them into its taxonomy.
type Result struct {
	StatusCode int
	Body       []byte
}

// Client issues authenticated GETs against the banking API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an upstream client for baseURL. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Getter is the slice of Client the resolvers need; tests substitute fakes.
type Getter interface {
	Get(ctx context.Context, path, bearer string) (Result, error)
}

// Get performs GET {baseURL}{path} with the bearer credential. The error
// return covers transport failures only.
func (c *Client) Get(ctx context.Context, path, bearer string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Result{}, fmt.Errorf("upstream: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("upstream: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("upstream: failed to read response: %w", err)
	}

	return Result{StatusCode: resp.StatusCode, Body: body}, nil
}
