package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// FlowConfig describes the identity provider endpoints and client identity
// for the authorization code flow.
type FlowConfig struct {
	// AuthDomain is the identity provider base URL, e.g.
	// "https://auth.example.com". Authorize, token and logout endpoints are
	// derived from it.
	AuthDomain string
	ClientID   string
	// RedirectURI is where the provider sends the user back with a code.
	RedirectURI string
	Scopes      []string
	// LogoutURI is the post-logout landing page.
	LogoutURI string
}

// FlowController orchestrates the two halves of the redirect-based login
// flow. BeginLogin and CompleteLogin run in different page loads; the only
// state that bridges them is the verifier in tab-scoped storage.
type FlowController struct {
	cfg        FlowConfig
	storage    Storage
	sessions   *SessionStore
	httpClient *http.Client
}

// NewFlowController builds a controller. httpClient may be nil, in which
// case http.DefaultClient is used.
func NewFlowController(cfg FlowConfig, storage Storage, sessions *SessionStore, httpClient *http.Client) *FlowController {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &FlowController{cfg: cfg, storage: storage, sessions: sessions, httpClient: httpClient}
}

// BeginLogin discards any stale verifier, generates a fresh PKCE pair,
// persists the verifier and returns the authorization URL the user agent
// must navigate to. Control does not come back through this code path; the
// provider redirects to RedirectURI where CompleteLogin picks up.
func (f *FlowController) BeginLogin() (string, error) {
	f.storage.Delete(StorageKeyVerifier)

	pkce, err := GeneratePKCEChallenge()
	if err != nil {
		return "", err
	}
	f.storage.Set(StorageKeyVerifier, pkce.Verifier)

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", f.cfg.ClientID)
	q.Set("redirect_uri", f.cfg.RedirectURI)
	q.Set("scope", strings.Join(f.cfg.Scopes, " "))
	q.Set("code_challenge", pkce.Challenge)
	q.Set("code_challenge_method", pkce.Method)
	q.Set("state", uuid.NewString())

	return f.cfg.AuthDomain + "/oauth2/authorize?" + q.Encode(), nil
}

// CompleteLogin exchanges the authorization code for tokens and saves the
// session. Both the code and a stored verifier must be present or the
// exchange fails with ErrMissingAuthorizationInput before any network call.
// The verifier is single-use: it is removed after a successful exchange, and
// kept in place on transport or provider failure only because the caller
// must restart BeginLogin anyway, which replaces it.
func (f *FlowController) CompleteLogin(ctx context.Context, code string) error {
	if code == "" {
		return ErrMissingAuthorizationInput
	}
	verifier, ok := f.storage.Get(StorageKeyVerifier)
	if !ok || verifier == "" {
		return ErrMissingAuthorizationInput
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", f.cfg.ClientID)
	form.Set("code", code)
	form.Set("redirect_uri", f.cfg.RedirectURI)
	form.Set("code_verifier", verifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.cfg.AuthDomain+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("authsdk: failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("authsdk: token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &TokenExchangeError{
			StatusCode:  resp.StatusCode,
			Code:        body.Error,
			Description: body.ErrorDescription,
		}
	}

	var tokens TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("authsdk: failed to decode token response: %w", err)
	}

	if err := f.sessions.Save(tokens); err != nil {
		return fmt.Errorf("authsdk: failed to persist session: %w", err)
	}
	f.storage.Delete(StorageKeyVerifier)
	return nil
}

// LogoutURL returns the provider's logout URL. The caller clears the local
// session before navigating there.
func (f *FlowController) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", f.cfg.ClientID)
	q.Set("logout_uri", f.cfg.LogoutURI)
	return f.cfg.AuthDomain + "/logout?" + q.Encode()
}
