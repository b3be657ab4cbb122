package authsdk

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Storage keys. Exported so embeddings that bridge to real browser session
// storage can map them 1:1.
const (
	StorageKeyTokens   = "auth_tokens"
	StorageKeyVerifier = "pkce_verifier"
)

// SessionStore owns the current token set for the lifetime of its Storage.
// All reads treat malformed persisted data as "no session" rather than an
// error, so a corrupt entry degrades to logged-out instead of a crash.
type SessionStore struct {
	storage Storage
	now     func() time.Time
}

// NewSessionStore wraps storage in a session store.
func NewSessionStore(storage Storage) *SessionStore {
	return &SessionStore{storage: storage, now: time.Now}
}

// Save computes the absolute expiry from the response's expires_in and
// persists the token set, overwriting any prior session.
func (s *SessionStore) Save(resp TokenResponse) error {
	set := TokenSet{
		IDToken:      resp.IDToken,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    s.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}

	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}
	s.storage.Set(StorageKeyTokens, string(raw))
	return nil
}

// Load returns the persisted token set, or nil when absent or corrupt.
func (s *SessionStore) Load() *TokenSet {
	raw, ok := s.storage.Get(StorageKeyTokens)
	if !ok {
		return nil
	}

	var set TokenSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil
	}
	return &set
}

// Clear removes the persisted token set.
func (s *SessionStore) Clear() {
	s.storage.Delete(StorageKeyTokens)
}

// IsValid reports whether a session exists with a non-empty identity token
// that has not expired. Purely local; a token revoked server-side still
// reads as valid until expiry or Clear.
func (s *SessionStore) IsValid() bool {
	set := s.Load()
	if set == nil || set.IDToken == "" {
		return false
	}
	return set.ExpiresAt.After(s.now())
}

// IDToken returns the current identity token, or "" when no valid session
// exists.
func (s *SessionStore) IDToken() string {
	if !s.IsValid() {
		return ""
	}
	return s.Load().IDToken
}

// Identity decodes the identity token's claims segment and returns the
// subject and email. Returns nil when there is no valid session or the token
// cannot be decoded; decode failures are swallowed because they mean "no
// usable session", not a caller bug. The signature is not verified here —
// the gateway performs verification on every call.
func (s *SessionStore) Identity() *Identity {
	if !s.IsValid() {
		return nil
	}

	parts := strings.Split(s.Load().IDToken, ".")
	if len(parts) != 3 {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil
	}

	var id Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return nil
	}
	return &id
}
