package authsdk

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fakeIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	body := base64.RawURLEncoding.EncodeToString(payload)
	return header + "." + body + ".signature"
}

func newTestSessionStore(at time.Time) (*SessionStore, *MemoryStorage) {
	storage := NewMemoryStorage()
	s := NewSessionStore(storage)
	s.now = func() time.Time { return at }
	return s, storage
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _ := newTestSessionStore(now)

	require.NoError(t, s.Save(TokenResponse{
		IDToken:     "id-token",
		AccessToken: "access-token",
		ExpiresIn:   3600,
	}))

	set := s.Load()
	require.NotNil(t, set)
	require.Equal(t, "id-token", set.IDToken)
	require.Equal(t, "access-token", set.AccessToken)
	require.Equal(t, now.Add(time.Hour), set.ExpiresAt)
	require.True(t, s.IsValid())
}

func TestLoadCorruptDataReturnsNil(t *testing.T) {
	t.Parallel()

	s, storage := newTestSessionStore(time.Now())
	storage.Set(StorageKeyTokens, "{not json")

	require.Nil(t, s.Load())
	require.False(t, s.IsValid())
	require.Nil(t, s.Identity())
}

func TestIsValidRejectsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _ := newTestSessionStore(now)

	require.NoError(t, s.Save(TokenResponse{IDToken: "id", AccessToken: "at", ExpiresIn: 60}))

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	require.False(t, s.IsValid())
	require.Empty(t, s.IDToken())
	require.Nil(t, s.Identity())
}

func TestIsValidRejectsMissingIDToken(t *testing.T) {
	t.Parallel()

	s, _ := newTestSessionStore(time.Now())
	require.NoError(t, s.Save(TokenResponse{AccessToken: "at", ExpiresIn: 3600}))
	require.False(t, s.IsValid())
}

func TestClear(t *testing.T) {
	t.Parallel()

	s, _ := newTestSessionStore(time.Now())
	require.NoError(t, s.Save(TokenResponse{IDToken: "id", ExpiresIn: 3600}))
	require.True(t, s.IsValid())

	s.Clear()
	require.Nil(t, s.Load())
	require.False(t, s.IsValid())
}

func TestIdentityDecodesClaims(t *testing.T) {
	t.Parallel()

	s, _ := newTestSessionStore(time.Now())
	token := fakeIDToken(t, map[string]any{"sub": "user-1", "email": "u1@example.test"})
	require.NoError(t, s.Save(TokenResponse{IDToken: token, ExpiresIn: 3600}))

	id := s.Identity()
	require.NotNil(t, id)
	require.Equal(t, "user-1", id.Sub)
	require.Equal(t, "u1@example.test", id.Email)
}

func TestIdentitySwallowsMalformedToken(t *testing.T) {
	t.Parallel()

	s, _ := newTestSessionStore(time.Now())
	require.NoError(t, s.Save(TokenResponse{IDToken: "only-one-segment", ExpiresIn: 3600}))
	require.Nil(t, s.Identity())

	require.NoError(t, s.Save(TokenResponse{IDToken: "a.!!!not-base64!!!.c", ExpiresIn: 3600}))
	require.Nil(t, s.Identity())
}
