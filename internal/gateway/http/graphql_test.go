package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/upbanklab/upgate/internal/gateway/domain"
	"github.com/upbanklab/upgate/internal/gateway/resolver"
	"github.com/upbanklab/upgate/internal/gateway/store"
	"github.com/upbanklab/upgate/internal/gateway/upstream"
	"github.com/upbanklab/upgate/pkg/jwtx"
)

var testSecret = []byte("router-test-signing-secret")

type memSecrets struct {
	records map[string]domain.Secret
}

func (m *memSecrets) Get(_ context.Context, pk, sk string) (domain.Secret, error) {
	secret, ok := m.records[pk+"|"+sk]
	if !ok {
		return domain.Secret{}, store.ErrNotFound
	}
	return secret, nil
}

func (m *memSecrets) Put(_ context.Context, secret domain.Secret) error {
	m.records[secret.PK+"|"+secret.SK] = secret
	return nil
}

type memStore struct {
	secrets *memSecrets
	pingErr error
}

func (m *memStore) Secrets() store.Secrets       { return m.secrets }
func (m *memStore) ApplyMigrations() error       { return nil }
func (m *memStore) Ping(_ context.Context) error { return m.pingErr }
func (m *memStore) Close() error                 { return nil }

type stubUpstream struct {
	result upstream.Result
}

func (s *stubUpstream) Get(_ context.Context, _, _ string) (upstream.Result, error) {
	return s.result, nil
}

func newTestRouter(t *testing.T, st *memStore, up upstream.Getter) *Router {
	t.Helper()

	verifier := jwtx.NewVerifierHS256(testSecret, "")
	logger := slog.New(slog.DiscardHandler)

	r := NewRouter(verifier, "test", st, nil, logger)
	r.Resolvers = resolver.New(st.secrets, up, nil)
	r.ApplyRoutes()
	return r
}

func mintToken(t *testing.T, sub, email string) string {
	t.Helper()

	signed, err := jwtx.SignHS256(testSecret, &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
	})
	require.NoError(t, err)
	return signed
}

func postQuery(t *testing.T, r *Router, token, query string, variables map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(queryRequest{Query: query, Variables: variables})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) queryResponse {
	t.Helper()
	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGraphQLRequiresAuth(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})
	rec := postQuery(t, r, "", `query Me { me { sub email } }`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Unauthorized")
}

func TestGraphQLMe(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})
	rec := postQuery(t, r, mintToken(t, "user-1", "u1@example.test"), `query Me { me { sub email } }`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Empty(t, resp.Errors)
	me := resp.Data["me"].(map[string]any)
	require.Equal(t, "user-1", me["sub"])
	require.Equal(t, "u1@example.test", me["email"])
}

func TestGraphQLRegistrationLifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})
	token := mintToken(t, "user-1", "u1@example.test")

	// Not registered yet.
	resp := decodeResponse(t, postQuery(t, r, token, `query GetTokenRegistered { getTokenRegistered }`, nil))
	require.Empty(t, resp.Errors)
	require.Equal(t, false, resp.Data["getTokenRegistered"])

	// Register.
	resp = decodeResponse(t, postQuery(t, r, token,
		`mutation RegisterToken($token: String!) { registerToken(token: $token) }`,
		map[string]any{"token": "up:yeah:abc1234567"}))
	require.Empty(t, resp.Errors)
	registered := resp.Data["registerToken"].(map[string]any)
	require.Equal(t, true, registered["registered"])

	// Now registered.
	resp = decodeResponse(t, postQuery(t, r, token, `query GetTokenRegistered { getTokenRegistered }`, nil))
	require.Empty(t, resp.Errors)
	require.Equal(t, true, resp.Data["getTokenRegistered"])
}

func TestGraphQLRegisterTokenTooShort(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})
	resp := decodeResponse(t, postQuery(t, r, mintToken(t, "user-1", ""),
		`mutation RegisterToken($token: String!) { registerToken(token: $token) }`,
		map[string]any{"token": "short"}))

	require.Len(t, resp.Errors, 1)
	require.Equal(t, "BadRequest", resp.Errors[0].ErrorType)
	require.Nil(t, resp.Data["registerToken"])
}

func TestGraphQLAccountsTokenNotRegistered(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})
	resp := decodeResponse(t, postQuery(t, r, mintToken(t, "user-1", ""),
		`query ListAccounts { accounts { id displayName } }`, nil))

	require.Len(t, resp.Errors, 1)
	require.Equal(t, "TokenNotRegistered", resp.Errors[0].ErrorType)
	require.Nil(t, resp.Data["accounts"])
}

func TestGraphQLAccountsSuccess(t *testing.T) {
	t.Parallel()

	secrets := &memSecrets{records: map[string]domain.Secret{}}
	secrets.records[domain.UserPK("user-1")+"|"+domain.SecretSKUpBank] = domain.Secret{
		PK: domain.UserPK("user-1"), SK: domain.SecretSKUpBank,
		Token: "up:yeah:abc1234567", UpdatedAt: time.Now(),
	}
	up := &stubUpstream{result: upstream.Result{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"data":[{"id":"acc-1","attributes":{"displayName":"Spending"}}]}`),
	}}

	r := newTestRouter(t, &memStore{secrets: secrets}, up)
	resp := decodeResponse(t, postQuery(t, r, mintToken(t, "user-1", ""),
		`query ListAccounts { accounts { id displayName } }`, nil))

	require.Empty(t, resp.Errors)
	accounts := resp.Data["accounts"].([]any)
	require.Len(t, accounts, 1)
	require.Equal(t, "acc-1", accounts[0].(map[string]any)["id"])
}

func TestGraphQLAccountByIDDispatch(t *testing.T) {
	t.Parallel()

	secrets := &memSecrets{records: map[string]domain.Secret{}}
	secrets.records[domain.UserPK("user-1")+"|"+domain.SecretSKUpBank] = domain.Secret{
		PK: domain.UserPK("user-1"), SK: domain.SecretSKUpBank,
		Token: "up:yeah:abc1234567", UpdatedAt: time.Now(),
	}
	up := &stubUpstream{result: upstream.Result{StatusCode: http.StatusNotFound}}

	r := newTestRouter(t, &memStore{secrets: secrets}, up)
	resp := decodeResponse(t, postQuery(t, r, mintToken(t, "user-1", ""),
		`query AccountByID($id: String!) { account(id: $id) { id } }`,
		map[string]any{"id": "missing"}))

	require.Empty(t, resp.Errors)
	require.Contains(t, resp.Data, "account")
	require.Nil(t, resp.Data["account"])
}

func TestGraphQLCombinedStatusAndMe(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})
	resp := decodeResponse(t, postQuery(t, r, mintToken(t, "user-1", "u1@example.test"),
		`query StatusAndMe { getTokenRegistered me { sub email } }`, nil))

	require.Empty(t, resp.Errors)
	require.Equal(t, false, resp.Data["getTokenRegistered"])
	require.Equal(t, "user-1", resp.Data["me"].(map[string]any)["sub"])
}

func TestGraphQLUnknownOperation(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})
	rec := postQuery(t, r, mintToken(t, "user-1", ""), `query Nope { somethingElse }`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphQLInvalidBody(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", mintToken(t, "user-1", ""))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("livez", func(t *testing.T) {
		r := newTestRouter(t, &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}}, &stubUpstream{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("readyz degraded", func(t *testing.T) {
		st := &memStore{secrets: &memSecrets{records: map[string]domain.Secret{}}, pingErr: context.DeadlineExceeded}
		r := newTestRouter(t, st, &stubUpstream{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), "degraded")
	})
}
