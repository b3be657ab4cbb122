package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSendsBearerAndPreservesStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/accounts", r.URL.Path)
		require.Equal(t, "Bearer up:yeah:abc1234567", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, srv.Client())
	res, err := c.Get(context.Background(), "/api/v1/accounts", "up:yeah:abc1234567")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"data":[]}`, string(res.Body))
}

func TestGetDoesNotTreatUpstreamFailureAsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Forbidden"}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, srv.Client())
	res, err := c.Get(context.Background(), "/api/v1/accounts", "bad-token")
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	require.Contains(t, string(res.Body), "Forbidden")
}

func TestGetTransportFailure(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:1", nil)
	_, err := c.Get(context.Background(), "/api/v1/accounts", "token")
	require.Error(t, err)
}
