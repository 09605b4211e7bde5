package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/protocol"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/session", r.URL.Path)

		var req protocol.SessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req.UserID)

		json.NewEncoder(w).Encode(protocol.SessionResponse{Token: "tok123"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	token, err := c.Login(context.Background(), &protocol.SessionRequest{UserID: "u1", ProviderToken: "pt"})
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestPushSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(protocol.PushResponse{Success: true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	c.SetToken("tok123")

	resp, err := c.Push(context.Background(), &protocol.PushRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestPullSendsWatermarks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sync/pull", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("folders_last_sync"))
		assert.Equal(t, "200", r.URL.Query().Get("bookmarks_last_sync"))
		json.NewEncoder(w).Encode(protocol.PullResponse{ServerCurrentTimestamp: 300})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	resp, err := c.Pull(context.Background(), 100, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), resp.ServerCurrentTimestamp)
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.Pull(context.Background(), 0, 0)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(protocol.ErrorResponse{Error: "boom"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, common.ErrUnavailable)
	require.ErrorIs(t, err, common.ErrNetwork, "unreachable server is a network-class failure")
}
