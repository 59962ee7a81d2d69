package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textlinq/smsbridge-admin/internal/authstore"
	"github.com/textlinq/smsbridge-admin/internal/models"
)

func newTestClient(t *testing.T, baseURL string, tokens authstore.Store) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, Tokens: tokens})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Tokens: authstore.NewMemoryStore()})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, 200, map[string]any{"ok": true})
	}))
	defer srv.Close()

	tokens := authstore.NewMemoryStore()
	require.NoError(t, tokens.Save(models.TokenPair{Access: "tok-a", Refresh: "tok-r"}))

	c := newTestClient(t, srv.URL, tokens)
	_, err := c.Get(context.Background(), "/core/wallets-list/", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-a", gotAuth)
}

func TestExpiredTokenRefreshedAndReplayed(t *testing.T) {
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/core/auth/refresh/":
			refreshCalls.Add(1)
			var req models.RefreshRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Refresh != "tok-r" {
				writeJSON(w, 401, map[string]string{"detail": "invalid refresh token"})
				return
			}
			writeJSON(w, 200, map[string]string{"access": "tok-fresh"})
		default:
			if r.Header.Get("Authorization") != "Bearer tok-fresh" {
				writeJSON(w, 401, map[string]string{"detail": "token expired"})
				return
			}
			writeJSON(w, 200, map[string]any{"count": 1})
		}
	}))
	defer srv.Close()

	tokens := authstore.NewMemoryStore()
	require.NoError(t, tokens.Save(models.TokenPair{Access: "tok-stale", Refresh: "tok-r"}))

	c := newTestClient(t, srv.URL, tokens)
	payload, err := c.Get(context.Background(), "/core/wallets-list/", nil)
	require.NoError(t, err, "the caller must never see the intermediate 401")
	assert.JSONEq(t, `{"count":1}`, string(payload))
	assert.Equal(t, int32(1), refreshCalls.Load())

	pair, ok := tokens.Tokens()
	require.True(t, ok)
	assert.Equal(t, "tok-fresh", pair.Access)
	assert.Equal(t, "tok-r", pair.Refresh, "refresh token is not rotated")
}

func TestFailedRefreshClearsSessionAndSurfacesOriginalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/core/auth/refresh/" {
			writeJSON(w, 401, map[string]string{"detail": "token revoked"})
			return
		}
		writeJSON(w, 403, map[string]string{"detail": "forbidden"})
	}))
	defer srv.Close()

	tokens := authstore.NewMemoryStore()
	require.NoError(t, tokens.Save(models.TokenPair{Access: "tok-a", Refresh: "tok-r"}))

	c := newTestClient(t, srv.URL, tokens)
	_, err := c.Get(context.Background(), "/core/wallets-list/", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode, "the original error surfaces, not the refresh failure")
	assert.Equal(t, "forbidden", apiErr.Message)

	assert.False(t, authstore.Authenticated(tokens), "dead session must be cleared")
}

func TestConcurrentRefreshesCoalesce(t *testing.T) {
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/core/auth/refresh/", r.URL.Path)
		refreshCalls.Add(1)
		time.Sleep(100 * time.Millisecond)
		writeJSON(w, 200, map[string]string{"access": "tok-fresh"})
	}))
	defer srv.Close()

	tokens := authstore.NewMemoryStore()
	require.NoError(t, tokens.Save(models.TokenPair{Access: "tok-stale", Refresh: "tok-r"}))
	c := newTestClient(t, srv.URL, tokens)

	const n = 10
	var ready, wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]*APIError, n)
	ready.Add(n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			ready.Done()
			<-start
			errs[i] = c.refresh(context.Background())
		}(i)
	}
	ready.Wait()
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), refreshCalls.Load(), "concurrent victims must share one refresh")
	for _, err := range errs {
		assert.Nil(t, err)
	}
	pair, _ := tokens.Tokens()
	assert.Equal(t, "tok-fresh", pair.Access)
}

func TestAuthPathsAreNotRetried(t *testing.T) {
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/core/auth/refresh/" {
			refreshCalls.Add(1)
		}
		writeJSON(w, 401, map[string]string{"detail": "invalid credentials"})
	}))
	defer srv.Close()

	tokens := authstore.NewMemoryStore()
	c := newTestClient(t, srv.URL, tokens)

	err := c.Login(context.Background(), "a@b.c", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, int32(0), refreshCalls.Load(), "a 401 from login must not trigger a refresh")
}

func TestLoginPersistsTokenPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/core/login/", r.URL.Path)
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "ops@example.com", req.Email)
		writeJSON(w, 200, map[string]string{"access": "tok-a", "refresh": "tok-r"})
	}))
	defer srv.Close()

	tokens := authstore.NewMemoryStore()
	c := newTestClient(t, srv.URL, tokens)
	require.NoError(t, c.Login(context.Background(), "ops@example.com", "secret"))

	pair, ok := tokens.Tokens()
	require.True(t, ok)
	assert.Equal(t, "tok-a", pair.Access)
	assert.Equal(t, "tok-r", pair.Refresh)
}

func TestLogoutClearsTokensEvenWhenRevokeFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, map[string]string{"detail": "revocation backend down"})
	}))
	defer srv.Close()

	tokens := authstore.NewMemoryStore()
	require.NoError(t, tokens.Save(models.TokenPair{Access: "a", Refresh: "r"}))

	c := newTestClient(t, srv.URL, tokens)
	require.NoError(t, c.Logout(context.Background()))
	assert.False(t, authstore.Authenticated(tokens))
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail key", 404, `{"detail":"mapping not found"}`, "mapping not found"},
		{"message key", 400, `{"message":"bad input"}`, "bad input"},
		{"error key", 422, `{"error":"unprocessable"}`, "unprocessable"},
		{"non-json body", 502, `upstream exploded`, "request failed with status 502"},
		{"empty body", 500, ``, "request failed with status 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tokens := authstore.NewMemoryStore()
			c := newTestClient(t, srv.URL, tokens)
			_, err := c.Get(context.Background(), "/core/login/", nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestNetworkErrorHasZeroStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	tokens := authstore.NewMemoryStore()
	c := newTestClient(t, srv.URL, tokens)
	_, err := c.Get(context.Background(), "/core/wallets-list/", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.True(t, apiErr.IsNetwork())
	assert.False(t, apiErr.IsAuth())
}
