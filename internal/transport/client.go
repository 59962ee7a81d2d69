package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/textlinq/smsbridge-admin/internal/authstore"
	"github.com/textlinq/smsbridge-admin/internal/metrics"
	"github.com/textlinq/smsbridge-admin/internal/models"
)

// Auth endpoints. These are exempt from the refresh-and-retry loop so a
// failing refresh can never recurse.
const (
	loginPath   = "/core/login/"
	refreshPath = "/core/auth/refresh/"
	logoutPath  = "/core/logout/"
)

// Config configures the transport.
type Config struct {
	BaseURL string
	Tokens  authstore.Store
	// HTTPClient overrides the underlying client; used by tests and demo
	// mode to route requests into the sandbox app without a listener.
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit caps requests per second; 0 disables the limiter.
	RateLimit float64
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Client performs authenticated requests against the admin API. Every
// failure comes back as *APIError; no other error type crosses this
// boundary and nothing is ever panicked through it.
type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  authstore.Store
	limiter *rate.Limiter
	log     *zap.Logger
	metrics *metrics.Metrics

	// refreshMu guards refreshing; concurrent 401s coalesce onto one
	// in-flight refresh instead of each issuing their own.
	refreshMu  sync.Mutex
	refreshing *refreshFlight
}

type refreshFlight struct {
	done chan struct{}
	err  *APIError
}

// New creates a transport client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient.Timeout = timeout
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		base:    base,
		http:    httpClient,
		tokens:  cfg.Tokens,
		limiter: limiter,
		log:     log,
		metrics: cfg.Metrics,
	}, nil
}

// Get issues an authenticated GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Do issues an authenticated request. On 401/403 it performs exactly one
// coalesced token refresh and replays the original request once; the caller
// never observes the intermediate auth failure.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	payload, status, apiErr := c.doOnce(ctx, method, path, query, body, true)
	if apiErr == nil {
		return payload, nil
	}

	if (status == 401 || status == 403) && !isAuthPath(path) {
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			// Refresh failed: session is gone, surface the original error.
			return nil, apiErr
		}
		payload, _, retryErr := c.doOnce(ctx, method, path, query, body, true)
		if retryErr != nil {
			return nil, retryErr
		}
		return payload, nil
	}
	return nil, apiErr
}

// Login exchanges credentials for a token pair and persists it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload, _, apiErr := c.doOnce(ctx, http.MethodPost, loginPath, nil, models.LoginRequest{
		Email:    email,
		Password: password,
	}, false)
	if apiErr != nil {
		return apiErr
	}
	var pair models.TokenPair
	if err := json.Unmarshal(payload, &pair); err != nil {
		return networkError(fmt.Errorf("decode login response: %w", err))
	}
	if err := c.tokens.Save(pair); err != nil {
		return networkError(err)
	}
	c.log.Info("logged in", zap.String("email", email))
	return nil
}

// Logout revokes the refresh token and clears stored credentials. The
// local pair is cleared even if revocation fails.
func (c *Client) Logout(ctx context.Context) error {
	pair, ok := c.tokens.Tokens()
	if ok && pair.Refresh != "" {
		_, _, apiErr := c.doOnce(ctx, http.MethodPost, logoutPath, nil, models.LogoutRequest{
			Refresh: pair.Refresh,
		}, true)
		if apiErr != nil {
			c.log.Warn("logout call failed, clearing local credentials anyway",
				zap.Int("status", apiErr.StatusCode))
		}
	}
	if err := c.tokens.Clear(); err != nil {
		return networkError(err)
	}
	return nil
}

// refresh renews the access token using the stored refresh token. All
// concurrent callers share one in-flight attempt; on failure the stored
// pair is cleared.
func (c *Client) refresh(ctx context.Context) *APIError {
	c.refreshMu.Lock()
	if c.refreshing != nil {
		flight := c.refreshing
		c.refreshMu.Unlock()
		select {
		case <-flight.done:
			return flight.err
		case <-ctx.Done():
			return networkError(ctx.Err())
		}
	}
	flight := &refreshFlight{done: make(chan struct{})}
	c.refreshing = flight
	c.refreshMu.Unlock()

	flight.err = c.doRefresh(ctx)

	c.refreshMu.Lock()
	c.refreshing = nil
	c.refreshMu.Unlock()
	close(flight.done)
	return flight.err
}

func (c *Client) doRefresh(ctx context.Context) *APIError {
	pair, ok := c.tokens.Tokens()
	if !ok || pair.Refresh == "" {
		return &APIError{StatusCode: 401, Message: "not authenticated"}
	}

	payload, _, apiErr := c.doOnce(ctx, http.MethodPost, refreshPath, nil, models.RefreshRequest{
		Refresh: pair.Refresh,
	}, false)
	if apiErr != nil {
		c.metrics.TokenRefresh("failure")
		c.log.Warn("token refresh failed, clearing session", zap.Int("status", apiErr.StatusCode))
		_ = c.tokens.Clear()
		return apiErr
	}

	var resp models.RefreshResponse
	if err := json.Unmarshal(payload, &resp); err != nil || resp.Access == "" {
		c.metrics.TokenRefresh("failure")
		_ = c.tokens.Clear()
		return networkError(fmt.Errorf("invalid refresh response"))
	}

	pair.Access = resp.Access
	if err := c.tokens.Save(pair); err != nil {
		c.metrics.TokenRefresh("failure")
		return networkError(err)
	}
	c.metrics.TokenRefresh("success")
	c.log.Debug("access token refreshed")
	return nil
}

// doOnce performs a single request with no retry logic.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body any, withAuth bool) (json.RawMessage, int, *APIError) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, networkError(err)
		}
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, networkError(fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, 0, networkError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		if pair, ok := c.tokens.Tokens(); ok && pair.Access != "" {
			req.Header.Set("Authorization", "Bearer "+pair.Access)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.HTTPRequest(method, 0)
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, 0, networkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.HTTPRequest(method, 0)
		return nil, 0, networkError(err)
	}

	c.metrics.HTTPRequest(method, resp.StatusCode)
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, statusError(resp.StatusCode, payload)
	}
	if len(payload) == 0 {
		return nil, resp.StatusCode, nil
	}
	return payload, resp.StatusCode, nil
}

func isAuthPath(path string) bool {
	return path == loginPath || path == refreshPath || path == logoutPath
}
