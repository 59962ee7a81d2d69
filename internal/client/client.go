// Package client assembles the transport, cache and endpoint declarations
// into the object the CLI (or any other consumer) talks to.
package client

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/textlinq/smsbridge-admin/internal/api"
	"github.com/textlinq/smsbridge-admin/internal/authstore"
	"github.com/textlinq/smsbridge-admin/internal/cache"
	"github.com/textlinq/smsbridge-admin/internal/config"
	"github.com/textlinq/smsbridge-admin/internal/metrics"
	"github.com/textlinq/smsbridge-admin/internal/models"
	"github.com/textlinq/smsbridge-admin/internal/transport"
)

// Client is the admin API client: one transport, one cache, typed methods
// per resource.
type Client struct {
	backend *api.Backend
	cache   *cache.Store
	http    *transport.Client
	tokens  authstore.Store
	metrics *metrics.Metrics
	log     *zap.Logger
}

// Options tune construction beyond what config provides.
type Options struct {
	// Tokens overrides the file-backed store (tests, demo mode).
	Tokens authstore.Store
	// HTTPClient overrides the network client (tests, demo mode).
	HTTPClient *http.Client
	// CacheGrace overrides the eviction grace period.
	CacheGrace time.Duration
	Metrics    *metrics.Metrics
}

// New builds a client from config.
func New(cfg *config.Config, log *zap.Logger, opts Options) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = authstore.NewFileStore(cfg.CredentialsFile)
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	httpClient, err := transport.New(transport.Config{
		BaseURL:    cfg.APIBaseURL,
		Tokens:     tokens,
		HTTPClient: opts.HTTPClient,
		Timeout:    cfg.HTTPTimeout,
		RateLimit:  cfg.RateLimit,
		Logger:     log.Named("transport"),
		Metrics:    m,
	})
	if err != nil {
		return nil, err
	}

	store := cache.New(cache.Options{
		Grace:   opts.CacheGrace,
		Logger:  log.Named("cache"),
		Metrics: m,
	})

	return &Client{
		backend: &api.Backend{HTTP: httpClient, Cache: store},
		cache:   store,
		http:    httpClient,
		tokens:  tokens,
		metrics: m,
		log:     log,
	}, nil
}

// Close stops the cache sweeper.
func (c *Client) Close() {
	c.cache.Close()
}

// Metrics exposes the client's Prometheus registry.
func (c *Client) Metrics() *metrics.Metrics { return c.metrics }

// Backend exposes the raw backend for endpoint-level access.
func (c *Client) Backend() *api.Backend { return c.backend }

// Authenticated reports whether a persisted token pair exists. Validity is
// established lazily: a dead session surfaces as an auth error on the
// first call and clears the pair.
func (c *Client) Authenticated() bool {
	return authstore.Authenticated(c.tokens)
}

// Login obtains and persists a token pair.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.http.Login(ctx, email, password)
}

// Logout revokes and clears the token pair, and drops all cached data.
func (c *Client) Logout(ctx context.Context) error {
	err := c.http.Logout(ctx)
	c.cache.Invalidate(
		api.TagMapping, api.TagGHLAccount, api.TagTransmitAccount,
		api.TagMessage, api.TagWallet, api.TagTransaction,
		api.TagNumber, api.TagDashboard,
	)
	return err
}

// --- Account mappings ---

func (c *Client) Mappings(ctx context.Context, args api.MappingListArgs) (models.Page[models.AccountMapping], error) {
	return api.MappingList.Use(ctx, c.backend, args)
}

func (c *Client) CreateMapping(ctx context.Context, ghlAccount, transmitAccount string) (models.AccountMapping, error) {
	return api.MappingCreate.Do(ctx, c.backend, api.MappingCreateArgs{
		GHLAccount:      ghlAccount,
		TransmitAccount: transmitAccount,
	})
}

func (c *Client) DeleteMapping(ctx context.Context, id string) error {
	_, err := api.MappingDelete.Do(ctx, c.backend, api.MappingDeleteArgs{ID: id})
	return err
}

// WatchMappings pins the mapping list for args and reports invalidations.
func (c *Client) WatchMappings(args api.MappingListArgs) *cache.Subscription {
	return api.MappingList.Subscribe(c.backend, args)
}

// --- HighLevel accounts ---

func (c *Client) GHLAccounts(ctx context.Context, args api.GHLAccountListArgs) (models.Page[models.GHLAccount], error) {
	return api.GHLAccountList.Use(ctx, c.backend, args)
}

func (c *Client) CreateGHLAccount(ctx context.Context, in models.GHLAccountInput) (models.GHLAccount, error) {
	return api.GHLAccountCreate.Do(ctx, c.backend, in)
}

func (c *Client) UpdateGHLAccount(ctx context.Context, id string, in models.GHLAccountInput) (models.GHLAccount, error) {
	return api.GHLAccountUpdate.Do(ctx, c.backend, api.GHLAccountUpdateArgs{ID: id, Input: in})
}

func (c *Client) DeleteGHLAccount(ctx context.Context, id string) error {
	_, err := api.GHLAccountDelete.Do(ctx, c.backend, api.GHLAccountDeleteArgs{ID: id})
	return err
}

// --- Transmit-SMS accounts ---

func (c *Client) TransmitAccounts(ctx context.Context, args api.TransmitAccountListArgs) (models.Page[models.TransmitAccount], error) {
	return api.TransmitAccountList.Use(ctx, c.backend, args)
}

func (c *Client) CreateTransmitAccount(ctx context.Context, in models.TransmitAccountInput) (models.TransmitAccount, error) {
	return api.TransmitAccountCreate.Do(ctx, c.backend, in)
}

func (c *Client) UpdateTransmitAccount(ctx context.Context, id string, in models.TransmitAccountInput) (models.TransmitAccount, error) {
	return api.TransmitAccountUpdate.Do(ctx, c.backend, api.TransmitAccountUpdateArgs{ID: id, Input: in})
}

func (c *Client) DeleteTransmitAccount(ctx context.Context, id string) error {
	_, err := api.TransmitAccountDelete.Do(ctx, c.backend, api.TransmitAccountDeleteArgs{ID: id})
	return err
}

// --- Messages / dashboard ---

func (c *Client) Messages(ctx context.Context, args api.MessageListArgs) (models.Page[models.Message], error) {
	return api.MessageList.Use(ctx, c.backend, args)
}

func (c *Client) Dashboard(ctx context.Context, args api.DashboardArgs) (models.DashboardSummary, error) {
	return api.Dashboard.Use(ctx, c.backend, args)
}

// WatchDashboard pins the dashboard summary for args.
func (c *Client) WatchDashboard(args api.DashboardArgs) *cache.Subscription {
	return api.Dashboard.Subscribe(c.backend, args)
}

// --- Numbers / billing ---

func (c *Client) Numbers(ctx context.Context, args api.NumberListArgs) (models.Page[models.AvailableNumber], error) {
	return api.NumberList.Use(ctx, c.backend, args)
}

func (c *Client) Wallets(ctx context.Context, args api.WalletListArgs) (models.Page[models.Wallet], error) {
	return api.WalletList.Use(ctx, c.backend, args)
}

func (c *Client) WalletSummary(ctx context.Context) (models.WalletSummary, error) {
	return api.WalletSummary.Use(ctx, c.backend, api.WalletSummaryArgs{})
}

func (c *Client) Transactions(ctx context.Context, args api.TransactionListArgs) (models.Page[models.Transaction], error) {
	return api.TransactionList.Use(ctx, c.backend, args)
}
