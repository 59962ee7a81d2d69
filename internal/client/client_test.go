package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textlinq/smsbridge-admin/internal/api"
	"github.com/textlinq/smsbridge-admin/internal/authstore"
	"github.com/textlinq/smsbridge-admin/internal/config"
	"github.com/textlinq/smsbridge-admin/internal/models"
	"github.com/textlinq/smsbridge-admin/internal/stub"
	"github.com/textlinq/smsbridge-admin/internal/transport"
)

// newSandboxClient wires a client to an in-process seeded sandbox. No
// listener is involved; requests go straight into the fiber app.
func newSandboxClient(t *testing.T, signer *stub.Signer) (*Client, *authstore.MemoryStore) {
	t.Helper()

	mem := stub.NewMemoryStore()
	stub.Seed(mem)
	server := stub.New(stub.Config{Store: mem, Signer: signer})

	tokens := authstore.NewMemoryStore()
	c, err := New(
		&config.Config{APIBaseURL: "http://sandbox.local"},
		nil,
		Options{
			Tokens:     tokens,
			HTTPClient: &http.Client{Transport: server.Transport()},
		},
	)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, tokens
}

func login(t *testing.T, c *Client) {
	t.Helper()
	require.NoError(t, c.Login(context.Background(), stub.DemoEmail, stub.DemoPassword))
}

func TestLoginAndSessionState(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()

	assert.False(t, c.Authenticated())

	err := c.Login(ctx, stub.DemoEmail, "wrong-password")
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.False(t, c.Authenticated())

	login(t, c)
	assert.True(t, c.Authenticated())

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.Authenticated())
}

func TestUnauthenticatedRequestFails(t *testing.T) {
	c, _ := newSandboxClient(t, nil)

	_, err := c.Mappings(context.Background(), api.MappingListArgs{})
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsAuth())
}

func TestMessagePaginationFollowsServerURLs(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	// The seed writes 48 messages; at the default page size of 10 that is
	// five pages.
	page2, err := c.Messages(ctx, api.MessageListArgs{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 48, page2.Count)
	assert.Len(t, page2.Results, 10)
	require.True(t, page2.HasNext())
	require.True(t, page2.HasPrevious())

	next, ok := api.PageFromURL(*page2.Next)
	require.True(t, ok)
	assert.Equal(t, 3, next)

	prev, ok := api.PageFromURL(*page2.Previous)
	require.True(t, ok)
	assert.Equal(t, 1, prev)

	last, err := c.Messages(ctx, api.MessageListArgs{Page: 5})
	require.NoError(t, err)
	assert.Len(t, last.Results, 8)
	assert.False(t, last.HasNext())
}

func TestMessageFilterOmissionSemantics(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	all, err := c.Messages(ctx, api.MessageListArgs{Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, 48, all.Count, `"all" must not constrain the result`)

	failed, err := c.Messages(ctx, api.MessageListArgs{Status: models.MessageFailed})
	require.NoError(t, err)
	require.NotZero(t, failed.Count)
	assert.Less(t, failed.Count, all.Count)
	for _, m := range failed.Results {
		assert.Equal(t, models.MessageFailed, m.Status)
	}
}

func TestCreateMappingInvalidatesMappingLists(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	before, err := c.Mappings(ctx, api.MappingListArgs{})
	require.NoError(t, err)
	require.Equal(t, 2, before.Count)

	// Find the one unmapped pair in the seed data.
	ghl, err := c.GHLAccounts(ctx, api.GHLAccountListArgs{})
	require.NoError(t, err)
	transmit, err := c.TransmitAccounts(ctx, api.TransmitAccountListArgs{})
	require.NoError(t, err)

	mapped := make(map[string]bool)
	for _, m := range before.Results {
		mapped[m.GHLAccount] = true
	}
	var freeGHL, freeTransmit string
	for _, acc := range ghl.Results {
		if !mapped[acc.ID] {
			freeGHL = acc.ID
		}
	}
	usedTransmit := make(map[string]bool)
	for _, m := range before.Results {
		usedTransmit[m.TransmitAccount] = true
	}
	for _, acc := range transmit.Results {
		if !usedTransmit[acc.ID] {
			freeTransmit = acc.ID
		}
	}
	require.NotEmpty(t, freeGHL)
	require.NotEmpty(t, freeTransmit)

	created, err := c.CreateMapping(ctx, freeGHL, freeTransmit)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	// The cached list was invalidated by the mutation, so this read refetches
	// and sees the new pair without any manual cache work.
	after, err := c.Mappings(ctx, api.MappingListArgs{})
	require.NoError(t, err)
	assert.Equal(t, 3, after.Count)

	require.NoError(t, c.DeleteMapping(ctx, created.ID))
	final, err := c.Mappings(ctx, api.MappingListArgs{})
	require.NoError(t, err)
	assert.Equal(t, 2, final.Count)
}

func TestDuplicateMappingRejected(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	mappings, err := c.Mappings(ctx, api.MappingListArgs{})
	require.NoError(t, err)
	require.NotEmpty(t, mappings.Results)
	existing := mappings.Results[0]

	_, err = c.CreateMapping(ctx, existing.GHLAccount, existing.TransmitAccount)
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "already mapped")
}

func TestAccountUpdateInvalidatesListsContainingIt(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	list, err := c.GHLAccounts(ctx, api.GHLAccountListArgs{})
	require.NoError(t, err)
	require.NotEmpty(t, list.Results)
	target := list.Results[0]

	_, err = c.UpdateGHLAccount(ctx, target.ID, models.GHLAccountInput{Name: "Renamed Clinic"})
	require.NoError(t, err)

	// The list result carries a per-item tag for each account it contains,
	// so updating the account made the cached list stale.
	fresh, err := c.GHLAccounts(ctx, api.GHLAccountListArgs{})
	require.NoError(t, err)
	var got string
	for _, acc := range fresh.Results {
		if acc.ID == target.ID {
			got = acc.Name
		}
	}
	assert.Equal(t, "Renamed Clinic", got)
}

func TestDeleteAccountCascadesToMappings(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	mappings, err := c.Mappings(ctx, api.MappingListArgs{})
	require.NoError(t, err)
	require.Equal(t, 2, mappings.Count)
	victim := mappings.Results[0].GHLAccount

	require.NoError(t, c.DeleteGHLAccount(ctx, victim))

	// The sandbox cascades the mapping server-side and the mutation
	// invalidates mapping tags, so the cached mapping list refetches.
	after, err := c.Mappings(ctx, api.MappingListArgs{})
	require.NoError(t, err)
	assert.Equal(t, 1, after.Count)
}

func TestExpiredAccessTokenIsRefreshedSilently(t *testing.T) {
	signer := stub.NewSigner("test-secret", 50*time.Millisecond, time.Hour)
	c, tokens := newSandboxClient(t, signer)
	ctx := context.Background()
	login(t, c)

	staleAccess, _ := tokens.Tokens()
	time.Sleep(80 * time.Millisecond) // let the access token expire

	summary, err := c.WalletSummary(ctx)
	require.NoError(t, err, "expired token must be refreshed and the call replayed")
	assert.Equal(t, 3, summary.WalletCount)

	pair, ok := tokens.Tokens()
	require.True(t, ok)
	_, err = signer.Parse(pair.Access, "access")
	assert.NoError(t, err, "the stored access token is a freshly minted valid one")
	assert.Equal(t, staleAccess.Refresh, pair.Refresh, "refresh token is not rotated")
}

func TestDeadSessionClearsTokens(t *testing.T) {
	c, tokens := newSandboxClient(t, nil)
	ctx := context.Background()

	require.NoError(t, tokens.Save(models.TokenPair{Access: "garbage", Refresh: "garbage"}))
	require.True(t, c.Authenticated())

	_, err := c.Mappings(ctx, api.MappingListArgs{})
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsAuth())

	assert.False(t, c.Authenticated(), "an unrecoverable session must be cleared")
}

func TestWatchMappingsSignalsOnMutation(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	args := api.MappingListArgs{}
	sub := c.WatchMappings(args)
	defer sub.Cancel()

	before, err := c.Mappings(ctx, args)
	require.NoError(t, err)
	victim := before.Results[0]

	require.NoError(t, c.DeleteMapping(ctx, victim.ID))

	select {
	case <-sub.C:
	case <-time.After(time.Second):
		t.Fatal("subscription did not signal after mutation")
	}

	after, err := c.Mappings(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, before.Count-1, after.Count)
}

func TestDashboardReflectsAccountFilter(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	all, err := c.Dashboard(ctx, api.DashboardArgs{Days: 30})
	require.NoError(t, err)
	assert.Equal(t, 48, all.TotalMessages)
	assert.Equal(t, 2, all.ActiveMappings)
	assert.NotEmpty(t, all.Days)

	ghl, err := c.GHLAccounts(ctx, api.GHLAccountListArgs{})
	require.NoError(t, err)
	one, err := c.Dashboard(ctx, api.DashboardArgs{Days: 30, GHLAccount: ghl.Results[0].ID})
	require.NoError(t, err)
	assert.Less(t, one.TotalMessages, all.TotalMessages)
	assert.NotZero(t, one.TotalMessages)
}

func TestWalletAndTransactionReads(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	wallets, err := c.Wallets(ctx, api.WalletListArgs{})
	require.NoError(t, err)
	require.Equal(t, 3, wallets.Count)

	summary, err := c.WalletSummary(ctx)
	require.NoError(t, err)
	var total float64
	for _, w := range wallets.Results {
		total += w.Balance
	}
	assert.InDelta(t, total, summary.TotalBalance, 0.001)

	txs, err := c.Transactions(ctx, api.TransactionListArgs{
		Wallet: wallets.Results[0].ID,
		Type:   models.TransactionCredit,
	})
	require.NoError(t, err)
	require.NotZero(t, txs.Count)
	for _, tx := range txs.Results {
		assert.Equal(t, wallets.Results[0].ID, tx.Wallet)
		assert.Equal(t, models.TransactionCredit, tx.Type)
	}
}

func TestNumberPriceFilter(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	all, err := c.Numbers(ctx, api.NumberListArgs{})
	require.NoError(t, err)
	require.Equal(t, 5, all.Count)

	min := 25.0
	expensive, err := c.Numbers(ctx, api.NumberListArgs{MinPrice: &min})
	require.NoError(t, err)
	require.NotZero(t, expensive.Count)
	assert.Less(t, expensive.Count, all.Count)
	for _, n := range expensive.Results {
		assert.GreaterOrEqual(t, n.Price, min)
	}
}

func TestLogoutDropsCachedData(t *testing.T) {
	c, _ := newSandboxClient(t, nil)
	ctx := context.Background()
	login(t, c)

	_, err := c.Mappings(ctx, api.MappingListArgs{})
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))

	// The cache entry was invalidated on logout, so the next read goes back
	// to the backend and fails without a session.
	_, err = c.Mappings(ctx, api.MappingListArgs{})
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsAuth())
}
