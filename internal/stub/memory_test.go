package stub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	Seed(m)
	return m
}

func TestAuthenticate(t *testing.T) {
	m := seededStore(t)

	user, err := m.Authenticate(DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, DemoEmail, user.Email)

	_, err = m.Authenticate(DemoEmail, "nope")
	assert.Error(t, err)

	_, err = m.Authenticate("ghost@example.com", DemoPassword)
	assert.Error(t, err)
}

func TestRevokedRefreshTokens(t *testing.T) {
	m := NewMemoryStore()
	assert.False(t, m.IsRefreshRevoked("tok"))
	require.NoError(t, m.RevokeRefresh("tok"))
	assert.True(t, m.IsRefreshRevoked("tok"))
}

func TestCreateMappingValidation(t *testing.T) {
	m := seededStore(t)

	ghl, err := m.ListGHLAccounts("")
	require.NoError(t, err)
	transmit, err := m.ListTransmitAccounts("")
	require.NoError(t, err)

	_, err = m.CreateMapping("missing", transmit[0].ID)
	assert.ErrorContains(t, err, "ghl account not found")

	_, err = m.CreateMapping(ghl[0].ID, "missing")
	assert.ErrorContains(t, err, "transmit account not found")

	// ghl[0] is mapped by the seed already; one mapping per HighLevel account.
	_, err = m.CreateMapping(ghl[0].ID, transmit[2].ID)
	assert.ErrorContains(t, err, "already mapped")

	mapping, err := m.CreateMapping(ghl[2].ID, transmit[2].ID)
	require.NoError(t, err)
	assert.Equal(t, ghl[2].Name, mapping.GHLAccountName)
	assert.Equal(t, transmit[2].Name, mapping.TransmitAccountName)
}

func TestDeleteAccountCascadesMappings(t *testing.T) {
	m := seededStore(t)

	before, err := m.ListMappings()
	require.NoError(t, err)
	require.Len(t, before, 2)

	require.NoError(t, m.DeleteGHLAccount(before[0].GHLAccount))
	after, err := m.ListMappings()
	require.NoError(t, err)
	assert.Len(t, after, 1)

	require.NoError(t, m.DeleteTransmitAccount(after[0].TransmitAccount))
	final, err := m.ListMappings()
	require.NoError(t, err)
	assert.Empty(t, final)
}

func TestMessageFiltersTreatEmptyAsUnset(t *testing.T) {
	m := seededStore(t)

	all, err := m.ListMessages(MessageFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 48)

	failed, err := m.ListMessages(MessageFilter{Status: models.MessageFailed})
	require.NoError(t, err)
	require.NotEmpty(t, failed)
	assert.Less(t, len(failed), len(all))
	for _, msg := range failed {
		assert.Equal(t, models.MessageFailed, msg.Status)
	}

	inbound, err := m.ListMessages(MessageFilter{Direction: models.DirectionInbound})
	require.NoError(t, err)
	for _, msg := range inbound {
		assert.Equal(t, models.DirectionInbound, msg.Direction)
	}
}

func TestMessageOrdering(t *testing.T) {
	m := seededStore(t)

	newest, err := m.ListMessages(MessageFilter{})
	require.NoError(t, err)
	for i := 1; i < len(newest); i++ {
		assert.False(t, newest[i-1].SentAt.Before(newest[i].SentAt), "default order is newest first")
	}

	oldest, err := m.ListMessages(MessageFilter{Ordering: "sent_at"})
	require.NoError(t, err)
	for i := 1; i < len(oldest); i++ {
		assert.False(t, oldest[i-1].SentAt.After(oldest[i].SentAt))
	}
}

func TestMessageSearchMatchesBody(t *testing.T) {
	m := seededStore(t)

	hits, err := m.ListMessages(MessageFilter{Search: "reminder #1"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, msg := range hits {
		assert.Contains(t, msg.Body, "reminder #1")
	}
}

func TestNumberFilters(t *testing.T) {
	m := seededStore(t)

	gold, err := m.ListNumbers(NumberFilter{Label: "gold"})
	require.NoError(t, err)
	assert.Len(t, gold, 2)

	min, max := 20.0, 35.0
	banded, err := m.ListNumbers(NumberFilter{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	require.NotEmpty(t, banded)
	for _, n := range banded {
		assert.GreaterOrEqual(t, n.Price, min)
		assert.LessOrEqual(t, n.Price, max)
	}

	byPrice, err := m.ListNumbers(NumberFilter{SortBy: "price"})
	require.NoError(t, err)
	for i := 1; i < len(byPrice); i++ {
		assert.LessOrEqual(t, byPrice[i-1].Price, byPrice[i].Price)
	}
}

func TestWalletSummaryMatchesWallets(t *testing.T) {
	m := seededStore(t)

	wallets, err := m.ListWallets(WalletFilter{})
	require.NoError(t, err)
	summary, err := m.WalletSummary()
	require.NoError(t, err)

	var total float64
	for _, w := range wallets {
		total += w.Balance
	}
	assert.InDelta(t, total, summary.TotalBalance, 0.001)
	assert.Equal(t, len(wallets), summary.WalletCount)
}

func TestTransactionFilters(t *testing.T) {
	m := seededStore(t)

	wallets, err := m.ListWallets(WalletFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, wallets)

	credits, err := m.ListTransactions(TransactionFilter{
		Wallet: wallets[0].ID,
		Type:   models.TransactionCredit,
	})
	require.NoError(t, err)
	require.NotEmpty(t, credits)
	for _, tx := range credits {
		assert.Equal(t, wallets[0].ID, tx.Wallet)
		assert.Equal(t, models.TransactionCredit, tx.Type)
	}

	recent, err := m.ListTransactions(TransactionFilter{
		DateFrom: time.Now().Add(-12 * time.Hour),
	})
	require.NoError(t, err)
	for _, tx := range recent {
		assert.True(t, tx.CreatedAt.After(time.Now().Add(-12*time.Hour)))
	}
}

func TestDashboardSummaryCounts(t *testing.T) {
	m := seededStore(t)

	summary, err := m.DashboardSummary(30, "")
	require.NoError(t, err)
	assert.Equal(t, 48, summary.TotalMessages)
	assert.Equal(t, summary.TotalMessages, summary.Inbound+summary.Outbound)
	assert.Equal(t, 2, summary.ActiveMappings)

	var daily int
	for i, day := range summary.Days {
		daily += day.Sent
		if i > 0 {
			assert.Less(t, summary.Days[i-1].Date, day.Date, "series is date ascending")
		}
	}
	assert.Equal(t, summary.TotalMessages, daily)
}

func TestAPIKeyIsMasked(t *testing.T) {
	m := NewMemoryStore()
	acc, err := m.CreateTransmitAccount(models.TransmitAccountInput{
		Name:   "Masked",
		APIKey: "sk-live-abcdef1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "1234", acc.APIKeyEnd, "only the key tail is ever stored or returned")
}
