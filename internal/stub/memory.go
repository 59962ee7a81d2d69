package stub

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// MemoryStore holds all sandbox data in memory. It is the default store
// for tests and demo mode.
type MemoryStore struct {
	users        map[string]*User
	mappings     map[string]*models.AccountMapping
	ghlAccounts  map[string]*models.GHLAccount
	transmit     map[string]*models.TransmitAccount
	messages     []models.Message
	numbers      []models.AvailableNumber
	wallets      map[string]*models.Wallet
	transactions []models.Transaction
	revoked      map[string]time.Time

	// Mutexes for thread safety
	authMu    sync.RWMutex
	mappingMu sync.RWMutex
	accountMu sync.RWMutex
	billingMu sync.RWMutex
}

// NewMemoryStore creates an empty in-memory sandbox store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*User),
		mappings:    make(map[string]*models.AccountMapping),
		ghlAccounts: make(map[string]*models.GHLAccount),
		transmit:    make(map[string]*models.TransmitAccount),
		wallets:     make(map[string]*models.Wallet),
		revoked:     make(map[string]time.Time),
	}
}

// Auth operations

func (m *MemoryStore) AddUser(email, password string) *User {
	m.authMu.Lock()
	defer m.authMu.Unlock()

	user := &User{ID: uuid.New().String(), Email: email, Password: password}
	m.users[email] = user
	return user
}

func (m *MemoryStore) Authenticate(email, password string) (*User, error) {
	m.authMu.RLock()
	defer m.authMu.RUnlock()

	user, exists := m.users[email]
	if !exists || user.Password != password {
		return nil, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

func (m *MemoryStore) RevokeRefresh(token string) error {
	m.authMu.Lock()
	defer m.authMu.Unlock()
	m.revoked[token] = time.Now()
	return nil
}

func (m *MemoryStore) IsRefreshRevoked(token string) bool {
	m.authMu.RLock()
	defer m.authMu.RUnlock()
	_, revoked := m.revoked[token]
	return revoked
}

// Mapping operations

func (m *MemoryStore) ListMappings() ([]models.AccountMapping, error) {
	m.mappingMu.RLock()
	defer m.mappingMu.RUnlock()

	out := make([]models.AccountMapping, 0, len(m.mappings))
	for _, mp := range m.mappings {
		out = append(out, *mp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateMapping(ghlAccount, transmitAccount string) (*models.AccountMapping, error) {
	m.accountMu.RLock()
	ghl, ghlOK := m.ghlAccounts[ghlAccount]
	tx, txOK := m.transmit[transmitAccount]
	m.accountMu.RUnlock()
	if !ghlOK {
		return nil, fmt.Errorf("ghl account not found")
	}
	if !txOK {
		return nil, fmt.Errorf("transmit account not found")
	}

	m.mappingMu.Lock()
	defer m.mappingMu.Unlock()

	for _, existing := range m.mappings {
		if existing.GHLAccount == ghlAccount {
			return nil, fmt.Errorf("ghl account already mapped")
		}
	}

	mapping := &models.AccountMapping{
		ID:                  uuid.New().String(),
		GHLAccount:          ghlAccount,
		TransmitAccount:     transmitAccount,
		GHLAccountName:      ghl.Name,
		TransmitAccountName: tx.Name,
		CreatedAt:           time.Now(),
	}
	m.mappings[mapping.ID] = mapping
	return mapping, nil
}

func (m *MemoryStore) DeleteMapping(id string) error {
	m.mappingMu.Lock()
	defer m.mappingMu.Unlock()

	if _, exists := m.mappings[id]; !exists {
		return fmt.Errorf("mapping not found")
	}
	delete(m.mappings, id)
	return nil
}

// HighLevel account operations

func (m *MemoryStore) ListGHLAccounts(search string) ([]models.GHLAccount, error) {
	m.accountMu.RLock()
	defer m.accountMu.RUnlock()

	out := make([]models.GHLAccount, 0, len(m.ghlAccounts))
	for _, acc := range m.ghlAccounts {
		if search != "" && !containsFold(acc.Name, search) && !containsFold(acc.Email, search) {
			continue
		}
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateGHLAccount(in models.GHLAccountInput) (*models.GHLAccount, error) {
	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	now := time.Now()
	acc := &models.GHLAccount{
		ID:         uuid.New().String(),
		Name:       in.Name,
		LocationID: in.LocationID,
		Email:      in.Email,
		Connected:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.ghlAccounts[acc.ID] = acc
	return acc, nil
}

func (m *MemoryStore) UpdateGHLAccount(id string, in models.GHLAccountInput) (*models.GHLAccount, error) {
	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	acc, exists := m.ghlAccounts[id]
	if !exists {
		return nil, fmt.Errorf("ghl account not found")
	}
	if in.Name != "" {
		acc.Name = in.Name
	}
	if in.LocationID != "" {
		acc.LocationID = in.LocationID
	}
	if in.Email != "" {
		acc.Email = in.Email
	}
	acc.UpdatedAt = time.Now()
	return acc, nil
}

func (m *MemoryStore) DeleteGHLAccount(id string) error {
	m.accountMu.Lock()
	if _, exists := m.ghlAccounts[id]; !exists {
		m.accountMu.Unlock()
		return fmt.Errorf("ghl account not found")
	}
	delete(m.ghlAccounts, id)
	m.accountMu.Unlock()

	// Cascade: drop mappings referencing the account, like the backend does.
	m.mappingMu.Lock()
	for mid, mp := range m.mappings {
		if mp.GHLAccount == id {
			delete(m.mappings, mid)
		}
	}
	m.mappingMu.Unlock()
	return nil
}

// Transmit-SMS account operations

func (m *MemoryStore) ListTransmitAccounts(search string) ([]models.TransmitAccount, error) {
	m.accountMu.RLock()
	defer m.accountMu.RUnlock()

	out := make([]models.TransmitAccount, 0, len(m.transmit))
	for _, acc := range m.transmit {
		if search != "" && !containsFold(acc.Name, search) {
			continue
		}
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateTransmitAccount(in models.TransmitAccountInput) (*models.TransmitAccount, error) {
	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	now := time.Now()
	acc := &models.TransmitAccount{
		ID:        uuid.New().String(),
		Name:      in.Name,
		SenderID:  in.SenderID,
		APIKeyEnd: lastFour(in.APIKey),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.transmit[acc.ID] = acc
	return acc, nil
}

func (m *MemoryStore) UpdateTransmitAccount(id string, in models.TransmitAccountInput) (*models.TransmitAccount, error) {
	m.accountMu.Lock()
	defer m.accountMu.Unlock()

	acc, exists := m.transmit[id]
	if !exists {
		return nil, fmt.Errorf("transmit account not found")
	}
	if in.Name != "" {
		acc.Name = in.Name
	}
	if in.SenderID != "" {
		acc.SenderID = in.SenderID
	}
	if in.APIKey != "" {
		acc.APIKeyEnd = lastFour(in.APIKey)
	}
	acc.UpdatedAt = time.Now()
	return acc, nil
}

func (m *MemoryStore) DeleteTransmitAccount(id string) error {
	m.accountMu.Lock()
	if _, exists := m.transmit[id]; !exists {
		m.accountMu.Unlock()
		return fmt.Errorf("transmit account not found")
	}
	delete(m.transmit, id)
	m.accountMu.Unlock()

	m.mappingMu.Lock()
	for mid, mp := range m.mappings {
		if mp.TransmitAccount == id {
			delete(m.mappings, mid)
		}
	}
	m.mappingMu.Unlock()
	return nil
}

// Messages

func (m *MemoryStore) AddMessage(msg models.Message) {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *MemoryStore) ListMessages(f MessageFilter) ([]models.Message, error) {
	m.billingMu.RLock()
	defer m.billingMu.RUnlock()

	var out []models.Message
	for _, msg := range m.messages {
		if f.Status != "" && msg.Status != f.Status {
			continue
		}
		if f.Direction != "" && msg.Direction != f.Direction {
			continue
		}
		if f.Search != "" && !containsFold(msg.To, f.Search) && !containsFold(msg.From, f.Search) && !containsFold(msg.Body, f.Search) {
			continue
		}
		if !f.DateFrom.IsZero() && msg.SentAt.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && msg.SentAt.After(f.DateTo.Add(24*time.Hour)) {
			continue
		}
		out = append(out, msg)
	}

	switch f.Ordering {
	case "sent_at":
		sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	default:
		// Newest first, the backend default.
		sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	}
	return out, nil
}

// Numbers

func (m *MemoryStore) AddNumber(n models.AvailableNumber) {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	m.numbers = append(m.numbers, n)
}

func (m *MemoryStore) ListNumbers(f NumberFilter) ([]models.AvailableNumber, error) {
	m.billingMu.RLock()
	defer m.billingMu.RUnlock()

	var out []models.AvailableNumber
	for _, n := range m.numbers {
		if f.Search != "" && !containsFold(n.Number, f.Search) {
			continue
		}
		if f.Label != "" && !containsFold(n.Label, f.Label) {
			continue
		}
		if f.MinPrice != nil && n.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && n.Price > *f.MaxPrice {
			continue
		}
		out = append(out, n)
	}

	switch f.SortBy {
	case "price":
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	}
	return out, nil
}

// Wallets and transactions

func (m *MemoryStore) AddWallet(w models.Wallet) {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	m.wallets[w.ID] = &w
}

func (m *MemoryStore) AddTransaction(t models.Transaction) {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	m.transactions = append(m.transactions, t)
}

func (m *MemoryStore) ListWallets(f WalletFilter) ([]models.Wallet, error) {
	m.billingMu.RLock()
	defer m.billingMu.RUnlock()

	var out []models.Wallet
	for _, w := range m.wallets {
		if f.MinBalance != nil && w.Balance < *f.MinBalance {
			continue
		}
		if f.MaxBalance != nil && w.Balance > *f.MaxBalance {
			continue
		}
		out = append(out, *w)
	}

	switch f.SortBy {
	case "balance":
		sort.Slice(out, func(i, j int) bool { return out[i].Balance < out[j].Balance })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out, nil
}

func (m *MemoryStore) WalletSummary() (*models.WalletSummary, error) {
	m.billingMu.RLock()
	defer m.billingMu.RUnlock()

	summary := &models.WalletSummary{Currency: "AUD"}
	for _, w := range m.wallets {
		summary.TotalBalance += w.Balance
		summary.WalletCount++
	}
	return summary, nil
}

func (m *MemoryStore) ListTransactions(f TransactionFilter) ([]models.Transaction, error) {
	m.billingMu.RLock()
	defer m.billingMu.RUnlock()

	var out []models.Transaction
	for _, t := range m.transactions {
		if f.Wallet != "" && t.Wallet != f.Wallet {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.MinAmount != nil && t.Amount < *f.MinAmount {
			continue
		}
		if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
			continue
		}
		if !f.DateFrom.IsZero() && t.CreatedAt.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && t.CreatedAt.After(f.DateTo.Add(24*time.Hour)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Dashboard

func (m *MemoryStore) DashboardSummary(days int, ghlAccount string) (*models.DashboardSummary, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	m.billingMu.RLock()
	messages := make([]models.Message, len(m.messages))
	copy(messages, m.messages)
	m.billingMu.RUnlock()

	byDay := make(map[string]*models.DayCount)
	summary := &models.DashboardSummary{}
	for _, msg := range messages {
		if msg.SentAt.Before(cutoff) {
			continue
		}
		if ghlAccount != "" && msg.GHLAccount != ghlAccount {
			continue
		}
		summary.TotalMessages++
		switch msg.Status {
		case models.MessageDelivered:
			summary.Delivered++
		case models.MessageFailed:
			summary.Failed++
		}
		switch msg.Direction {
		case models.DirectionInbound:
			summary.Inbound++
		case models.DirectionOutbound:
			summary.Outbound++
		}

		day := msg.SentAt.Format("2006-01-02")
		dc, ok := byDay[day]
		if !ok {
			dc = &models.DayCount{Date: day}
			byDay[day] = dc
		}
		dc.Sent++
		switch msg.Status {
		case models.MessageDelivered:
			dc.Delivered++
		case models.MessageFailed:
			dc.Failed++
		}
	}

	m.mappingMu.RLock()
	summary.ActiveMappings = len(m.mappings)
	m.mappingMu.RUnlock()

	for _, dc := range byDay {
		summary.Days = append(summary.Days, *dc)
	}
	sort.Slice(summary.Days, func(i, j int) bool { return summary.Days[i].Date < summary.Days[j].Date })
	return summary, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func lastFour(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
