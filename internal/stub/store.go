// Package stub is a local sandbox implementation of the admin API used by
// integration tests and demo mode. It mimics the remote contract (auth,
// pagination envelopes, omission-sensitive filtering) but performs none of
// the real routing or billing.
package stub

import (
	"time"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// User is an operator account in the sandbox.
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Password string `json:"-"`
}

// RevokedToken records a refresh token invalidated by logout.
type RevokedToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	RevokedAt time.Time `json:"revoked_at"`
}

// MessageFilter mirrors the message list query parameters. Empty fields
// mean "unconstrained" - the handler only fills what the request carried.
type MessageFilter struct {
	Search    string
	Status    string
	Direction string
	Ordering  string
	DateFrom  time.Time
	DateTo    time.Time
}

// NumberFilter mirrors the available-number list parameters.
type NumberFilter struct {
	Search   string
	Label    string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
}

// WalletFilter mirrors the wallet list parameters.
type WalletFilter struct {
	MinBalance *float64
	MaxBalance *float64
	SortBy     string
}

// TransactionFilter mirrors the transaction list parameters.
type TransactionFilter struct {
	Wallet    string
	Type      string
	MinAmount *float64
	MaxAmount *float64
	DateFrom  time.Time
	DateTo    time.Time
}

// Store defines the interface for sandbox storage operations.
type Store interface {
	// Auth operations
	Authenticate(email, password string) (*User, error)
	RevokeRefresh(token string) error
	IsRefreshRevoked(token string) bool

	// Mapping operations
	ListMappings() ([]models.AccountMapping, error)
	CreateMapping(ghlAccount, transmitAccount string) (*models.AccountMapping, error)
	DeleteMapping(id string) error

	// HighLevel account operations
	ListGHLAccounts(search string) ([]models.GHLAccount, error)
	CreateGHLAccount(in models.GHLAccountInput) (*models.GHLAccount, error)
	UpdateGHLAccount(id string, in models.GHLAccountInput) (*models.GHLAccount, error)
	DeleteGHLAccount(id string) error

	// Transmit-SMS account operations
	ListTransmitAccounts(search string) ([]models.TransmitAccount, error)
	CreateTransmitAccount(in models.TransmitAccountInput) (*models.TransmitAccount, error)
	UpdateTransmitAccount(id string, in models.TransmitAccountInput) (*models.TransmitAccount, error)
	DeleteTransmitAccount(id string) error

	// Read-only resources
	ListMessages(f MessageFilter) ([]models.Message, error)
	ListNumbers(f NumberFilter) ([]models.AvailableNumber, error)
	ListWallets(f WalletFilter) ([]models.Wallet, error)
	WalletSummary() (*models.WalletSummary, error)
	ListTransactions(f TransactionFilter) ([]models.Transaction, error)
	DashboardSummary(days int, ghlAccount string) (*models.DashboardSummary, error)
}
