package models

import "time"

// Wallet holds the prepaid balance for one provider account.
type Wallet struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name"`
	TransmitAccount string    `json:"transmit_account,omitempty"`
	Balance         float64   `json:"balance"`
	Currency        string    `json:"currency"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WalletSummary is the aggregate the backend computes across all wallets.
type WalletSummary struct {
	TotalBalance float64 `json:"total_balance"`
	WalletCount  int     `json:"wallet_count"`
	Currency     string  `json:"currency"`
}

// Transaction types.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// Transaction is one wallet ledger entry, scoped to a wallet.
type Transaction struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Wallet      string    `json:"wallet"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
