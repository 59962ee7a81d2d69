package api

import (
	"net/url"
	"time"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

// Cache tags for billing data.
const (
	TagWallet      = "Wallet"
	TagTransaction = "Transaction"
)

const (
	walletsPath       = "/core/wallets-list/"
	walletSummaryPath = "/core/wallets-summary/"
	transactionsPath  = "/core/wallet-transactions/"
)

// WalletListArgs filters wallets by balance range and sort key.
type WalletListArgs struct {
	Page       int      `json:"page,omitempty"`
	MinBalance *float64 `json:"min_balance,omitempty"`
	MaxBalance *float64 `json:"max_balance,omitempty"`
	SortBy     string   `json:"sort_by,omitempty"`
}

// WalletList lists wallets.
var WalletList = Query[WalletListArgs, models.Page[models.Wallet]]{
	Name: "walletList",
	Path: walletsPath,
	Params: func(a WalletListArgs) url.Values {
		v := url.Values{}
		setInt(v, "page", a.Page)
		setFloat(v, "min_balance", a.MinBalance)
		setFloat(v, "max_balance", a.MaxBalance)
		setStr(v, "sort_by", a.SortBy)
		return v
	},
	Tags: func(WalletListArgs) []string {
		return []string{TagWallet}
	},
}

// WalletSummaryArgs is empty; the summary covers all wallets.
type WalletSummaryArgs struct{}

// WalletSummary reads the backend-computed balance aggregate.
var WalletSummary = Query[WalletSummaryArgs, models.WalletSummary]{
	Name: "walletSummary",
	Path: walletSummaryPath,
	Tags: func(WalletSummaryArgs) []string {
		return []string{TagWallet}
	},
}

// TransactionListArgs filters the transaction ledger, optionally scoped to
// one wallet.
type TransactionListArgs struct {
	Page      int       `json:"page,omitempty"`
	Wallet    string    `json:"wallet,omitempty"`
	Type      string    `json:"type,omitempty"`
	MinAmount *float64  `json:"min_amount,omitempty"`
	MaxAmount *float64  `json:"max_amount,omitempty"`
	DateFrom  time.Time `json:"date_from,omitempty"`
	DateTo    time.Time `json:"date_to,omitempty"`
}

// TransactionList lists wallet transactions.
var TransactionList = Query[TransactionListArgs, models.Page[models.Transaction]]{
	Name: "transactionList",
	Path: transactionsPath,
	Params: func(a TransactionListArgs) url.Values {
		v := url.Values{}
		setInt(v, "page", a.Page)
		setStr(v, "wallet", a.Wallet)
		setChoice(v, "type", a.Type)
		setFloat(v, "min_amount", a.MinAmount)
		setFloat(v, "max_amount", a.MaxAmount)
		setDate(v, "date_from", a.DateFrom)
		setDate(v, "date_to", a.DateTo)
		return v
	},
	Tags: func(TransactionListArgs) []string {
		return []string{TagTransaction}
	},
}
