// Package views renders API payloads as aligned text tables for the CLI.
package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/textlinq/smsbridge-admin/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Mappings prints the account mapping table.
func Mappings(w io.Writer, mappings []models.AccountMapping) {
	if len(mappings) == 0 {
		fmt.Fprintln(w, "No account mappings.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tHIGHLEVEL ACCOUNT\tTRANSMIT ACCOUNT\tCREATED")
	for _, m := range mappings {
		ghl := m.GHLAccountName
		if ghl == "" {
			ghl = m.GHLAccount
		}
		transmit := m.TransmitAccountName
		if transmit == "" {
			transmit = m.TransmitAccount
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			shortID(m.ID), ghl, transmit, m.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

// PageStats summarises delivery outcomes for the messages on the current
// page only; totals across pages come from the dashboard.
type PageStats struct {
	Delivered int
	Failed    int
	Pending   int
}

// MessageStats computes page-local delivery stats.
func MessageStats(messages []models.Message) PageStats {
	var stats PageStats
	for _, m := range messages {
		switch m.Status {
		case models.MessageDelivered:
			stats.Delivered++
		case models.MessageFailed:
			stats.Failed++
		default:
			stats.Pending++
		}
	}
	return stats
}

// Messages prints the message table with a page-local stats footer.
func Messages(w io.Writer, page *models.Page[models.Message]) {
	if page.Count == 0 {
		fmt.Fprintln(w, "No messages match.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SENT\tDIR\tTO\tFROM\tSTATUS\tBODY")
	for _, m := range page.Results {
		status := m.Status
		if m.Status == models.MessageFailed && m.ErrorDetail != "" {
			status = fmt.Sprintf("%s (%s)", m.Status, m.ErrorDetail)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.SentAt.Format("01-02 15:04"), m.Direction, m.To, m.From,
			status, truncate(m.Body, 40))
	}
	tw.Flush()

	stats := MessageStats(page.Results)
	fmt.Fprintf(w, "\nThis page: %d delivered, %d failed, %d pending. Total matching: %d\n",
		stats.Delivered, stats.Failed, stats.Pending, page.Count)
	pageFooter(w, page.HasPrevious(), page.HasNext())
}

// Wallets prints the wallet table.
func Wallets(w io.Writer, page *models.Page[models.Wallet]) {
	if page.Count == 0 {
		fmt.Fprintln(w, "No wallets.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tBALANCE\tUPDATED")
	for _, wallet := range page.Results {
		fmt.Fprintf(tw, "%s\t%s\t%.2f %s\t%s\n",
			shortID(wallet.ID), wallet.Name, wallet.Balance, wallet.Currency,
			wallet.UpdatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
	pageFooter(w, page.HasPrevious(), page.HasNext())
}

// WalletSummary prints the cross-wallet aggregate.
func WalletSummary(w io.Writer, summary *models.WalletSummary) {
	fmt.Fprintf(w, "Total balance: %.2f %s across %d wallets\n",
		summary.TotalBalance, summary.Currency, summary.WalletCount)
}

// Transactions prints the wallet ledger table.
func Transactions(w io.Writer, page *models.Page[models.Transaction]) {
	if page.Count == 0 {
		fmt.Fprintln(w, "No transactions match.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tWALLET\tDESCRIPTION")
	for _, tx := range page.Results {
		amount := fmt.Sprintf("%.2f", tx.Amount)
		if tx.Type == models.TransactionDebit {
			amount = "-" + amount
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tx.CreatedAt.Format("2006-01-02 15:04"), tx.Type, amount,
			shortID(tx.Wallet), orDash(tx.Description))
	}
	tw.Flush()
	pageFooter(w, page.HasPrevious(), page.HasNext())
}

// Numbers prints the available-number table.
func Numbers(w io.Writer, page *models.Page[models.AvailableNumber]) {
	if page.Count == 0 {
		fmt.Fprintln(w, "No numbers available.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "NUMBER\tCOUNTRY\tLABEL\tPRICE")
	for _, n := range page.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n",
			n.Number, n.Country, orDash(n.Label), n.Price)
	}
	tw.Flush()
	pageFooter(w, page.HasPrevious(), page.HasNext())
}

// GHLAccounts prints the HighLevel account table.
func GHLAccounts(w io.Writer, page *models.Page[models.GHLAccount]) {
	if page.Count == 0 {
		fmt.Fprintln(w, "No HighLevel accounts.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tEMAIL\tCONNECTED")
	for _, acc := range page.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
			shortID(acc.ID), acc.Name, acc.LocationID, orDash(acc.Email), acc.Connected)
	}
	tw.Flush()
	pageFooter(w, page.HasPrevious(), page.HasNext())
}

// TransmitAccounts prints the provider account table.
func TransmitAccounts(w io.Writer, page *models.Page[models.TransmitAccount]) {
	if page.Count == 0 {
		fmt.Fprintln(w, "No Transmit-SMS accounts.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSENDER\tAPI KEY\tACTIVE")
	for _, acc := range page.Results {
		key := "-"
		if acc.APIKeyEnd != "" {
			key = "…" + acc.APIKeyEnd
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
			shortID(acc.ID), acc.Name, acc.SenderID, key, acc.Active)
	}
	tw.Flush()
	pageFooter(w, page.HasPrevious(), page.HasNext())
}

// Dashboard prints the analytics summary and the daily volume series.
func Dashboard(w io.Writer, summary *models.DashboardSummary) {
	fmt.Fprintf(w, "Messages: %d total, %d delivered, %d failed\n",
		summary.TotalMessages, summary.Delivered, summary.Failed)
	fmt.Fprintf(w, "Direction: %d outbound, %d inbound\n", summary.Outbound, summary.Inbound)
	fmt.Fprintf(w, "Active mappings: %d\n", summary.ActiveMappings)

	if len(summary.Days) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tSENT\tDELIVERED\tFAILED\t")
	for _, day := range summary.Days {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n",
			day.Date, day.Sent, day.Delivered, day.Failed, bar(day.Sent))
	}
	tw.Flush()
}

func bar(n int) string {
	if n > 40 {
		n = 40
	}
	return strings.Repeat("#", n)
}

func pageFooter(w io.Writer, hasPrev, hasNext bool) {
	switch {
	case hasPrev && hasNext:
		fmt.Fprintln(w, "(more pages before and after; use -page)")
	case hasNext:
		fmt.Fprintln(w, "(more pages; use -page)")
	case hasPrev:
		fmt.Fprintln(w, "(earlier pages; use -page)")
	}
}
