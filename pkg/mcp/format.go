package mcp

import (
	"fmt"
	"strings"

	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

func formatBalance(balance int64) string {
	return fmt.Sprintf("Credit balance: %d", balance)
}

func formatGrant(tx *models.Transaction, balance int64) string {
	return fmt.Sprintf("Added %d credits (%s). New balance: %d", tx.Delta, tx.Operation, balance)
}

func formatDispatch(resp models.AIResponse, balance int64) string {
	if !resp.Success {
		return fmt.Sprintf("Dispatch failed: %s (balance: %d)", resp.Error, balance)
	}
	return fmt.Sprintf("Dispatch succeeded via %s: %d credits used, balance %d.\n\n%s",
		resp.Provider, resp.CreditsUsed, balance, resp.Content)
}

// formatTransactions renders a transaction history as a text table.
func formatTransactions(txs []models.Transaction) string {
	if len(txs) == 0 {
		return "No transactions recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%6s  %-20s %-24s %8s\n", "ID", "Time", "Operation", "Delta")
	b.WriteString(strings.Repeat("-", 62) + "\n")
	for _, tx := range txs {
		fmt.Fprintf(&b, "%6d  %-20s %-24s %+8d\n",
			tx.ID, tx.CreatedAt.Format("2006-01-02 15:04:05"), tx.Operation, tx.Delta)
	}
	return b.String()
}

// formatProviders renders provider availability as a text table.
func formatProviders(reg *registry.Registry) string {
	ids := reg.IDs()
	if len(ids) == 0 {
		return "No providers configured."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-10s %-8s\n", "Provider", "Available", "Billing")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "%-20s %-10t %-8s\n", id, reg.IsAvailable(id), reg.BillingPolicy(id))
	}
	return b.String()
}

// formatAuditEntries renders audit rows as a text table.
func formatAuditEntries(entries []models.AuditEntry) string {
	if len(entries) == 0 {
		return "No audit entries found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-36s %-18s %-16s %-20s %8s %8s\n",
		"Request ID", "Operation", "Provider", "Outcome", "Credits", "ms")
	b.WriteString(strings.Repeat("-", 112) + "\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-36s %-18s %-16s %-20s %8d %8d\n",
			e.RequestID, e.Operation, e.Provider, e.Outcome, e.Credits, e.LatencyMs)
	}
	return b.String()
}
