package models

import "time"

// AuditEntry records a single dispatch attempt against a provider, including
// attempts that never charged the ledger. The audit trail is deliberately
// separate from the balance-affecting transaction log.
type AuditEntry struct {
	RequestID   string    `json:"request_id"`
	TokenHash   string    `json:"token_hash,omitempty"`
	TokenPrefix string    `json:"token_prefix,omitempty"`
	Operation   string    `json:"operation"`
	Provider    string    `json:"provider"`
	Outcome     string    `json:"outcome"`
	Credits     int64     `json:"credits"`
	LatencyMs   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuditQueryOpts specifies filters for querying audit entries.
type AuditQueryOpts struct {
	RequestID string
	Operation string
	Provider  string
	Outcome   string
	Since     time.Time
	Limit     int
}

// AuditStat holds aggregate attempt counts for a provider/day combination.
type AuditStat struct {
	Provider string
	Day      string
	Count    int
}
