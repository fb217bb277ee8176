package models

import "time"

// Outcome records whether a committed transaction succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Transaction is an immutable record of one committed balance mutation.
// Negative deltas are spends, positive deltas are credits. Transactions are
// created only by the ledger and never mutated or deleted afterwards.
type Transaction struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	Delta     int64     `json:"delta"`
	Outcome   Outcome   `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}
