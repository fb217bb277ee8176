// Package ledger owns the credit balance and its append-only transaction
// history. It is the only component allowed to mutate either.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emiliancristea/xeno-ai/pkg/models"
)

var (
	// ErrInsufficientCredits is returned by TryDeduct when the balance does
	// not cover the requested amount. Nothing is mutated in that case.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrLedgerCorrupted means the running balance no longer equals the
	// initial balance plus the sum of committed deltas. Once raised, every
	// further mutating operation is refused.
	ErrLedgerCorrupted = errors.New("ledger corrupted")
)

// Store persists committed transactions. The ledger serializes all calls, so
// implementations see a single writer.
type Store interface {
	Append(ctx context.Context, tx models.Transaction) error
	Load(ctx context.Context) ([]models.Transaction, error)
	Close() error
}

// Ledger is the sole authority over the credit balance. All operations are
// safe for concurrent callers; mutations are linearized by a single mutex.
type Ledger struct {
	mu        sync.Mutex
	balance   int64
	initial   int64
	sum       int64 // running sum of committed deltas
	log       []models.Transaction
	nextID    int64
	store     Store
	corrupted bool
}

// New creates a Ledger with the given starting balance, replaying any
// transactions already in the store on top of it. A nil store keeps the
// ledger memory-only.
func New(initial int64, store Store) (*Ledger, error) {
	if initial < 0 {
		return nil, fmt.Errorf("initial balance must be non-negative, got %d", initial)
	}

	l := &Ledger{balance: initial, initial: initial, nextID: 1, store: store}
	if store == nil {
		return l, nil
	}

	txs, err := store.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load ledger store: %w", err)
	}
	for _, tx := range txs {
		l.balance += tx.Delta
		l.sum += tx.Delta
		l.log = append(l.log, tx)
		if tx.ID >= l.nextID {
			l.nextID = tx.ID + 1
		}
	}
	if l.balance < 0 {
		return nil, fmt.Errorf("%w: replayed balance %d", ErrLedgerCorrupted, l.balance)
	}
	return l, nil
}

// Balance returns the current balance. Never fails.
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// CanAfford reports whether the balance covers amount. It is advisory only:
// another caller may spend between this check and a later TryDeduct, so it
// must never be the sole authorization for a spend.
func (l *Ledger) CanAfford(amount int64) bool {
	if amount < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance >= amount
}

// TryDeduct is the only way to spend. It re-reads the balance, fails with
// ErrInsufficientCredits without mutating anything if the balance is short,
// or commits the deduction and appends its transaction, all as one critical
// section, indivisible with respect to every other ledger operation.
func (l *Ledger) TryDeduct(ctx context.Context, amount int64, operation string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.corrupted {
		return nil, ErrLedgerCorrupted
	}
	if l.balance < amount {
		return nil, ErrInsufficientCredits
	}
	return l.commit(ctx, -amount, operation)
}

// AddCredits increments the balance and appends its transaction.
func (l *Ledger) AddCredits(ctx context.Context, amount int64, reason string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.corrupted {
		return nil, ErrLedgerCorrupted
	}
	return l.commit(ctx, amount, reason)
}

// History returns up to limit of the most recent transactions,
// most-recent-first. The result is a snapshot, not a live view. A limit of
// zero or less returns the full history.
func (l *Ledger) History(limit int) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.log)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.Transaction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.log[i])
	}
	return out
}

// Len returns the number of committed transactions.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.log)
}

// commit persists and applies one balance mutation. Callers hold l.mu.
// A store failure rolls the mutation back entirely.
func (l *Ledger) commit(ctx context.Context, delta int64, operation string) (*models.Transaction, error) {
	tx := models.Transaction{
		ID:        l.nextID,
		Operation: operation,
		Delta:     delta,
		Outcome:   models.OutcomeSuccess,
		CreatedAt: time.Now().UTC(),
	}

	if l.store != nil {
		if err := l.store.Append(ctx, tx); err != nil {
			return nil, fmt.Errorf("persist transaction: %w", err)
		}
	}

	l.nextID++
	l.balance += delta
	l.sum += delta
	l.log = append(l.log, tx)

	if err := l.verify(); err != nil {
		return nil, err
	}
	return &tx, nil
}

// verify checks the conservation invariant: the balance must equal the
// initial balance plus the running sum of committed deltas, and must never
// be negative. Divergence is fatal for the ledger. Callers hold l.mu.
func (l *Ledger) verify() error {
	if want := l.initial + l.sum; want != l.balance || l.balance < 0 {
		l.corrupted = true
		return fmt.Errorf("%w: balance=%d initial+deltas=%d", ErrLedgerCorrupted, l.balance, want)
	}
	return nil
}
