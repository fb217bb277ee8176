package ledger

import (
	"context"
	"sync"

	"github.com/emiliancristea/xeno-ai/pkg/models"
)

// MemoryStore keeps transactions in memory. Balances do not survive a
// process restart; use the sqlite store for that.
type MemoryStore struct {
	mu  sync.Mutex
	txs []models.Transaction
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a transaction.
func (s *MemoryStore) Append(_ context.Context, tx models.Transaction) error {
	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	return nil
}

// Load returns a copy of all stored transactions in commit order.
func (s *MemoryStore) Load(_ context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
