// Package sqlite persists ledger transactions in a SQLite database so the
// balance survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/emiliancristea/xeno-ai/pkg/models"
)

// Store implements ledger.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY,
	operation TEXT NOT NULL,
	delta INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

// New opens the ledger database and runs auto-migration.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}

	return &Store{db: db}, nil
}

// Append inserts one committed transaction. Transactions are append-only;
// there is deliberately no update or delete path.
func (s *Store) Append(ctx context.Context, tx models.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, operation, delta, outcome, created_at) VALUES (?, ?, ?, ?, ?)`,
		tx.ID, tx.Operation, tx.Delta, string(tx.Outcome), tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// Load returns all transactions in commit order.
func (s *Store) Load(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation, delta, outcome, created_at FROM transactions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var outcome string
		if err := rows.Scan(&tx.ID, &tx.Operation, &tx.Delta, &outcome, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Outcome = models.Outcome(outcome)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
