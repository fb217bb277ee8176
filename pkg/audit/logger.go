// Package audit records every dispatch attempt, including attempts that
// never charged, in a dedicated SQLite database. It is deliberately
// separate from the ledger's balance-affecting transaction log.
package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/emiliancristea/xeno-ai/pkg/models"
)

// Attempt outcomes.
const (
	OutcomeSuccess             = "success"
	OutcomeProviderFailed      = "provider_failed"
	OutcomeInsufficientCredits = "insufficient_credits"
	// OutcomeSettlementFailed marks provider work that was performed but not
	// paid for because the balance moved between pre-check and commit.
	OutcomeSettlementFailed = "settlement_failed"
)

// Config controls the audit subsystem.
type Config struct {
	Enabled       bool   `yaml:"enabled"`
	DBPath        string `yaml:"db_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Logger writes and queries audit entries.
type Logger struct {
	db   *sql.DB
	cfg  Config
	done chan struct{}
	wg   sync.WaitGroup
}

// New opens the audit database and creates the schema. A retention loop
// runs until Close when RetentionDays is positive.
func New(cfg Config) (*Logger, error) {
	db, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}

	l := &Logger{db: db, cfg: cfg, done: make(chan struct{})}
	if cfg.RetentionDays > 0 {
		l.wg.Add(1)
		go l.retentionLoop()
	}
	return l, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS dispatch_attempts (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id   TEXT NOT NULL,
		token_hash   TEXT NOT NULL DEFAULT '',
		token_prefix TEXT NOT NULL DEFAULT '',
		operation    TEXT NOT NULL,
		provider     TEXT NOT NULL,
		outcome      TEXT NOT NULL,
		credits      INTEGER NOT NULL DEFAULT 0,
		latency_ms   INTEGER NOT NULL DEFAULT 0,
		created_at   DATETIME NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_attempts_request ON dispatch_attempts(request_id)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_attempts_created ON dispatch_attempts(created_at)`)
	return err
}

// Log inserts one audit entry. A nil Logger is a no-op so callers never need
// to guard the audit path.
func (l *Logger) Log(ctx context.Context, entry models.AuditEntry) error {
	if l == nil || l.db == nil {
		return nil
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO dispatch_attempts
		(request_id, token_hash, token_prefix, operation, provider, outcome, credits, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID, entry.TokenHash, entry.TokenPrefix,
		entry.Operation, entry.Provider, entry.Outcome,
		entry.Credits, entry.LatencyMs, entry.CreatedAt,
	)
	return err
}

// Query returns audit entries matching the given options, newest first.
func (l *Logger) Query(ctx context.Context, opts models.AuditQueryOpts) ([]models.AuditEntry, error) {
	q := `SELECT request_id, token_hash, token_prefix, operation, provider, outcome, credits, latency_ms, created_at
		FROM dispatch_attempts WHERE 1=1`
	var args []any

	if opts.RequestID != "" {
		q += " AND request_id = ?"
		args = append(args, opts.RequestID)
	}
	if opts.Operation != "" {
		q += " AND operation = ?"
		args = append(args, opts.Operation)
	}
	if opts.Provider != "" {
		q += " AND provider = ?"
		args = append(args, opts.Provider)
	}
	if opts.Outcome != "" {
		q += " AND outcome = ?"
		args = append(args, opts.Outcome)
	}
	if !opts.Since.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, opts.Since)
	}

	q += " ORDER BY created_at DESC, id DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(
			&e.RequestID, &e.TokenHash, &e.TokenPrefix,
			&e.Operation, &e.Provider, &e.Outcome,
			&e.Credits, &e.LatencyMs, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns aggregate attempt counts grouped by provider and day.
func (l *Logger) Stats(ctx context.Context) ([]models.AuditStat, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT provider, date(created_at) AS day, count(*) AS cnt
		 FROM dispatch_attempts GROUP BY provider, day ORDER BY day DESC, provider`)
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}
	defer rows.Close()

	var stats []models.AuditStat
	for rows.Next() {
		var s models.AuditStat
		var day sql.NullString
		if err := rows.Scan(&s.Provider, &day, &s.Count); err != nil {
			return nil, fmt.Errorf("scan audit stat: %w", err)
		}
		s.Day = day.String
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Cleanup deletes entries older than the configured retention period.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -l.cfg.RetentionDays)
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM dispatch_attempts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close stops the retention goroutine and closes the database.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.db.Close()
}

func (l *Logger) retentionLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			_, _ = l.Cleanup(context.Background())
		}
	}
}

// HashToken returns the SHA-256 hex hash and 8-char prefix of a user token.
// The raw token never reaches storage.
func HashToken(token string) (hash, prefix string) {
	h := sha256.Sum256([]byte(token))
	hash = hex.EncodeToString(h[:])
	if len(token) > 8 {
		prefix = token[:8]
	} else {
		prefix = token
	}
	return hash, prefix
}
