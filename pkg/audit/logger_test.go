package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliancristea/xeno-ai/pkg/models"
)

func newTestLogger(t *testing.T, retentionDays int) *Logger {
	t.Helper()
	l, err := New(Config{
		Enabled:       true,
		DBPath:        filepath.Join(t.TempDir(), "audit.db"),
		RetentionDays: retentionDays,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func entry(requestID, provider, outcome string, at time.Time) models.AuditEntry {
	return models.AuditEntry{
		RequestID: requestID,
		Operation: models.OpChat,
		Provider:  provider,
		Outcome:   outcome,
		Credits:   1,
		LatencyMs: 42,
		CreatedAt: at,
	}
}

func TestLogAndQuery(t *testing.T) {
	l := newTestLogger(t, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, e := range []models.AuditEntry{
		entry("req-1", "xeno_cloud", OutcomeSuccess, now.Add(-2*time.Minute)),
		entry("req-2", "xeno_cloud", OutcomeProviderFailed, now.Add(-time.Minute)),
		entry("req-2", "ollama", OutcomeSuccess, now),
	} {
		if err := l.Log(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.Query(ctx, models.AuditQueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	// Newest first.
	if got[0].Provider != "ollama" {
		t.Errorf("first entry provider = %s, want ollama (newest)", got[0].Provider)
	}

	byRequest, err := l.Query(ctx, models.AuditQueryOpts{RequestID: "req-2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byRequest) != 2 {
		t.Errorf("got %d entries for req-2, want 2", len(byRequest))
	}

	byOutcome, err := l.Query(ctx, models.AuditQueryOpts{Outcome: OutcomeProviderFailed})
	if err != nil {
		t.Fatal(err)
	}
	if len(byOutcome) != 1 || byOutcome[0].RequestID != "req-2" {
		t.Errorf("got %+v, want single provider_failed entry for req-2", byOutcome)
	}

	limited, err := l.Query(ctx, models.AuditQueryOpts{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d entries with limit 1, want 1", len(limited))
	}
}

func TestQuerySince(t *testing.T) {
	l := newTestLogger(t, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	l.Log(ctx, entry("old", "xeno_cloud", OutcomeSuccess, now.Add(-48*time.Hour)))
	l.Log(ctx, entry("new", "xeno_cloud", OutcomeSuccess, now))

	got, err := l.Query(ctx, models.AuditQueryOpts{Since: now.Add(-time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RequestID != "new" {
		t.Errorf("got %+v, want only the recent entry", got)
	}
}

func TestStats(t *testing.T) {
	l := newTestLogger(t, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	l.Log(ctx, entry("a", "xeno_cloud", OutcomeSuccess, now))
	l.Log(ctx, entry("b", "xeno_cloud", OutcomeProviderFailed, now))
	l.Log(ctx, entry("c", "ollama", OutcomeSuccess, now))

	stats, err := l.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	counts := make(map[string]int)
	for _, s := range stats {
		counts[s.Provider] += s.Count
	}
	if counts["xeno_cloud"] != 2 || counts["ollama"] != 1 {
		t.Errorf("counts = %v, want xeno_cloud:2 ollama:1", counts)
	}
}

func TestCleanup(t *testing.T) {
	l := newTestLogger(t, 7)
	ctx := context.Background()
	now := time.Now().UTC()

	l.Log(ctx, entry("ancient", "xeno_cloud", OutcomeSuccess, now.AddDate(0, 0, -30)))
	l.Log(ctx, entry("recent", "xeno_cloud", OutcomeSuccess, now))

	deleted, err := l.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	got, err := l.Query(ctx, models.AuditQueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RequestID != "recent" {
		t.Errorf("got %+v, want only the recent entry", got)
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	if err := l.Log(context.Background(), models.AuditEntry{RequestID: "x"}); err != nil {
		t.Errorf("nil logger Log returned %v, want nil", err)
	}
}

func TestHashToken(t *testing.T) {
	hash, prefix := HashToken("user-token-12345")
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}
	if prefix != "user-tok" {
		t.Errorf("prefix = %s, want user-tok", prefix)
	}

	hash2, _ := HashToken("user-token-12345")
	if hash != hash2 {
		t.Error("hash is not deterministic")
	}

	_, short := HashToken("abc")
	if short != "abc" {
		t.Errorf("short prefix = %s, want abc", short)
	}
}
