// Package dispatch orchestrates one AI request end-to-end: cost lookup,
// credit pre-check, provider invocation with fallback, and post-success
// settlement against the ledger.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/emiliancristea/xeno-ai/pkg/audit"
	"github.com/emiliancristea/xeno-ai/pkg/costs"
	"github.com/emiliancristea/xeno-ai/pkg/ledger"
	"github.com/emiliancristea/xeno-ai/pkg/metrics"
	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/provider"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// Error tags surfaced verbatim in AIResponse.Error.
const (
	CodeInsufficientCredits = "InsufficientCredits"
	CodeAllProvidersFailed  = "AllProvidersFailed"
	CodeLedgerCorrupted     = "LedgerCorrupted"
	// CodeSettlementFailed means the provider succeeded but the charge could
	// not be persisted. It is distinct from provider failure on purpose.
	CodeSettlementFailed = "SettlementFailed"
)

// ErrAllProvidersFailed is returned when every provider in the chain failed.
var ErrAllProvidersFailed = errors.New("all providers failed")

// Dispatcher routes a request to a provider and settles its cost. A
// terminal result is final: the dispatcher never retries after one; a new
// Dispatch call is required.
type Dispatcher struct {
	logger   *log.Logger
	ledger   *ledger.Ledger
	registry *registry.Registry
	adapters map[string]provider.Adapter
	costs    costs.Table

	chain   []string
	wallet  *Wallet
	auditor *audit.Logger
	metrics *metrics.Metrics
}

// New creates a Dispatcher wired with its required dependencies. Wallet,
// auditor, metrics, and a default chain are attached with the Set methods.
func New(logger *log.Logger, led *ledger.Ledger, reg *registry.Registry, adapters map[string]provider.Adapter, table costs.Table) *Dispatcher {
	if table == nil {
		table = costs.Defaults()
	}
	return &Dispatcher{
		logger:   logger,
		ledger:   led,
		registry: reg,
		adapters: adapters,
		costs:    table,
	}
}

// SetChain sets the default provider chain used when Dispatch is called with
// an empty one.
func (d *Dispatcher) SetChain(chain []string) { d.chain = chain }

// SetWallet binds the dispatcher to a user identity for audit attribution.
func (d *Dispatcher) SetWallet(w *Wallet) { d.wallet = w }

// SetAuditor attaches the dispatch audit trail.
func (d *Dispatcher) SetAuditor(a *audit.Logger) { d.auditor = a }

// SetMetrics attaches Prometheus instrumentation.
func (d *Dispatcher) SetMetrics(m *metrics.Metrics) { d.metrics = m }

// Ledger returns the ledger this dispatcher settles against.
func (d *Dispatcher) Ledger() *ledger.Ledger { return d.ledger }

// Dispatch runs one request through the provider chain. An empty chain uses
// the configured default, falling back to every registered provider.
//
// Insufficient funds is not a provider-availability problem: it is terminal
// immediately, with no fallback to the next provider.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.AIRequest, chain []string) models.AIResponse {
	start := time.Now()
	requestID := uuid.NewString()
	cost := d.costs.Cost(req.OperationType)

	if len(chain) == 0 {
		chain = d.defaultChain()
	}
	if len(chain) == 0 {
		d.logger.Error("dispatch with no providers configured", "operation", req.OperationType)
		return d.fail(requestID, "", CodeAllProvidersFailed, start)
	}

	for _, id := range chain {
		adapter, ok := d.adapters[id]
		if !ok || !d.registry.IsAvailable(id) {
			d.logger.Warn("provider not available, trying next", "provider", id)
			d.record(ctx, requestID, req, id, audit.OutcomeProviderFailed, 0, start)
			continue
		}

		billed := d.registry.BillingPolicy(id) == registry.Billed

		// Fast pre-check. Advisory only; TryDeduct below is authoritative.
		if billed && !d.ledger.CanAfford(cost) {
			d.record(ctx, requestID, req, id, audit.OutcomeInsufficientCredits, 0, start)
			return d.fail(requestID, id, CodeInsufficientCredits, start)
		}

		result, err := adapter.Invoke(ctx, req)
		if err != nil {
			d.logger.Warn("provider failed, trying next", "provider", id, "err", err)
			d.metrics.IncProviderFailure(id)
			d.record(ctx, requestID, req, id, audit.OutcomeProviderFailed, 0, start)
			continue
		}

		if !billed {
			d.record(ctx, requestID, req, id, audit.OutcomeSuccess, 0, start)
			d.metrics.ObserveDispatch(audit.OutcomeSuccess, id, time.Since(start).Seconds())
			return models.AIResponse{
				Success:   true,
				Content:   result.Content,
				Provider:  id,
				RequestID: requestID,
				Metadata:  result.Metadata,
			}
		}

		// Authoritative check-and-commit. The balance may have moved since
		// the pre-check; if it did, the provider result is discarded. The
		// operation is never given away for free.
		tx, err := d.ledger.TryDeduct(ctx, cost, req.OperationType)
		switch {
		case errors.Is(err, ledger.ErrInsufficientCredits):
			d.logger.Warn("balance changed between pre-check and commit, discarding provider result",
				"provider", id, "cost", cost)
			d.record(ctx, requestID, req, id, audit.OutcomeSettlementFailed, 0, start)
			return d.fail(requestID, id, CodeInsufficientCredits, start)
		case errors.Is(err, ledger.ErrLedgerCorrupted):
			d.logger.Error("ledger consistency violation, refusing further spends", "err", err)
			return d.fail(requestID, id, CodeLedgerCorrupted, start)
		case err != nil:
			d.logger.Error("settlement failed", "provider", id, "err", err)
			d.record(ctx, requestID, req, id, audit.OutcomeSettlementFailed, 0, start)
			return d.fail(requestID, id, CodeSettlementFailed, start)
		}

		d.record(ctx, requestID, req, id, audit.OutcomeSuccess, -tx.Delta, start)
		d.metrics.ObserveDispatch(audit.OutcomeSuccess, id, time.Since(start).Seconds())
		d.metrics.AddCreditsSpent(cost)
		d.metrics.SetBalance(d.ledger.Balance())

		return models.AIResponse{
			Success:     true,
			Content:     result.Content,
			CreditsUsed: cost,
			Provider:    id,
			RequestID:   requestID,
			Metadata:    result.Metadata,
		}
	}

	return d.fail(requestID, "", CodeAllProvidersFailed, start)
}

// DispatchAsync runs Dispatch on its own goroutine so a caller's UI thread
// never blocks on provider I/O. The channel receives exactly one response.
func (d *Dispatcher) DispatchAsync(ctx context.Context, req models.AIRequest, chain []string) <-chan models.AIResponse {
	out := make(chan models.AIResponse, 1)
	go func() {
		defer close(out)
		out <- d.Dispatch(ctx, req, chain)
	}()
	return out
}

// Typed operations mirroring the creative-tool surface. Each stamps the
// operation type when the caller left it empty.

// CompleteCode dispatches a code completion request.
func (d *Dispatcher) CompleteCode(ctx context.Context, req models.AIRequest, chain []string) models.AIResponse {
	return d.dispatchAs(ctx, req, chain, models.OpCodeCompletion)
}

// ChatCompletion dispatches a chat request.
func (d *Dispatcher) ChatCompletion(ctx context.Context, req models.AIRequest, chain []string) models.AIResponse {
	return d.dispatchAs(ctx, req, chain, models.OpChat)
}

// GenerateImage dispatches an image generation request.
func (d *Dispatcher) GenerateImage(ctx context.Context, req models.AIRequest, chain []string) models.AIResponse {
	return d.dispatchAs(ctx, req, chain, models.OpImageGenerate)
}

// ProcessAudio dispatches an audio processing request.
func (d *Dispatcher) ProcessAudio(ctx context.Context, req models.AIRequest, chain []string) models.AIResponse {
	return d.dispatchAs(ctx, req, chain, models.OpAudioProcess)
}

// ProcessVideo dispatches a video processing request. Callers wanting the
// auto-edit pipeline set OperationType themselves.
func (d *Dispatcher) ProcessVideo(ctx context.Context, req models.AIRequest, chain []string) models.AIResponse {
	return d.dispatchAs(ctx, req, chain, models.OpVideoStabilize)
}

// GenericCall dispatches a request under an arbitrary operation type.
func (d *Dispatcher) GenericCall(ctx context.Context, operation string, req models.AIRequest, chain []string) models.AIResponse {
	req.OperationType = operation
	return d.Dispatch(ctx, req, chain)
}

func (d *Dispatcher) dispatchAs(ctx context.Context, req models.AIRequest, chain []string, operation string) models.AIResponse {
	if req.OperationType == "" {
		req.OperationType = operation
	}
	return d.Dispatch(ctx, req, chain)
}

func (d *Dispatcher) defaultChain() []string {
	if len(d.chain) > 0 {
		return d.chain
	}
	return d.registry.IDs()
}

func (d *Dispatcher) fail(requestID, providerID, code string, start time.Time) models.AIResponse {
	d.metrics.ObserveDispatch(code, providerID, time.Since(start).Seconds())
	return models.AIResponse{
		Success:   false,
		Error:     code,
		Provider:  providerID,
		RequestID: requestID,
	}
}

// record writes one attempt to the audit trail when one is attached.
func (d *Dispatcher) record(ctx context.Context, requestID string, req models.AIRequest, providerID, outcome string, credits int64, start time.Time) {
	if d.auditor == nil {
		return
	}
	entry := models.AuditEntry{
		RequestID: requestID,
		Operation: req.OperationType,
		Provider:  providerID,
		Outcome:   outcome,
		Credits:   credits,
		LatencyMs: time.Since(start).Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if d.wallet != nil {
		entry.TokenHash, entry.TokenPrefix = d.wallet.TokenHash()
	}
	if err := d.auditor.Log(ctx, entry); err != nil {
		d.logger.Warn("audit log failed", "err", err)
	}
}
