package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// DefaultLocalTimeout is longer than the cloud timeout: there is no network
// round trip, but local inference can be compute-heavy.
const DefaultLocalTimeout = 5 * time.Minute

// LocalAdapter invokes a free, in-process or local-network provider (an
// ollama-style endpoint). It never costs credits.
type LocalAdapter struct {
	cfg registry.ProviderConfig

	Client  *http.Client
	Timeout time.Duration
}

// NewLocal creates a LocalAdapter for the given provider config.
func NewLocal(cfg registry.ProviderConfig) *LocalAdapter {
	return &LocalAdapter{cfg: cfg, Client: http.DefaultClient, Timeout: DefaultLocalTimeout}
}

// ID returns the provider ID this adapter serves.
func (a *LocalAdapter) ID() string { return a.cfg.ID }

// Invoke POSTs the request to the local endpoint and returns its raw result
// or a *Failure.
func (a *LocalAdapter) Invoke(ctx context.Context, req models.AIRequest) (*models.ProviderResult, error) {
	return invoke(ctx, a.Client, a.cfg, a.Timeout, req)
}
