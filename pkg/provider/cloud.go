package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// DefaultCloudTimeout bounds one networked provider call.
const DefaultCloudTimeout = 30 * time.Second

// CloudAdapter invokes a billed, networked provider over HTTP.
type CloudAdapter struct {
	cfg registry.ProviderConfig

	// Client and Timeout may be overridden before first use.
	Client  *http.Client
	Timeout time.Duration
}

// NewCloud creates a CloudAdapter for the given provider config.
func NewCloud(cfg registry.ProviderConfig) *CloudAdapter {
	return &CloudAdapter{cfg: cfg, Client: http.DefaultClient, Timeout: DefaultCloudTimeout}
}

// ID returns the provider ID this adapter serves.
func (a *CloudAdapter) ID() string { return a.cfg.ID }

// Invoke POSTs the request to the provider endpoint and returns its raw
// result or a *Failure.
func (a *CloudAdapter) Invoke(ctx context.Context, req models.AIRequest) (*models.ProviderResult, error) {
	return invoke(ctx, a.Client, a.cfg, a.Timeout, req)
}
