// Package provider executes AI operations against individual providers.
// Adapters never touch the credit ledger; billing is the dispatcher's
// concern.
package provider

import (
	"context"
	"fmt"

	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// Adapter executes one AI operation against a single provider and reports
// success or failure. Invoke must honor context cancellation; a cancelled or
// timed-out call is a provider failure, never a charge.
type Adapter interface {
	ID() string
	Invoke(ctx context.Context, req models.AIRequest) (*models.ProviderResult, error)
}

// Failure is a provider-level error: transport faults, provider outages,
// malformed responses. It is distinct from ledger errors and lets the
// dispatcher fall back to the next provider in the chain.
type Failure struct {
	Provider string
	Reason   string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", f.Provider, f.Reason, f.Err)
	}
	return fmt.Sprintf("provider %s: %s", f.Provider, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// Build constructs one adapter per configured provider, choosing the local
// variant for free providers and the billed cloud variant for the rest.
func Build(reg *registry.Registry) map[string]Adapter {
	adapters := make(map[string]Adapter)
	for _, id := range reg.IDs() {
		cfg, ok := reg.Get(id)
		if !ok {
			continue
		}
		if reg.BillingPolicy(id) == registry.Free {
			adapters[id] = NewLocal(cfg)
		} else {
			adapters[id] = NewCloud(cfg)
		}
	}
	return adapters
}
