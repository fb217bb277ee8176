// Package registry holds which AI providers are configured and usable.
package registry

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Policy says whether operations through a provider are charged against the
// credit ledger.
type Policy string

const (
	Billed Policy = "billed"
	Free   Policy = "free"
)

// ProviderConfig defines one upstream AI provider. A local provider entry
// needs only an endpoint and is always free.
type ProviderConfig struct {
	ID       string            `yaml:"id" json:"id"`
	Endpoint string            `yaml:"endpoint" json:"endpoint"`
	APIKey   string            `yaml:"api_key" json:"-"`
	Headers  map[string]string `yaml:"headers,omitempty" json:"-"`
	Billed   bool              `yaml:"billed" json:"billed"`
}

// valid reports whether the config is usable at all.
func (c ProviderConfig) valid() bool {
	return c.ID != "" && c.Endpoint != ""
}

// ConfigError reports a malformed or unusable provider configuration source.
// It is non-fatal: providers simply remain unconfigured.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider config: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("provider config: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Registry holds the set of configured providers. Configs are set or
// replaced wholesale; there is no partial mutation.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderConfig
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{providers: make(map[string]ProviderConfig)}
}

// Configure sets or replaces a provider's config. Idempotent.
func (r *Registry) Configure(id string, cfg ProviderConfig) {
	cfg.ID = id
	r.mu.Lock()
	r.providers[id] = cfg
	r.mu.Unlock()
}

// configSource is the YAML document shape consumed by LoadFromSource.
type configSource struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// LoadFromSource parses an external configuration blob into zero or more
// provider configs and replaces the registry contents wholesale. A malformed
// source returns a *ConfigError and leaves the registry untouched.
func (r *Registry) LoadFromSource(src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return &ConfigError{Reason: "read source", Err: err}
	}

	var doc configSource
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ConfigError{Reason: "parse source", Err: err}
	}

	next := make(map[string]ProviderConfig, len(doc.Providers))
	for _, p := range doc.Providers {
		if p.ID == "" {
			return &ConfigError{Reason: "provider entry missing id"}
		}
		next[p.ID] = p
	}

	r.mu.Lock()
	r.providers = next
	r.mu.Unlock()
	return nil
}

// IsAvailable reports whether a valid config is registered for the provider.
func (r *Registry) IsAvailable(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return ok && p.valid()
}

// BillingPolicy returns how operations through a provider are charged.
// Unknown providers default to Billed so a misconfiguration never turns
// into free usage.
func (r *Registry) BillingPolicy(id string) Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[id]; ok && !p.Billed {
		return Free
	}
	return Billed
}

// Get returns the config registered for a provider.
func (r *Registry) Get(id string) (ProviderConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// IDs returns the registered provider IDs in stable order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
