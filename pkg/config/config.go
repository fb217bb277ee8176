// Package config loads the xenoai YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emiliancristea/xeno-ai/pkg/audit"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// Config holds all xenoai configuration.
type Config struct {
	Listen         string                    `yaml:"listen"`
	DBPath         string                    `yaml:"db_path"`
	InitialCredits int64                     `yaml:"initial_credits"`
	Chain          []string                  `yaml:"chain"`
	Providers      []registry.ProviderConfig `yaml:"providers"`
	Costs          map[string]int64          `yaml:"costs"`
	Audit          audit.Config              `yaml:"audit"`
	Metrics        bool                      `yaml:"metrics"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen:         ":8090",
		DBPath:         "xenoai.db",
		InitialCredits: 100,
		Audit: audit.Config{
			Enabled:       true,
			DBPath:        "xenoai-audit.db",
			RetentionDays: 30,
		},
		Metrics: true,
	}
}

// Load reads a YAML config file and expands environment variables, so API
// keys can stay out of the file itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Registry builds a provider registry from the configured providers.
func (c *Config) Registry() *registry.Registry {
	reg := registry.New()
	for _, p := range c.Providers {
		reg.Configure(p.ID, p)
	}
	return reg
}
