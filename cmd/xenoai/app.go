package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/emiliancristea/xeno-ai/pkg/audit"
	"github.com/emiliancristea/xeno-ai/pkg/config"
	"github.com/emiliancristea/xeno-ai/pkg/costs"
	"github.com/emiliancristea/xeno-ai/pkg/dispatch"
	"github.com/emiliancristea/xeno-ai/pkg/ledger"
	ledgersqlite "github.com/emiliancristea/xeno-ai/pkg/ledger/sqlite"
	"github.com/emiliancristea/xeno-ai/pkg/logging"
	"github.com/emiliancristea/xeno-ai/pkg/provider"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// app bundles the wired core components a command needs.
type app struct {
	cfg        *config.Config
	logger     *log.Logger
	ledger     *ledger.Ledger
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	auditor    *audit.Logger

	store *ledgersqlite.Store
}

// buildApp loads configuration and wires the ledger, registry, adapters, and
// dispatcher. Callers must Close the returned app.
func buildApp(configPath, token string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stderr)
	logging.Configure(logger, logging.Flags{Verbose: verbose, Quiet: quiet, JSON: jsonLogs})

	store, err := ledgersqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init ledger store: %w", err)
	}

	led, err := ledger.New(cfg.InitialCredits, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	reg := cfg.Registry()
	table := costs.Defaults().Merge(cfg.Costs)

	d := dispatch.New(logger, led, reg, provider.Build(reg), table)
	d.SetChain(cfg.Chain)

	if token != "" {
		w, err := dispatch.NewWallet(token)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("bind wallet: %w", err)
		}
		d.SetWallet(w)
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		ledger:     led,
		registry:   reg,
		dispatcher: d,
		store:      store,
	}

	if cfg.Audit.Enabled {
		auditor, err := audit.New(cfg.Audit)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init audit log: %w", err)
		}
		a.auditor = auditor
		d.SetAuditor(auditor)
	}

	return a, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.auditor != nil {
		if err := a.auditor.Close(); err != nil {
			a.logger.Warn("close audit log", "err", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close ledger store", "err", err)
		}
	}
}
