package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/emiliancristea/xeno-ai/pkg/metrics"
	"github.com/emiliancristea/xeno-ai/pkg/server"
)

func newServeCmd() *cobra.Command {
	var configPath, token string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the credit ledger and dispatch HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath, token)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(a.logger, a.cfg.Listen, a.ledger, a.dispatcher, a.registry)

			if a.cfg.Metrics {
				promReg := prometheus.NewRegistry()
				m := metrics.New(promReg)
				m.SetBalance(a.ledger.Balance())
				a.dispatcher.SetMetrics(m)
				srv.EnableMetrics(promReg)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "xenoai.yaml", "path to config file")
	cmd.Flags().StringVar(&token, "token", os.Getenv("XENO_AI_TOKEN"), "user token for audit attribution")
	return cmd
}
