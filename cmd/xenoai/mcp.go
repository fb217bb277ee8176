package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliancristea/xeno-ai/pkg/mcp"
)

func newMCPCmd() *cobra.Command {
	var configPath, token string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose the ledger and dispatcher as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath, token)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcp.New(a.logger, a.ledger, a.registry, a.dispatcher, a.auditor, version)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "xenoai.yaml", "path to config file")
	cmd.Flags().StringVar(&token, "token", os.Getenv("XENO_AI_TOKEN"), "user token for audit attribution")
	return cmd
}
