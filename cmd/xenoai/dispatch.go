package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliancristea/xeno-ai/pkg/models"
)

func newDispatchCmd() *cobra.Command {
	var configPath, token, operation, prompt, model string
	var chain []string

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Dispatch a single AI request through the provider chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath, token)
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.dispatcher.Dispatch(context.Background(), models.AIRequest{
				Prompt:        prompt,
				OperationType: operation,
				Model:         model,
			}, chain)

			if !resp.Success {
				return fmt.Errorf("dispatch failed: %s", resp.Error)
			}

			fmt.Printf("Provider: %s\nCredits used: %d\nBalance: %d\n\n%s\n",
				resp.Provider, resp.CreditsUsed, a.ledger.Balance(), resp.Content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "xenoai.yaml", "path to config file")
	cmd.Flags().StringVar(&token, "token", os.Getenv("XENO_AI_TOKEN"), "user token for audit attribution")
	cmd.Flags().StringVar(&operation, "op", models.OpChat, "operation type")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt to send")
	cmd.Flags().StringVar(&model, "model", "", "model hint passed to the provider")
	cmd.Flags().StringSliceVar(&chain, "chain", nil, "ordered provider IDs to try")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}
