package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the current credit balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath, "")
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Printf("Balance: %d credits\n", a.ledger.Balance())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "xenoai.yaml", "path to config file")
	return cmd
}

func newGrantCmd() *cobra.Command {
	var configPath, reason string
	var amount int64

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Add credits to the balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath, "")
			if err != nil {
				return err
			}
			defer a.Close()

			tx, err := a.ledger.AddCredits(context.Background(), amount, reason)
			if err != nil {
				return fmt.Errorf("add credits: %w", err)
			}

			fmt.Printf("Added %d credits (transaction %d). Balance: %d\n",
				tx.Delta, tx.ID, a.ledger.Balance())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "xenoai.yaml", "path to config file")
	cmd.Flags().Int64Var(&amount, "amount", 0, "credits to add")
	cmd.Flags().StringVar(&reason, "reason", "credit_purchase", "reason recorded on the transaction")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var configPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent credit transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath, "")
			if err != nil {
				return err
			}
			defer a.Close()

			txs := a.ledger.History(limit)
			if len(txs) == 0 {
				fmt.Println("No transactions recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tOPERATION\tDELTA")
			for _, tx := range txs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%+d\n",
					tx.ID, tx.CreatedAt.Format("2006-01-02 15:04:05"), tx.Operation, tx.Delta)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "xenoai.yaml", "path to config file")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum transactions to show")
	return cmd
}
