package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProvidersCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List configured providers and their billing policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath, "")
			if err != nil {
				return err
			}
			defer a.Close()

			ids := a.registry.IDs()
			if len(ids) == 0 {
				fmt.Println("No providers configured.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tAVAILABLE\tBILLING")
			for _, id := range ids {
				fmt.Fprintf(w, "%s\t%t\t%s\n",
					id, a.registry.IsAvailable(id), a.registry.BillingPolicy(id))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "xenoai.yaml", "path to config file")
	return cmd
}
