package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// Logging flags shared by every command.
var (
	verbose  bool
	quiet    bool
	jsonLogs bool
)

func main() {
	root := &cobra.Command{
		Use:     "xenoai",
		Short:   "Xeno AI — credit ledger and AI-request dispatch service",
		Version: version,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log in JSON format")

	root.AddCommand(
		newServeCmd(),
		newBalanceCmd(),
		newGrantCmd(),
		newHistoryCmd(),
		newDispatchCmd(),
		newProvidersCmd(),
		newMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
