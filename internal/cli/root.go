// Package cli defines the refereed command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "refereed",
	Short: "refereed - multi-team wagering escrow daemon",
	Long: `refereed runs a wagering escrow ledger: games register fee
configurations, open sessions with fixed rosters, collect entry fees into
per-session vaults, and settle players through refunds and payouts.

The daemon exposes JSON-RPC and WebSocket endpoints, and optionally gRPC
health checks for orchestration.`,
	Version: "0.1.0",
}

// Execute runs the command tree. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level (debug, info, warn, error)")
}
