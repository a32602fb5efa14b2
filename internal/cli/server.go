package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/refereehq/refereed/internal/config"
	"github.com/refereehq/refereed/internal/logging"
	"github.com/refereehq/refereed/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the refereed daemon",
	Long: `Start the refereed daemon: seeds or restores the ledger, then serves
JSON-RPC, WebSocket subscriptions, and optionally gRPC health checks until
interrupted.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = runServer
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	daemon, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return daemon.Run(ctx)
}
