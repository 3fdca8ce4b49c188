package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfoliosync/api"
	"portfoliosync/logger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API and the sync trigger",
	Long: `Serve the portfolio read endpoints, POST /api/sync, /healthz and /metrics on
PORT. With SYNC_INTERVAL set the full pipeline also runs on that interval.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go waitForShutdown(cancel)

	a, err := newApp(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	var syncer api.Syncer
	if a.svc != nil {
		syncer = a.svc
		a.svc.StartScheduler(ctx, cfg.SyncInterval)
	}

	logger.Info("Starting server",
		zap.String("port", cfg.Port),
		zap.Bool("store_configured", cfg.HasStore()),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled))

	return api.NewServer(cfg, a.store, syncer, a.metrics).Run(ctx, ":"+cfg.Port)
}

// waitForShutdown cancels on SIGINT or SIGTERM.
func waitForShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received, initiating graceful shutdown")
	cancel()
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}
