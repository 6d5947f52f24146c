package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/meetsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/meetsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/meetsync/internal/logger"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the periodic sync scheduler",
	Long: `Starts the dashboard read API and the background scheduler that
syncs the calendar on an interval. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "",
		"listen address (overrides server.addr config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Credentials may be absent on a fresh install; the read API still
	// serves whatever was synced before.
	app, err := newApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	addr := flagServeAddr
	if addr == "" {
		addr = app.config.GetString(configfile.KeyHTTPAddr)
	}

	server := httpapi.NewServer(
		httpapi.Config{
			Addr:      addr,
			RateLimit: app.config.GetInt(configfile.KeyHTTPRateLimit),
		},
		app.meetings,
		app.sync,
		app.proposals,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errCh := make(chan error, 2)

	go func() {
		errCh <- server.Start()
	}()
	go func() {
		errCh <- app.scheduler.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			logger.Warn("Component failed: %v", err)
		}
	}

	// Stop the scheduler first so no new sync starts mid-shutdown.
	cancel()
	if err := app.scheduler.Stop(); err != nil {
		logger.Warn("Scheduler shutdown: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown: %v", err)
	}

	cmd.Println("Shutdown complete.")
	return nil
}
