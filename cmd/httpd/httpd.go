// Package httpd implements the HTTP server command.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdcommon "github.com/jonesrussell/north-cloud/procrawler/cmd/common"
	"github.com/jonesrussell/north-cloud/procrawler/internal/api"
	"github.com/spf13/cobra"
)

const defaultShutdownTimeout = 30 * time.Second

// Command returns the httpd command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the run API and Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return Start(ctx, deps)
		},
	}
}

// Start serves until ctx is done, then drains running crawls.
func Start(ctx context.Context, deps *cmdcommon.CommandDeps) error {
	rt, err := cmdcommon.NewRuntime(ctx, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			deps.Logger.Error("Failed to close store", "error", closeErr)
		}
	}()

	log := deps.Logger.WithComponent("httpd")
	runs := api.NewRunManager(rt.Crawler, log)
	router := api.SetupRouter(log, runs, rt.MetricsHandler())
	server := api.NewServer(&deps.Config.Server, router)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
		close(errChan)
	}()

	select {
	case serveErr := <-errChan:
		if serveErr != nil {
			return fmt.Errorf("server error: %w", serveErr)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("Failed to shut down HTTP server", "error", shutdownErr)
	}
	if drainErr := runs.Shutdown(shutdownCtx); drainErr != nil {
		return fmt.Errorf("failed to stop running crawls: %w", drainErr)
	}
	log.Info("Server stopped")
	return nil
}
