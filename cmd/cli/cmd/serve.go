// Package cmd - serve command
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sms-cost/api"
	"sms-cost/internal/config"
	"sms-cost/internal/logging"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the cost API over HTTP.

Endpoints:
  POST /compute                 price a quantity against posted bands
  GET  /subjects/{id}/cost      cost statement for ?period=YYYY-MM
  POST /subjects/{id}/usage     add usage for a period
  GET  /health, GET /version`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	backends, err := openBackends(ctx)
	if err != nil {
		return err
	}
	defer backends.Close()

	logger := logging.Logger
	handler := api.NewServer(backends.Service(cfg, logger), api.Options{
		Version: version,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("version", version),
			zap.String("bands", string(cfg.Bands.Source)),
			zap.String("usage", string(cfg.Usage.Source)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logging.Sync()
	return nil
}
