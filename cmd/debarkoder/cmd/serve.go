package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/server"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/MeKo-Tech/debarkoder/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for the decoding API",
		Long: `Start an HTTP server that provides REST API endpoints for barcode decoding.

The server provides the following endpoints:
  POST /decode/image  - Decode an uploaded image
  POST /decode/pdf    - Decode images embedded in an uploaded PDF
  POST /decode/batch  - Decode several images and PDFs in one request
  GET  /ws/decode     - Streaming decode over WebSocket
  GET  /health        - Health check endpoint
  GET  /symbologies   - List supported symbologies
  GET  /metrics       - Prometheus metrics

Examples:
  debarkoder serve
  debarkoder serve --port 8080
  debarkoder serve --host 0.0.0.0 --port 3000 --rate-limit-enabled`,
		Args: cobra.NoArgs,
		RunE: c.runServe,
	}

	f := cmd.Flags()
	f.StringP("host", "H", "localhost", "server host")
	f.IntP("port", "p", 8080, "server port")
	f.String("cors-origin", "*", "CORS allowed origins")
	f.Int("max-upload-size", 50, "maximum upload size in MB")
	f.Int("timeout", 30, "request timeout in seconds")
	f.Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	f.Int("max-batch-items", 10, "maximum items in one batch request")
	f.Bool("overlay-enable", true, "enable overlay image responses")
	f.String("overlay-color", utils.DefaultOverlayColor, "overlay highlight color (hex)")
	f.Bool("rate-limit-enabled", false, "enable rate limiting")
	f.Int("requests-per-minute", 60, "maximum requests per minute per client")
	f.Int("requests-per-hour", 1000, "maximum requests per hour per client")
	f.Int("max-requests-per-day", 0, "maximum requests per day per client (0 = unlimited)")
	f.Int64("max-data-per-day", 0, "maximum data processed per day per client in bytes (0 = unlimited)")
	addDecoderFlags(cmd)
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	cfg := c.cfg
	serverConfig := cfg.ToServerConfig(version.Version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	srv, err := server.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	timeout := time.Duration(cfg.Server.TimeoutSec) * time.Second
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	slog.Info("Starting decoding server", "host", cfg.Server.Host, "port", cfg.Server.Port,
		"rate_limit", cfg.Server.RateLimit.Enabled)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled, initiating shutdown")
	}

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	slog.Info("Starting graceful shutdown", "timeout", shutdownTimeout)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server shutdown completed")
	}

	if err := srv.Close(); err != nil {
		slog.Error("Server cleanup error", "error", err)
	}

	slog.Info("Graceful shutdown completed")
	return nil
}
