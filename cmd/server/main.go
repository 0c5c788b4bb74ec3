package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"fieldextract/internal/app"
	"fieldextract/internal/clock"
	"fieldextract/internal/config"
	"fieldextract/internal/handler"
	"fieldextract/internal/logging"
	"fieldextract/internal/router"
)

// @title Field Extraction API
// @version 1.0
// @description Batch extraction of structured fields from PDF documents.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	extractSvc := app.NewExtractionService(cfg, clk, logger)

	storage, err := app.NewObjectStorage(ctx, cfg)
	if err != nil {
		return err
	}

	// Initialize handlers
	normalizer := handler.NewNormalizer(storage, cfg.S3.Bucket, cfg.Extraction.MaxFilesPerRequest, logger)
	extractH := handler.NewExtractHandler(extractSvc, normalizer, clk, cfg.Server.MaxBodyMB*1024*1024, logger)
	healthH := handler.NewHealthHandler(extractSvc.RemoteEnabled())

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.Setup(logger, cfg.CORS.AllowedOrigins, extractH, healthH),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "remote", extractSvc.RemoteEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
