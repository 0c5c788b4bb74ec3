package app

import (
	"context"
	"fmt"
	"log/slog"

	"fieldextract/internal/config"
	"fieldextract/internal/parser"
	"fieldextract/internal/placeholder"
	"fieldextract/internal/port"
	"fieldextract/internal/remote/openai"
	"fieldextract/internal/service"
	s3storage "fieldextract/internal/storage/s3"
	"fieldextract/internal/transport"
)

// NewExtractionService wires the extraction pipeline from configuration.
// Without an API key the service answers every document with placeholder data.
func NewExtractionService(cfg *config.Config, clk port.Clock, logger *slog.Logger) service.ExtractionService {
	ex := cfg.Extraction
	placeholders := placeholder.New(clk)

	var scheduler *service.BatchScheduler
	if cfg.RemoteEnabled() {
		tr := transport.New(transport.Config{
			MaxAttempts:   ex.TransportMaxAttempts,
			RateLimitBase: ex.RateLimitDelay,
			InitialDelay:  ex.InitialDelay,
			MaxDelay:      ex.MaxDelay,
		}, clk, logger)
		remote := openai.NewClient(&cfg.OpenAI, tr)

		templates := service.NewTemplateCache(remote, ex.TemplateTimeout, logger)
		driver := service.NewJobDriver(remote, templates, parser.NewPDFInspector(), clk, service.JobDriverConfig{
			PollInterval:   ex.PollInterval,
			PollTimeout:    ex.PollTimeout,
			MaxFileSize:    ex.MaxFileSizeBytes(),
			CleanupTimeout: ex.CleanupTimeout,
		}, logger)
		retrying := service.NewRetryingExtractor(driver, clk, service.RetryConfig{
			MaxAttempts:  ex.MaxRetries,
			InitialDelay: ex.InitialDelay,
			MaxDelay:     ex.MaxDelay,
		}, logger)
		scheduler = service.NewBatchScheduler(retrying, placeholders, clk, service.SchedulerConfig{
			GroupSize:       ex.BatchSize,
			StaggerDelay:    ex.StaggerDelay,
			InterGroupDelay: ex.InterBatchDelay,
		}, logger)
	} else {
		logger.Warn("no OpenAI API key configured, serving placeholder data")
	}

	return service.NewExtractionService(scheduler, placeholders, clk, service.ExtractionServiceConfig{
		MaxDocuments: ex.MaxFilesPerRequest,
		GroupSize:    ex.BatchSize,
	}, logger)
}

// NewObjectStorage returns the S3 document source, or nil when no bucket is configured.
func NewObjectStorage(ctx context.Context, cfg *config.Config) (port.ObjectStorage, error) {
	if !cfg.S3.Enabled() {
		return nil, nil
	}
	storage, err := s3storage.NewS3Client(ctx, &cfg.S3, cfg.Extraction.MaxFileSizeBytes())
	if err != nil {
		return nil, fmt.Errorf("initializing S3 client: %w", err)
	}
	return storage, nil
}
