package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fieldextract/internal/backoff"
	"fieldextract/internal/domain"
	"fieldextract/internal/metrics"
	"fieldextract/internal/port"
)

// RetryConfig bounds job-level retries.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// RetryingExtractor retries a DocumentExtractor with exponential backoff,
// giving up immediately on failures that a retry cannot fix.
type RetryingExtractor struct {
	next   DocumentExtractor
	clock  port.Clock
	cfg    RetryConfig
	logger *slog.Logger
}

// NewRetryingExtractor wraps next with retries.
func NewRetryingExtractor(next DocumentExtractor, clk port.Clock, cfg RetryConfig, logger *slog.Logger) *RetryingExtractor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	return &RetryingExtractor{
		next:   next,
		clock:  clk,
		cfg:    cfg,
		logger: logger.With("component", "retry"),
	}
}

func (r *RetryingExtractor) Extract(ctx context.Context, doc domain.Document, fields domain.FieldRequest) ([]domain.LineItemRecord, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff.NextDelay(attempt, r.cfg.InitialDelay, r.cfg.MaxDelay)
			r.logger.Info("retrying document", "document", doc.Name, "attempt", attempt+1, "delay", delay)
			metrics.JobRetries.Inc()
			if err := r.clock.Sleep(ctx, delay); err != nil {
				return nil, lastErr
			}
		}

		records, err := r.next.Extract(ctx, doc, fields)
		if err == nil {
			return records, nil
		}
		lastErr = err
		if ctx.Err() != nil || !IsRetryableJobError(err) {
			return nil, err
		}
		r.logger.Warn("document attempt failed", "document", doc.Name, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

var permanentJobErrors = []error{
	domain.ErrNoPayload,
	domain.ErrFileTooLarge,
	domain.ErrUnsupportedFileType,
	domain.ErrInvalidFileFormat,
	domain.ErrEmptyOutput,
	domain.ErrInvalidOutput,
}

var permanentJobMessages = []string{
	"file too large",
	"invalid file format",
	"unsupported file format",
}

// IsRetryableJobError reports whether a whole-job failure is worth retrying.
// Oversized or unreadable documents and unusable model output are not.
func IsRetryableJobError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	for _, target := range permanentJobErrors {
		if errors.Is(err, target) {
			return false
		}
	}
	msg := strings.ToLower(err.Error())
	for _, m := range permanentJobMessages {
		if strings.Contains(msg, m) {
			return false
		}
	}
	return true
}
