package transport

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fieldextract/internal/backoff"
	"fieldextract/internal/metrics"
	"fieldextract/internal/port"
)

// Config bounds retries for a single logical remote call.
type Config struct {
	MaxAttempts   int
	RateLimitBase time.Duration
	InitialDelay  time.Duration
	MaxDelay      time.Duration
}

// DefaultConfig mirrors the remote service's documented limits.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		RateLimitBase: 2 * time.Second,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
	}
}

// Transport issues remote calls with bounded retries, honoring rate-limit hints.
type Transport struct {
	cfg      Config
	clock    port.Clock
	logger   *slog.Logger
	cooldown *cooldown
}

// New creates a Transport. Zero config fields fall back to DefaultConfig.
func New(cfg Config, clk port.Clock, logger *slog.Logger) *Transport {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RateLimitBase <= 0 {
		cfg.RateLimitBase = def.RateLimitBase
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	return &Transport{
		cfg:      cfg,
		clock:    clk,
		logger:   logger.With("component", "transport"),
		cooldown: &cooldown{},
	}
}

// Do runs call until it succeeds, fails with a non-retryable error, or the
// attempt bound is reached. The last observed error is returned on exhaustion.
func (t *Transport) Do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < t.cfg.MaxAttempts; attempt++ {
		if err := t.waitCooldown(ctx, op); err != nil {
			return err
		}

		err := call(ctx)
		if err == nil {
			metrics.RemoteCalls.WithLabelValues(op, "ok").Inc()
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			metrics.RemoteCalls.WithLabelValues(op, "cancelled").Inc()
			return err
		}

		final := attempt == t.cfg.MaxAttempts-1
		var wait time.Duration
		var rl *RateLimitError
		switch {
		case errors.As(err, &rl):
			metrics.RemoteCalls.WithLabelValues(op, "rate_limited").Inc()
			metrics.RateLimitWaits.WithLabelValues(op).Inc()
			if rl.RetryAfter > 0 {
				wait = rl.RetryAfter
				t.cooldown.open(t.clock.Now().Add(wait))
			} else {
				wait = t.cfg.RateLimitBase * time.Duration(attempt+1)
			}
			t.logger.Warn("rate limited", "op", op, "attempt", attempt+1, "wait", wait)
		case IsRetryable(err):
			metrics.RemoteCalls.WithLabelValues(op, "retryable_error").Inc()
			wait = backoff.NextDelay(attempt+1, t.cfg.InitialDelay, t.cfg.MaxDelay)
			t.logger.Warn("remote call failed", "op", op, "attempt", attempt+1, "wait", wait, "error", err)
		default:
			metrics.RemoteCalls.WithLabelValues(op, "error").Inc()
			return err
		}

		if final {
			break
		}
		if err := t.clock.Sleep(ctx, wait); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func (t *Transport) waitCooldown(ctx context.Context, op string) error {
	now := t.clock.Now()
	resetAt, open := t.cooldown.isOpenWithReset(now)
	if !open {
		return nil
	}
	wait := resetAt.Sub(now)
	// A caller that cannot outlast the pause sends immediately rather than
	// never sending at all; cleanup calls depend on this.
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= wait {
		t.logger.Warn("cooldown outlasts caller deadline, sending now", "op", op, "wait", wait)
		return nil
	}
	t.logger.Debug("waiting out shared rate-limit cooldown", "op", op, "wait", wait)
	return t.clock.Sleep(ctx, wait)
}
