package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fieldextract/internal/metrics"
	"fieldextract/internal/port"
)

const templateKey = "template"

// TemplateCache lazily creates one remote job template and reuses it for the
// life of the process. Concurrent first callers share a single creation; a
// failed creation is forgotten so the next caller tries again.
type TemplateCache struct {
	remote  port.RemoteExtractor
	timeout time.Duration
	logger  *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	value *port.Template
}

// NewTemplateCache creates a TemplateCache. timeout bounds each creation
// attempt independently of the caller that triggered it.
func NewTemplateCache(remote port.RemoteExtractor, timeout time.Duration, logger *slog.Logger) *TemplateCache {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &TemplateCache{
		remote:  remote,
		timeout: timeout,
		logger:  logger.With("component", "template_cache"),
	}
}

// GetOrCreate returns the cached template, creating it if needed.
func (c *TemplateCache) GetOrCreate(ctx context.Context, fieldNames []string) (port.Template, error) {
	if t, ok := c.cached(); ok {
		return t, nil
	}

	// The creation outlives any single waiter so that one caller's
	// cancellation does not fail the others sharing the flight.
	createCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(templateKey, func() (any, error) {
		if t, ok := c.cached(); ok {
			return t, nil
		}
		cctx, cancel := context.WithTimeout(createCtx, c.timeout)
		defer cancel()

		t, err := c.remote.CreateTemplate(cctx, fieldNames)
		if err != nil {
			metrics.TemplateCreations.WithLabelValues("error").Inc()
			c.logger.Error("template creation failed", "error", err)
			return port.Template{}, err
		}
		metrics.TemplateCreations.WithLabelValues("ok").Inc()
		c.logger.Info("created reusable template", "template_id", t.ID)

		c.mu.Lock()
		c.value = &t
		c.mu.Unlock()
		return t, nil
	})

	select {
	case <-ctx.Done():
		return port.Template{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return port.Template{}, res.Err
		}
		return res.Val.(port.Template), nil
	}
}

// Reset drops the cached template so the next call creates a new one.
func (c *TemplateCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
}

func (c *TemplateCache) cached() (port.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil {
		return port.Template{}, false
	}
	return *c.value, true
}
