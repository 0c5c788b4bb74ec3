package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fieldextract/internal/domain"
	"fieldextract/internal/metrics"
	"fieldextract/internal/parser"
	"fieldextract/internal/port"
	"fieldextract/internal/transport"
)

// DocumentExtractor extracts line items from a single document.
type DocumentExtractor interface {
	Extract(ctx context.Context, doc domain.Document, fields domain.FieldRequest) ([]domain.LineItemRecord, error)
}

// JobDriverConfig holds per-job limits.
type JobDriverConfig struct {
	PollInterval   time.Duration
	PollTimeout    time.Duration
	MaxFileSize    int64
	CleanupTimeout time.Duration
}

// JobDriver runs one document through the remote job lifecycle:
// upload, submit, poll, fetch and cleanup. Every remote resource it creates
// is released before Extract returns.
type JobDriver struct {
	remote    port.RemoteExtractor
	templates *TemplateCache
	inspector port.PayloadInspector
	clock     port.Clock
	cfg       JobDriverConfig
	logger    *slog.Logger
}

// NewJobDriver creates a JobDriver. inspector may be nil.
func NewJobDriver(
	remote port.RemoteExtractor,
	templates *TemplateCache,
	inspector port.PayloadInspector,
	clk port.Clock,
	cfg JobDriverConfig,
	logger *slog.Logger,
) *JobDriver {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Minute
	}
	if cfg.CleanupTimeout <= 0 {
		cfg.CleanupTimeout = 30 * time.Second
	}
	return &JobDriver{
		remote:    remote,
		templates: templates,
		inspector: inspector,
		clock:     clk,
		cfg:       cfg,
		logger:    logger.With("component", "job_driver"),
	}
}

// job is the mutable state of a single Extract call.
type job struct {
	doc       domain.Document
	stage     domain.JobStage
	resources []port.Resource
	logger    *slog.Logger
}

func (j *job) enter(stage domain.JobStage) {
	j.stage = stage
	j.logger.Debug("job stage", "stage", stage)
}

func (j *job) fail(err error) error {
	return fmt.Errorf("%s: %w", j.stage, err)
}

func (d *JobDriver) Extract(ctx context.Context, doc domain.Document, fields domain.FieldRequest) (records []domain.LineItemRecord, err error) {
	if doc.InputErr != nil {
		return nil, doc.InputErr
	}
	if !doc.HasPayload() {
		return nil, domain.ErrNoPayload
	}
	if d.cfg.MaxFileSize > 0 && int64(len(doc.Payload)) > d.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", domain.ErrFileTooLarge, doc.Name, len(doc.Payload), d.cfg.MaxFileSize)
	}
	if d.inspector != nil {
		if err := d.inspector.Inspect(doc.Name, doc.Payload); err != nil {
			return nil, err
		}
	}

	j := &job{doc: doc, logger: d.logger.With("document", doc.Name)}
	j.enter(domain.StageCreated)
	start := d.clock.Now()
	defer func() {
		d.cleanup(ctx, j)
		outcome := "succeeded"
		if err != nil {
			outcome = "failed"
			j.enter(domain.StageFailed)
		} else {
			j.enter(domain.StageSucceeded)
		}
		metrics.JobOutcomes.WithLabelValues(outcome).Inc()
		metrics.JobDuration.WithLabelValues(outcome).Observe(d.clock.Now().Sub(start).Seconds())
	}()

	j.enter(domain.StageUploading)
	fileID, err := d.remote.Upload(ctx, port.UploadInput{Name: doc.Name, Payload: doc.Payload})
	if err != nil {
		return nil, j.fail(err)
	}
	j.resources = append(j.resources, port.Resource{Kind: port.ResourceFile, ID: fileID})

	j.enter(domain.StageSubmitting)
	template, err := d.templates.GetOrCreate(ctx, fields.Names)
	if err != nil {
		return nil, j.fail(err)
	}
	contextID, err := d.remote.CreateContext(ctx)
	if err != nil {
		return nil, j.fail(err)
	}
	j.resources = append(j.resources, port.Resource{Kind: port.ResourceContext, ID: contextID})

	handle, err := d.remote.SubmitJob(ctx, port.SubmitInput{
		ContextID:    contextID,
		FileID:       fileID,
		TemplateID:   template.ID,
		DocumentName: doc.Name,
		FieldNames:   fields.Names,
		AreaHint:     fields.AreaHint,
	})
	if err != nil {
		var se *transport.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			// the shared template was deleted remotely; recreate it next time
			d.templates.Reset()
		}
		return nil, j.fail(err)
	}

	j.enter(domain.StagePolling)
	if err := d.awaitCompletion(ctx, handle, d.clock.Now().Add(d.cfg.PollTimeout)); err != nil {
		return nil, j.fail(err)
	}

	j.enter(domain.StageFetching)
	text, err := d.remote.FetchOutput(ctx, contextID)
	if err != nil {
		return nil, j.fail(err)
	}
	items, err := parser.ParseLineItems(text, fields.Names)
	if err != nil {
		return nil, j.fail(err)
	}
	return parser.BuildRecords(doc.Name, items), nil
}

// awaitCompletion polls until the job reaches a terminal status or deadline passes.
func (d *JobDriver) awaitCompletion(ctx context.Context, handle port.JobHandle, deadline time.Time) error {
	for {
		state, err := d.remote.PollStatus(ctx, handle)
		if err != nil {
			return err
		}
		switch state.Status {
		case domain.JobStatusCompleted:
			return nil
		case domain.JobStatusFailed, domain.JobStatusCancelled, domain.JobStatusExpired:
			reason := state.Reason
			if reason == "" {
				reason = "Unknown error"
			}
			return fmt.Errorf("%w: run %s: %s", domain.ErrRemoteJobFailed, state.Status, reason)
		}

		now := d.clock.Now()
		if !now.Before(deadline) {
			return domain.ErrProcessingTimeout
		}
		wait := d.cfg.PollInterval
		if remaining := deadline.Sub(now); remaining < wait {
			wait = remaining
		}
		if err := d.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// cleanup releases every resource the job created, newest first. It runs on
// a context detached from cancellation so a disconnected caller still
// leaves no remote state behind. Release failures are logged, never returned.
func (d *JobDriver) cleanup(ctx context.Context, j *job) {
	if len(j.resources) == 0 {
		return
	}
	j.enter(domain.StageCleanup)
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.CleanupTimeout)
	defer cancel()

	for i := len(j.resources) - 1; i >= 0; i-- {
		res := j.resources[i]
		if err := d.remote.Release(cctx, res); err != nil {
			metrics.ResourceReleases.WithLabelValues(string(res.Kind), "error").Inc()
			j.logger.Warn("resource cleanup failed", "kind", res.Kind, "id", res.ID, "error", err)
			continue
		}
		metrics.ResourceReleases.WithLabelValues(string(res.Kind), "ok").Inc()
	}
}
