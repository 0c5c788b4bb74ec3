package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fieldextract/internal/domain"
	"fieldextract/internal/metrics"
	"fieldextract/internal/port"
)

// SchedulerConfig controls batch partitioning and pacing.
type SchedulerConfig struct {
	GroupSize       int
	StaggerDelay    time.Duration
	InterGroupDelay time.Duration
}

// BatchScheduler runs documents in sequential fixed-size groups. Documents in a
// group run concurrently with staggered starts. Every document yields exactly
// one result, in input order.
type BatchScheduler struct {
	extractor    DocumentExtractor
	placeholders port.PlaceholderGenerator
	clock        port.Clock
	cfg          SchedulerConfig
	logger       *slog.Logger
}

// NewBatchScheduler creates a BatchScheduler.
func NewBatchScheduler(
	extractor DocumentExtractor,
	placeholders port.PlaceholderGenerator,
	clk port.Clock,
	cfg SchedulerConfig,
	logger *slog.Logger,
) *BatchScheduler {
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = 5
	}
	return &BatchScheduler{
		extractor:    extractor,
		placeholders: placeholders,
		clock:        clk,
		cfg:          cfg,
		logger:       logger.With("component", "batch_scheduler"),
	}
}

// GroupSize returns the configured group size.
func (s *BatchScheduler) GroupSize() int {
	return s.cfg.GroupSize
}

// Partition splits docs into consecutive groups of at most size documents.
func Partition(docs []domain.Document, size int) [][]domain.Document {
	if size <= 0 {
		size = 1
	}
	groups := make([][]domain.Document, 0, domain.GroupCount(len(docs), size))
	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		groups = append(groups, docs[start:end])
	}
	return groups
}

// Run processes every document and returns one result per document in input order.
func (s *BatchScheduler) Run(ctx context.Context, docs []domain.Document, fields domain.FieldRequest) []domain.DocumentResult {
	groups := Partition(docs, s.cfg.GroupSize)
	results := make([]domain.DocumentResult, 0, len(docs))

	for gi, group := range groups {
		s.logger.Info("processing group", "group", gi+1, "groups", len(groups), "documents", len(group))

		groupResults, err := s.runGroup(ctx, group, fields)
		if err != nil {
			metrics.GroupDegradations.Inc()
			s.logger.Error("group failed, substituting placeholders", "group", gi+1, "error", err)
			groupResults = make([]domain.DocumentResult, len(group))
			for i, doc := range group {
				groupResults[i] = s.placeholderResult(doc, fields, fmt.Sprintf("Batch processing failed: %v", err))
			}
		}
		results = append(results, groupResults...)

		if gi < len(groups)-1 && s.cfg.InterGroupDelay > 0 {
			if err := s.clock.Sleep(ctx, s.cfg.InterGroupDelay); err != nil {
				s.logger.Warn("inter-group wait interrupted", "error", err)
			}
		}
	}
	return results
}

// runGroup runs one group concurrently. An error means the group as a whole
// broke down; ordinary document failures are folded into their results.
func (s *BatchScheduler) runGroup(ctx context.Context, group []domain.Document, fields domain.FieldRequest) ([]domain.DocumentResult, error) {
	results := make([]domain.DocumentResult, len(group))
	var g errgroup.Group
	g.SetLimit(s.cfg.GroupSize)

	for i, doc := range group {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("processing %s panicked: %v", doc.Name, r)
				}
			}()
			results[i] = s.processDocument(ctx, i, doc, fields)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *BatchScheduler) processDocument(ctx context.Context, index int, doc domain.Document, fields domain.FieldRequest) domain.DocumentResult {
	if doc.InputErr != nil {
		return s.placeholderResult(doc, fields, doc.InputErr.Error())
	}
	if !doc.HasPayload() {
		metrics.DocumentResults.WithLabelValues("no_payload").Inc()
		return domain.NoPayloadResult(doc.Name)
	}

	if stagger := s.cfg.StaggerDelay * time.Duration(index); stagger > 0 {
		if err := s.clock.Sleep(ctx, stagger); err != nil {
			return s.placeholderResult(doc, fields, err.Error())
		}
	}

	records, err := s.extractor.Extract(ctx, doc, fields)
	if err != nil {
		s.logger.Error("document failed", "document", doc.Name, "error", err)
		return s.placeholderResult(doc, fields, err.Error())
	}
	if records == nil {
		records = []domain.LineItemRecord{}
	}
	metrics.DocumentResults.WithLabelValues("extracted").Inc()
	return domain.DocumentResult{
		Name:            doc.Name,
		Success:         true,
		ExtractedFields: records,
		IsUsingMockData: false,
	}
}

func (s *BatchScheduler) placeholderResult(doc domain.Document, fields domain.FieldRequest, msg string) domain.DocumentResult {
	metrics.DocumentResults.WithLabelValues("placeholder").Inc()
	return domain.DocumentResult{
		Name:            doc.Name,
		Success:         false,
		Error:           msg,
		ExtractedFields: s.placeholders.Generate(doc.Name, fields.Names),
		IsUsingMockData: true,
	}
}
