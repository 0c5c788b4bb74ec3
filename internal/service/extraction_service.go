package service

import (
	"context"
	"fmt"
	"log/slog"

	"fieldextract/internal/domain"
	"fieldextract/internal/metrics"
	"fieldextract/internal/port"
)

// ExtractionService defines the batch extraction operation.
type ExtractionService interface {
	ExtractBatch(ctx context.Context, req *domain.ExtractionRequest) (*domain.BatchResponse, error)
	RemoteEnabled() bool
}

// ExtractionServiceConfig holds request-level limits.
type ExtractionServiceConfig struct {
	MaxDocuments int
	GroupSize    int
}

type extractionService struct {
	scheduler    *BatchScheduler
	placeholders port.PlaceholderGenerator
	clock        port.Clock
	cfg          ExtractionServiceConfig
	logger       *slog.Logger
}

// NewExtractionService creates an ExtractionService. A nil scheduler means no
// remote service is configured and every document receives placeholder data.
func NewExtractionService(
	scheduler *BatchScheduler,
	placeholders port.PlaceholderGenerator,
	clk port.Clock,
	cfg ExtractionServiceConfig,
	logger *slog.Logger,
) ExtractionService {
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = 5
		if scheduler != nil {
			cfg.GroupSize = scheduler.GroupSize()
		}
	}
	return &extractionService{
		scheduler:    scheduler,
		placeholders: placeholders,
		clock:        clk,
		cfg:          cfg,
		logger:       logger.With("component", "extraction_service"),
	}
}

func (s *extractionService) RemoteEnabled() bool {
	return s.scheduler != nil
}

func (s *extractionService) ExtractBatch(ctx context.Context, req *domain.ExtractionRequest) (*domain.BatchResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	start := s.clock.Now()
	s.logger.Info("processing batch",
		"documents", len(req.Documents),
		"fields", len(req.Fields.Names),
		"remote", s.RemoteEnabled(),
	)

	var results []domain.DocumentResult
	if s.scheduler != nil {
		results = s.scheduler.Run(ctx, req.Documents, req.Fields)
	} else {
		results = s.placeholderBatch(req)
	}

	resp := domain.NewBatchResponse(results, s.cfg.GroupSize)
	metrics.BatchDuration.Observe(s.clock.Now().Sub(start).Seconds())
	s.logger.Info("completed batch",
		"success", resp.SuccessCount,
		"total", resp.TotalProcessed,
		"mock_data", resp.IsUsingMockData,
	)
	return resp, nil
}

func (s *extractionService) validate(req *domain.ExtractionRequest) error {
	if req == nil {
		return fmt.Errorf("%w: missing request", domain.ErrInvalidRequest)
	}
	if len(req.Documents) == 0 {
		return domain.ErrEmptyBatch
	}
	if s.cfg.MaxDocuments > 0 && len(req.Documents) > s.cfg.MaxDocuments {
		return fmt.Errorf("%w: maximum %d documents allowed per request, got %d",
			domain.ErrTooManyDocuments, s.cfg.MaxDocuments, len(req.Documents))
	}
	return nil
}

// placeholderBatch answers every document with placeholder data when no remote
// service is configured. These count as successful since nothing failed, except
// documents that arrived without data or with unreadable data.
func (s *extractionService) placeholderBatch(req *domain.ExtractionRequest) []domain.DocumentResult {
	results := make([]domain.DocumentResult, len(req.Documents))
	for i, doc := range req.Documents {
		if doc.InputErr == nil && !doc.HasPayload() {
			metrics.DocumentResults.WithLabelValues("no_payload").Inc()
			results[i] = domain.NoPayloadResult(doc.Name)
			continue
		}
		metrics.DocumentResults.WithLabelValues("placeholder").Inc()
		results[i] = domain.DocumentResult{
			Name:            doc.Name,
			Success:         doc.InputErr == nil,
			ExtractedFields: s.placeholders.Generate(doc.Name, req.Fields.Names),
			IsUsingMockData: true,
		}
		if doc.InputErr != nil {
			results[i].Error = doc.InputErr.Error()
		}
	}
	return results
}
