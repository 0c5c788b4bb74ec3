package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldextract/internal/domain"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractBatch(ctx context.Context, req *domain.ExtractionRequest) (*domain.BatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResponse), args.Error(1)
}

func (m *MockExtractionService) RemoteEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}
