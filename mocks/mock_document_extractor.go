package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldextract/internal/domain"
)

// MockDocumentExtractor is a mock implementation of service.DocumentExtractor.
type MockDocumentExtractor struct {
	mock.Mock
}

func (m *MockDocumentExtractor) Extract(ctx context.Context, doc domain.Document, fields domain.FieldRequest) ([]domain.LineItemRecord, error) {
	args := m.Called(ctx, doc, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItemRecord), args.Error(1)
}
