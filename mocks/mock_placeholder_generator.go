package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockPlaceholderGenerator is a mock implementation of port.PlaceholderGenerator.
type MockPlaceholderGenerator struct {
	mock.Mock
}

func (m *MockPlaceholderGenerator) Generate(documentName string, fieldNames []string) map[string]any {
	args := m.Called(documentName, fieldNames)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]any)
}
