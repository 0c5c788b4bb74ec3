package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldextract/internal/port"
)

// MockRemoteExtractor is a mock implementation of port.RemoteExtractor.
type MockRemoteExtractor struct {
	mock.Mock
}

func (m *MockRemoteExtractor) Upload(ctx context.Context, input port.UploadInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteExtractor) CreateContext(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteExtractor) SubmitJob(ctx context.Context, input port.SubmitInput) (port.JobHandle, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(port.JobHandle), args.Error(1)
}

func (m *MockRemoteExtractor) PollStatus(ctx context.Context, handle port.JobHandle) (port.JobState, error) {
	args := m.Called(ctx, handle)
	return args.Get(0).(port.JobState), args.Error(1)
}

func (m *MockRemoteExtractor) FetchOutput(ctx context.Context, contextID string) (string, error) {
	args := m.Called(ctx, contextID)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteExtractor) Release(ctx context.Context, res port.Resource) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockRemoteExtractor) CreateTemplate(ctx context.Context, fieldNames []string) (port.Template, error) {
	args := m.Called(ctx, fieldNames)
	return args.Get(0).(port.Template), args.Error(1)
}
