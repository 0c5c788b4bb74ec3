package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldextract/internal/domain"
	"fieldextract/internal/placeholder"
	"fieldextract/internal/port"
	"fieldextract/internal/service"
	"fieldextract/mocks"
)

func TestExtractionService_Validation(t *testing.T) {
	clk := newClock()
	svc := service.NewExtractionService(nil, placeholder.New(clk), clk,
		service.ExtractionServiceConfig{MaxDocuments: 3}, discardLogger())

	_, err := svc.ExtractBatch(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)

	_, err = svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{Documents: makeDocs(4)})
	assert.ErrorIs(t, err, domain.ErrTooManyDocuments)
}

func TestExtractionService_RemoteDisabled(t *testing.T) {
	clk := newClock()
	svc := service.NewExtractionService(nil, placeholder.New(clk), clk,
		service.ExtractionServiceConfig{}, discardLogger())
	assert.False(t, svc.RemoteEnabled())

	resp, err := svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{
		Documents: makeDocs(6),
		Fields:    domain.FieldRequest{Names: []string{"Document Number", "Colour"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.TotalProcessed)
	assert.Equal(t, 6, resp.SuccessCount)
	assert.True(t, resp.IsUsingMockData)
	assert.Equal(t, domain.BatchInfo{BatchSize: 5, TotalBatches: 2}, resp.BatchInfo)
	fields := resp.Results[0].ExtractedFields.(map[string]any)
	assert.Equal(t, "FBA15K01N1JKF", fields["Document Number"])
	assert.Equal(t, "Sample Colour", fields["Colour"])
	assert.Len(t, fields, 2)
}

func TestExtractionService_RemoteDisabledDocumentWithoutPayload(t *testing.T) {
	clk := newClock()
	svc := service.NewExtractionService(nil, placeholder.New(clk), clk,
		service.ExtractionServiceConfig{}, discardLogger())

	resp, err := svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{
		Documents: []domain.Document{
			{Name: "dc-01.pdf", Payload: []byte("%PDF")},
			{Name: "blank.pdf"},
		},
		Fields: fieldReq,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.True(t, resp.Results[0].Success)

	blank := resp.Results[1]
	assert.Equal(t, "blank.pdf", blank.Name)
	assert.False(t, blank.Success)
	assert.True(t, blank.IsUsingMockData)
	assert.Equal(t, "No PDF data provided for this file", blank.Error)
	assert.Equal(t, map[string]any{}, blank.ExtractedFields)
}

func TestExtractionService_RemoteDisabledUnreadablePayload(t *testing.T) {
	clk := newClock()
	svc := service.NewExtractionService(nil, placeholder.New(clk), clk,
		service.ExtractionServiceConfig{}, discardLogger())

	resp, err := svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{
		Documents: []domain.Document{{Name: "garbled.pdf", InputErr: domain.ErrInvalidFileFormat}},
		Fields:    fieldReq,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Zero(t, resp.SuccessCount)
	assert.Equal(t, "invalid file format", resp.Results[0].Error)
	assert.Len(t, resp.Results[0].ExtractedFields, 2)
}

func TestExtractionService_UsesScheduler(t *testing.T) {
	clk := newClock()
	gen := new(mocks.MockPlaceholderGenerator)
	scheduler := newScheduler(echoExtractor(), clk)
	svc := service.NewExtractionService(scheduler, gen, clk, service.ExtractionServiceConfig{}, discardLogger())
	assert.True(t, svc.RemoteEnabled())

	resp, err := svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{Documents: makeDocs(2), Fields: fieldReq})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.SuccessCount)
	assert.False(t, resp.IsUsingMockData)
	assert.Equal(t, domain.BatchInfo{BatchSize: 5, TotalBatches: 1}, resp.BatchInfo)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtractionService_EndToEnd(t *testing.T) {
	clk := newClock()
	remote := new(mocks.MockRemoteExtractor)
	remote.On("CreateTemplate", mock.Anything, fieldReq.Names).Return(port.Template{ID: "asst-1"}, nil).Once()
	remote.On("Upload", mock.Anything, mock.Anything).Return("file-1", nil)
	remote.On("CreateContext", mock.Anything).Return("thread-1", nil)
	remote.On("SubmitJob", mock.Anything, mock.Anything).Return(jobHandle, nil)
	remote.On("PollStatus", mock.Anything, jobHandle).Return(port.JobState{Status: domain.JobStatusCompleted}, nil)
	remote.On("FetchOutput", mock.Anything, "thread-1").Return(`[{"Item":"Lock","Qty":"2"}]`, nil)
	remote.On("Release", mock.Anything, mock.Anything).Return(nil)

	templates := service.NewTemplateCache(remote, time.Minute, discardLogger())
	driver := service.NewJobDriver(remote, templates, nil, clk, service.JobDriverConfig{}, discardLogger())
	retrying := service.NewRetryingExtractor(driver, clk, service.RetryConfig{}, discardLogger())
	svc := service.NewExtractionService(newScheduler(retrying, clk), placeholder.New(clk), clk,
		service.ExtractionServiceConfig{MaxDocuments: 20}, discardLogger())

	docs := []domain.Document{
		{Name: "challan-1.pdf", Payload: []byte("%PDF-1.4")},
		{Name: "missing.pdf"},
		{Name: "challan-3.pdf", Payload: []byte("%PDF-1.4")},
	}
	resp, err := svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{Documents: docs, Fields: fieldReq})
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, 3, resp.TotalProcessed)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.True(t, resp.IsUsingMockData)

	first := resp.Results[0].ExtractedFields.([]domain.LineItemRecord)
	assert.Equal(t, "challan-1_1.json", first[0].Filename)
	assert.Equal(t, "Lock", first[0].Data["Item"])
	assert.Equal(t, "No PDF data provided for this file", resp.Results[1].Error)
	assert.Equal(t, "challan-3.pdf", resp.Results[2].Name)

	remote.AssertNumberOfCalls(t, "CreateTemplate", 1)
	remote.AssertNumberOfCalls(t, "Upload", 2)
	remote.AssertNumberOfCalls(t, "Release", 4)
}

func runMixedBatch(t *testing.T) *domain.BatchResponse {
	t.Helper()
	clk := newClock()
	named := func(name string) any {
		return mock.MatchedBy(func(in port.UploadInput) bool { return in.Name == name })
	}
	remote := new(mocks.MockRemoteExtractor)
	remote.On("CreateTemplate", mock.Anything, fieldReq.Names).Return(port.Template{ID: "asst-1"}, nil)
	remote.On("Upload", mock.Anything, named("broken.pdf")).Return("", domain.ErrUnsupportedFileType)
	remote.On("Upload", mock.Anything, named("challan-1.pdf")).Return("file-1", nil)
	remote.On("CreateContext", mock.Anything).Return("thread-1", nil)
	remote.On("SubmitJob", mock.Anything, mock.Anything).Return(jobHandle, nil)
	remote.On("PollStatus", mock.Anything, jobHandle).Return(port.JobState{Status: domain.JobStatusCompleted}, nil)
	remote.On("FetchOutput", mock.Anything, "thread-1").Return(`[{"Item":"Lock","Qty":"2"}]`, nil)
	remote.On("Release", mock.Anything, mock.Anything).Return(nil)

	templates := service.NewTemplateCache(remote, time.Minute, discardLogger())
	driver := service.NewJobDriver(remote, templates, nil, clk, service.JobDriverConfig{}, discardLogger())
	retrying := service.NewRetryingExtractor(driver, clk, service.RetryConfig{}, discardLogger())
	svc := service.NewExtractionService(newScheduler(retrying, clk), placeholder.New(clk), clk,
		service.ExtractionServiceConfig{}, discardLogger())

	resp, err := svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{
		Documents: []domain.Document{
			{Name: "challan-1.pdf", Payload: []byte("%PDF-1.4")},
			{Name: "broken.pdf", Payload: []byte("%PDF-1.4")},
			{Name: "missing.pdf"},
		},
		Fields: fieldReq,
	})
	require.NoError(t, err)
	return resp
}

func TestExtractionService_RepeatedBatchesMatch(t *testing.T) {
	first := runMixedBatch(t)
	second := runMixedBatch(t)

	require.Len(t, first.Results, 3)
	assert.True(t, first.Results[0].Success)
	assert.False(t, first.Results[1].Success)
	assert.Contains(t, first.Results[1].Error, "unsupported file format")
	assert.Equal(t, "No PDF data provided for this file", first.Results[2].Error)
	assert.Equal(t, first, second)
}
