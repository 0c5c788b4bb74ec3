package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldextract/internal/app"
	"fieldextract/internal/clock"
	"fieldextract/internal/config"
	"fieldextract/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Extraction: config.ExtractionConfig{
			BatchSize:          5,
			MaxFilesPerRequest: 10,
			MaxFileSizeMB:      1,
		},
	}
}

func TestNewExtractionService_PlaceholderMode(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := app.NewExtractionService(testConfig(), clock.New(), logger)
	assert.False(t, svc.RemoteEnabled())

	resp, err := svc.ExtractBatch(context.Background(), &domain.ExtractionRequest{
		Documents: []domain.Document{{Name: "dc-3.pdf", Payload: []byte("%PDF")}},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsUsingMockData)
	assert.Equal(t, 1, resp.SuccessCount)
}

func TestNewExtractionService_RemoteMode(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAI.APIKey = "sk-test"
	svc := app.NewExtractionService(cfg, clock.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.True(t, svc.RemoteEnabled())
}

func TestNewObjectStorage_DisabledWithoutBucket(t *testing.T) {
	storage, err := app.NewObjectStorage(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Nil(t, storage)
}
