package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldextract/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIELDEXTRACT_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Extraction.BatchSize)
	assert.Equal(t, 3, cfg.Extraction.MaxRetries)
	assert.Equal(t, time.Second, cfg.Extraction.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Extraction.MaxDelay)
	assert.Equal(t, 2*time.Second, cfg.Extraction.RateLimitDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Extraction.StaggerDelay)
	assert.Equal(t, 2*time.Second, cfg.Extraction.InterBatchDelay)
	assert.Equal(t, 3*time.Second, cfg.Extraction.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Extraction.PollTimeout)
	assert.Equal(t, 100, cfg.Extraction.MaxFilesPerRequest)
	assert.Equal(t, int64(512*1024*1024), cfg.Extraction.MaxFileSizeBytes())
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.RemoteEnabled())
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FIELDEXTRACT_EXTRACTION_BATCH_SIZE", "8")
	t.Setenv("FIELDEXTRACT_EXTRACTION_POLL_TIMEOUT", "90s")
	t.Setenv("FIELDEXTRACT_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("FIELDEXTRACT_OPENAI_BASE_URL", "http://localhost:9999/v1/")
	t.Setenv("FIELDEXTRACT_S3_BUCKET", "docs")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Extraction.BatchSize)
	assert.Equal(t, 90*time.Second, cfg.Extraction.PollTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.BaseURL)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("FIELDEXTRACT_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-fallback", cfg.OpenAI.APIKey)
	assert.True(t, cfg.RemoteEnabled())
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	t.Setenv("FIELDEXTRACT_OPENAI_API_KEY", "sk-prefixed")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-prefixed", cfg.OpenAI.APIKey)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("FIELDEXTRACT_SERVER_PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Port)
}
