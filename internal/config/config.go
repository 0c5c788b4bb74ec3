package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	CORS       CORSConfig
	OpenAI     OpenAIConfig
	Extraction ExtractionConfig
	S3         S3Config
}

// RemoteEnabled reports whether a remote extraction service is configured.
// Without it every document is answered with placeholder data.
func (c *Config) RemoteEnabled() bool {
	return c.OpenAI.APIKey != ""
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
	MaxBodyMB       int64         `mapstructure:"max_body_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenAIConfig holds settings for the OpenAI Assistants API.
type OpenAIConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	AssistantName string `mapstructure:"assistant_name"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
}

// ExtractionConfig holds batch scheduling, retry and polling settings.
type ExtractionConfig struct {
	BatchSize            int           `mapstructure:"batch_size"`
	MaxRetries           int           `mapstructure:"max_retries"`
	InitialDelay         time.Duration `mapstructure:"initial_delay"`
	MaxDelay             time.Duration `mapstructure:"max_delay"`
	RateLimitDelay       time.Duration `mapstructure:"rate_limit_delay"`
	StaggerDelay         time.Duration `mapstructure:"stagger_delay"`
	InterBatchDelay      time.Duration `mapstructure:"inter_batch_delay"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	PollTimeout          time.Duration `mapstructure:"poll_timeout"`
	TransportMaxAttempts int           `mapstructure:"transport_max_attempts"`
	MaxFileSizeMB        int64         `mapstructure:"max_file_size_mb"`
	MaxFilesPerRequest   int           `mapstructure:"max_files_per_request"`
	CleanupTimeout       time.Duration `mapstructure:"cleanup_timeout"`
	TemplateTimeout      time.Duration `mapstructure:"template_timeout"`
}

// MaxFileSizeBytes returns the per-document payload limit in bytes.
func (e *ExtractionConfig) MaxFileSizeBytes() int64 {
	return e.MaxFileSizeMB * 1024 * 1024
}

// S3Config holds AWS S3 settings for documents referenced by object key.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled reports whether a default bucket is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Load reads configuration from environment variables with the FIELDEXTRACT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FIELDEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30m")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_body_mb", 1024)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "*")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.assistant_name", "Batch Invoice Extractor")
	v.SetDefault("openai.timeout_secs", 120)

	// Extraction defaults
	v.SetDefault("extraction.batch_size", 5)
	v.SetDefault("extraction.max_retries", 3)
	v.SetDefault("extraction.initial_delay", "1s")
	v.SetDefault("extraction.max_delay", "30s")
	v.SetDefault("extraction.rate_limit_delay", "2s")
	v.SetDefault("extraction.stagger_delay", "500ms")
	v.SetDefault("extraction.inter_batch_delay", "2s")
	v.SetDefault("extraction.poll_interval", "3s")
	v.SetDefault("extraction.poll_timeout", "5m")
	v.SetDefault("extraction.transport_max_attempts", 3)
	v.SetDefault("extraction.max_file_size_mb", 512)
	v.SetDefault("extraction.max_files_per_request", 100)
	v.SetDefault("extraction.cleanup_timeout", "30s")
	v.SetDefault("extraction.template_timeout", "60s")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "FIELDEXTRACT_SERVER_PORT",
		"server.read_timeout":               "FIELDEXTRACT_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "FIELDEXTRACT_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":           "FIELDEXTRACT_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":                "FIELDEXTRACT_SERVER_ENVIRONMENT",
		"server.max_body_mb":                "FIELDEXTRACT_SERVER_MAX_BODY_MB",
		"log.level":                         "FIELDEXTRACT_LOG_LEVEL",
		"log.format":                        "FIELDEXTRACT_LOG_FORMAT",
		"cors.allowed_origins":              "FIELDEXTRACT_CORS_ALLOWED_ORIGINS",
		"openai.base_url":                   "FIELDEXTRACT_OPENAI_BASE_URL",
		"openai.model":                      "FIELDEXTRACT_OPENAI_MODEL",
		"openai.assistant_name":             "FIELDEXTRACT_OPENAI_ASSISTANT_NAME",
		"openai.timeout_secs":               "FIELDEXTRACT_OPENAI_TIMEOUT_SECS",
		"extraction.batch_size":             "FIELDEXTRACT_EXTRACTION_BATCH_SIZE",
		"extraction.max_retries":            "FIELDEXTRACT_EXTRACTION_MAX_RETRIES",
		"extraction.initial_delay":          "FIELDEXTRACT_EXTRACTION_INITIAL_DELAY",
		"extraction.max_delay":              "FIELDEXTRACT_EXTRACTION_MAX_DELAY",
		"extraction.rate_limit_delay":       "FIELDEXTRACT_EXTRACTION_RATE_LIMIT_DELAY",
		"extraction.stagger_delay":          "FIELDEXTRACT_EXTRACTION_STAGGER_DELAY",
		"extraction.inter_batch_delay":      "FIELDEXTRACT_EXTRACTION_INTER_BATCH_DELAY",
		"extraction.poll_interval":          "FIELDEXTRACT_EXTRACTION_POLL_INTERVAL",
		"extraction.poll_timeout":           "FIELDEXTRACT_EXTRACTION_POLL_TIMEOUT",
		"extraction.transport_max_attempts": "FIELDEXTRACT_EXTRACTION_TRANSPORT_MAX_ATTEMPTS",
		"extraction.max_file_size_mb":       "FIELDEXTRACT_EXTRACTION_MAX_FILE_SIZE_MB",
		"extraction.max_files_per_request":  "FIELDEXTRACT_EXTRACTION_MAX_FILES_PER_REQUEST",
		"extraction.cleanup_timeout":        "FIELDEXTRACT_EXTRACTION_CLEANUP_TIMEOUT",
		"extraction.template_timeout":       "FIELDEXTRACT_EXTRACTION_TEMPLATE_TIMEOUT",
		"s3.region":                         "FIELDEXTRACT_S3_REGION",
		"s3.bucket":                         "FIELDEXTRACT_S3_BUCKET",
		"s3.endpoint":                       "FIELDEXTRACT_S3_ENDPOINT",
		"s3.access_key":                     "FIELDEXTRACT_S3_ACCESS_KEY",
		"s3.secret_key":                     "FIELDEXTRACT_S3_SECRET_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	// The conventional OpenAI variable is accepted as a fallback.
	_ = v.BindEnv("openai.api_key", "FIELDEXTRACT_OPENAI_API_KEY", "OPENAI_API_KEY")

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FIELDEXTRACT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FIELDEXTRACT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
		MaxBodyMB:       v.GetInt64("server.max_body_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.OpenAI = OpenAIConfig{
		APIKey:        v.GetString("openai.api_key"),
		BaseURL:       strings.TrimRight(v.GetString("openai.base_url"), "/"),
		Model:         v.GetString("openai.model"),
		AssistantName: v.GetString("openai.assistant_name"),
		TimeoutSecs:   v.GetInt("openai.timeout_secs"),
	}
	cfg.Extraction = ExtractionConfig{
		BatchSize:            v.GetInt("extraction.batch_size"),
		MaxRetries:           v.GetInt("extraction.max_retries"),
		InitialDelay:         v.GetDuration("extraction.initial_delay"),
		MaxDelay:             v.GetDuration("extraction.max_delay"),
		RateLimitDelay:       v.GetDuration("extraction.rate_limit_delay"),
		StaggerDelay:         v.GetDuration("extraction.stagger_delay"),
		InterBatchDelay:      v.GetDuration("extraction.inter_batch_delay"),
		PollInterval:         v.GetDuration("extraction.poll_interval"),
		PollTimeout:          v.GetDuration("extraction.poll_timeout"),
		TransportMaxAttempts: v.GetInt("extraction.transport_max_attempts"),
		MaxFileSizeMB:        v.GetInt64("extraction.max_file_size_mb"),
		MaxFilesPerRequest:   v.GetInt("extraction.max_files_per_request"),
		CleanupTimeout:       v.GetDuration("extraction.cleanup_timeout"),
		TemplateTimeout:      v.GetDuration("extraction.template_timeout"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	return cfg, nil
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
