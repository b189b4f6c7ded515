package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage provider identifiers accepted by STORAGE_PROVIDER.
const (
	ProviderMinIO    = "minio"
	ProviderSupabase = "supabase"
)

// Config aggregates runtime configuration for the file-sender API.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	MinIO    MinIOConfig
	Supabase SupabaseConfig
	Upload   UploadConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the object store backend.
type StorageConfig struct {
	Provider string
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	// PublicBaseURL is the browser-facing prefix for stored objects,
	// e.g. "http://localhost:9000/uploads". Empty means derive it from
	// the client endpoint.
	PublicBaseURL string
}

// SupabaseConfig carries Supabase Storage project credentials.
type SupabaseConfig struct {
	ProjectURL string
	ServiceKey string
	Bucket     string
}

// UploadConfig groups ingestion limits.
type UploadConfig struct {
	MaxFileSizeMB int64
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (u UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("FILESENDER_API_HOST", "0.0.0.0"),
			Port:         getInt("FILESENDER_API_PORT", 8080),
			ReadTimeout:  getDuration("FILESENDER_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("FILESENDER_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("FILESENDER_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			Provider: strings.ToLower(getString("STORAGE_PROVIDER", ProviderMinIO)),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "filesender"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "uploads"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
			PublicBaseURL:   getString("MINIO_PUBLIC_BASE", ""),
		},
		Supabase: SupabaseConfig{
			ProjectURL: getString("SUPABASE_URL", ""),
			ServiceKey: getString("SUPABASE_SERVICE_KEY", ""),
			Bucket:     getString("SUPABASE_BUCKET", "uploads"),
		},
		Upload: UploadConfig{
			MaxFileSizeMB: int64(getInt("UPLOAD_MAX_SIZE_MB", 10)),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("FILESENDER_METRICS_PATH", "/metrics"),
		},
	}

	switch cfg.Storage.Provider {
	case ProviderMinIO, ProviderSupabase:
	default:
		return Config{}, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}

	if cfg.Storage.Provider == ProviderSupabase && cfg.Supabase.ProjectURL == "" {
		return Config{}, fmt.Errorf("SUPABASE_URL is required for the supabase provider")
	}

	if cfg.Upload.MaxFileSizeMB <= 0 {
		return Config{}, fmt.Errorf("UPLOAD_MAX_SIZE_MB must be positive, got %d", cfg.Upload.MaxFileSizeMB)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
