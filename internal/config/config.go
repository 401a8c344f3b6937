package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxImageBytes is the largest decoded image the create function accepts
const MaxImageBytes = 5 * 1024 * 1024

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Search    SearchConfig    `yaml:"search"`
	Upload    UploadConfig    `yaml:"upload"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
	Web       WebConfig       `yaml:"web"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port                   string `yaml:"port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains database settings.
// Type is one of "postgres" (database/sql + lib/pq), "gorm-postgres" or "mysql".
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// StorageConfig contains the S3-compatible object store settings
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	// PublicBaseURL is prefixed to "<bucket>/<path>" to build public object URLs,
	// e.g. https://<project>.supabase.co/storage/v1/object/public
	PublicBaseURL string `yaml:"public_base_url"`
	UsePathStyle  bool   `yaml:"use_path_style"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
	Breaker     BreakerConfig     `yaml:"breaker"`
}

// BreakerConfig contains circuit breaker settings for search calls
type BreakerConfig struct {
	MaxFailures    int `yaml:"max_failures"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// UploadConfig contains image upload limits
type UploadConfig struct {
	MaxImageBytes int `yaml:"max_image_bytes"`
	MaxImages     int `yaml:"max_images"`
}

// RateLimitConfig contains rate limiting settings for the create function
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
	// Per-client token bucket, keyed by client IP
	ClientRequestsPerMinute int `yaml:"client_requests_per_minute"`
	ClientBurst             int `yaml:"client_burst"`
}

// AuthConfig contains access-token verification settings.
// An empty JWTSecret disables verification.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Required  bool   `yaml:"required"`
}

// CORSConfig contains allowed origins for the dashboard API
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	LogRequests bool   `yaml:"log_requests"`
}

// WebConfig contains dashboard and service worker settings
type WebConfig struct {
	Title              string `yaml:"title"`
	ServiceWorkerPath  string `yaml:"service_worker_path"`
	ServiceWorkerScope string `yaml:"service_worker_scope"`
}

// SchedulerConfig contains settings for the nightly search reindex
type SchedulerConfig struct {
	ReindexEnabled    bool   `yaml:"reindex_enabled"`
	ReindexTime       string `yaml:"reindex_time"` // HH:MM, server local time
	RunTimeoutMinutes int    `yaml:"run_timeout_minutes"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   "8084",
			ShutdownTimeoutSeconds: 15,
		},
		Database: DatabaseConfig{
			Type: "postgres",
			Postgres: PostgresConfig{
				SSLMode: "disable",
			},
		},
		Storage: StorageConfig{
			Region: "us-east-1",
			Bucket: "propertyimage",
		},
		Search: SearchConfig{
			Enabled: false,
			Meilisearch: MeilisearchConfig{
				Index: "properties",
			},
			Breaker: BreakerConfig{
				MaxFailures:    3,
				TimeoutSeconds: 30,
			},
		},
		Upload: UploadConfig{
			MaxImageBytes: MaxImageBytes,
			MaxImages:     20,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			RequestsPerHour:   600,

			ClientRequestsPerMinute: 10,
			ClientBurst:             3,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
		Web: WebConfig{
			Title:              "Propo",
			ServiceWorkerPath:  "/service-worker.js",
			ServiceWorkerScope: "/",
		},
		Scheduler: SchedulerConfig{
			ReindexEnabled:    false,
			ReindexTime:       "03:00",
			RunTimeoutMinutes: 30,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// GetMaxImageBytes returns the per-image limit, falling back to 5MB
func (c *UploadConfig) GetMaxImageBytes() int {
	if c.MaxImageBytes <= 0 {
		return MaxImageBytes
	}
	return c.MaxImageBytes
}

// GetTimeout returns how long an open breaker waits before probing again
func (c *BreakerConfig) GetTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetRunTimeout returns how long a scheduled reindex may run
func (c *SchedulerConfig) GetRunTimeout() time.Duration {
	if c.RunTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.RunTimeoutMinutes) * time.Minute
}
