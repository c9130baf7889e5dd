package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Model   ModelConfig   `mapstructure:"model"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Store   StoreConfig   `mapstructure:"store"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"` // Max request body in bytes
}

// ModelConfig holds the defaults applied to forecast requests that leave a
// field unset.
type ModelConfig struct {
	Order          int           `mapstructure:"order"`           // Autoregressive order p (default: 12)
	Method         string        `mapstructure:"method"`          // css or ml
	Horizon        int           `mapstructure:"horizon"`         // Steps ahead (default: 24)
	MaxHorizon     int           `mapstructure:"max_horizon"`     // Upper bound accepted from requests
	Confidence     float64       `mapstructure:"confidence"`      // Interval coverage (default: 0.95)
	MinDataPoints  int           `mapstructure:"min_data_points"` // Minimum series length
	DiagnosticLags int           `mapstructure:"diagnostic_lags"` // Ljung-Box lags, 0 disables
	Interval       time.Duration `mapstructure:"interval"`        // Spacing used when timestamps are absent

	Outliers         string  `mapstructure:"outliers"`          // Residual outlier detector: zscore, iqr, none
	OutlierThreshold float64 `mapstructure:"outlier_threshold"` // 0 for the detector's default

	BatchWorkers int `mapstructure:"batch_workers"`  // Concurrent fits per batch request
	MaxBatchSize int `mapstructure:"max_batch_size"` // Requests accepted per batch
}

// CacheConfig configures the in-process cache of forecast results
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Size    int           `mapstructure:"size"` // Max cached entries
	TTL     time.Duration `mapstructure:"ttl"`
}

// StoreConfig configures persistence of fitted models
type StoreConfig struct {
	Type      string        `mapstructure:"type"`       // file (default), redis, memory, none
	Dir       string        `mapstructure:"dir"`        // Directory for the file store
	Compress  bool          `mapstructure:"compress"`   // Snappy-compress file snapshots
	RedisURL  string        `mapstructure:"redis_url"`  // e.g., redis://localhost:6379/0
	KeyPrefix string        `mapstructure:"key_prefix"` // Redis key prefix (default: "arforecast:model:")
	TTL       time.Duration `mapstructure:"ttl"`        // Redis expiry, 0 keeps models forever
}

// QueueConfig represents the event queue that receives forecast notifications
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: memory (default), nats, redis, kafka, none
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication
	Subject  string `mapstructure:"subject"`  // Subject/stream/topic for forecast events

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`     // Redis database number (default: 0)
	RedisStream string `mapstructure:"redis_stream"` // Redis stream prefix (default: "arforecast")

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit cannot be negative")
	}
	return nil
}

// Validate validates model defaults
func (c *ModelConfig) Validate() error {
	if c.Order < 1 {
		return fmt.Errorf("model.order must be at least 1")
	}

	switch strings.ToLower(c.Method) {
	case "css", "ml":
	default:
		return fmt.Errorf("model.method must be 'css' or 'ml'")
	}

	if c.Horizon < 1 {
		return fmt.Errorf("model.horizon must be at least 1")
	}

	if c.MaxHorizon < c.Horizon {
		return fmt.Errorf("model.max_horizon cannot be less than model.horizon")
	}

	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("model.confidence must lie in (0, 1)")
	}

	if c.DiagnosticLags < 0 {
		return fmt.Errorf("model.diagnostic_lags cannot be negative")
	}

	switch strings.ToLower(c.Outliers) {
	case "", "none", "zscore", "iqr":
	default:
		return fmt.Errorf("model.outliers must be 'zscore', 'iqr' or 'none'")
	}

	if c.OutlierThreshold < 0 {
		return fmt.Errorf("model.outlier_threshold cannot be negative")
	}

	if c.BatchWorkers < 1 {
		return fmt.Errorf("model.batch_workers must be at least 1")
	}

	if c.MaxBatchSize < 1 {
		return fmt.Errorf("model.max_batch_size must be at least 1")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Size <= 0 {
		return fmt.Errorf("cache.size must be positive")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	switch c.Type {
	case "file":
		if c.Dir == "" {
			return fmt.Errorf("store.dir is required for the file store")
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis store")
		}
	case "memory", "none", "":
	default:
		return fmt.Errorf("store.type must be one of: file, redis, memory, none")
	}
	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "memory", "none", "":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("queue.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 && c.URL == "" {
			return fmt.Errorf("queue.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("queue.type must be one of: memory, nats, redis, kafka, none")
	}

	if c.Type != "none" && c.Type != "" && c.Subject == "" {
		return fmt.Errorf("queue.subject is required")
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
