package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. ARFORECAST_MODEL_ORDER.
const EnvPrefix = "ARFORECAST"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")               // Current directory
		v.AddConfigPath("./configs")       // Project configs directory
		v.AddConfigPath("/etc/arforecast") // System-wide config
	}

	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	v.SetDefault("model.order", d.Model.Order)
	v.SetDefault("model.method", d.Model.Method)
	v.SetDefault("model.horizon", d.Model.Horizon)
	v.SetDefault("model.max_horizon", d.Model.MaxHorizon)
	v.SetDefault("model.confidence", d.Model.Confidence)
	v.SetDefault("model.min_data_points", d.Model.MinDataPoints)
	v.SetDefault("model.diagnostic_lags", d.Model.DiagnosticLags)
	v.SetDefault("model.interval", d.Model.Interval)
	v.SetDefault("model.outliers", d.Model.Outliers)
	v.SetDefault("model.outlier_threshold", d.Model.OutlierThreshold)
	v.SetDefault("model.batch_workers", d.Model.BatchWorkers)
	v.SetDefault("model.max_batch_size", d.Model.MaxBatchSize)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("store.compress", d.Store.Compress)
	v.SetDefault("store.redis_url", d.Store.RedisURL)
	v.SetDefault("store.key_prefix", d.Store.KeyPrefix)

	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.subject", d.Queue.Subject)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("auth.enabled", d.Auth.Enabled)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Model.Method = strings.ToLower(cfg.Model.Method)
	cfg.Model.Outliers = strings.ToLower(cfg.Model.Outliers)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     5580,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			BodyLimit:    8 * 1024 * 1024,
		},
		Model: ModelConfig{
			Order:          12,
			Method:         "css",
			Horizon:        24,
			MaxHorizon:     1000,
			Confidence:     0.95,
			MinDataPoints:  26,
			DiagnosticLags: 24,
			Interval:       30 * 24 * time.Hour,
			Outliers:       "zscore",
			BatchWorkers:   4,
			MaxBatchSize:   64,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    256,
			TTL:     10 * time.Minute,
		},
		Store: StoreConfig{
			Type:      "file",
			Dir:       "./data/models",
			Compress:  true,
			KeyPrefix: "arforecast:model:",
		},
		Queue: QueueConfig{
			Type:        "memory",
			Subject:     "arforecast.forecasts",
			RedisStream: "arforecast",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
