package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
)

// EnsureDirectories ensures all required directories exist
func (c *Config) EnsureDirectories() error {
	if c.Store.Type != "file" {
		return nil
	}
	return os.MkdirAll(c.Store.Dir, 0755)
}

// GetModelPath returns the full path for a model snapshot file
func (c *Config) GetModelPath(filename string) string {
	return filepath.Join(c.Store.Dir, filename)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}
