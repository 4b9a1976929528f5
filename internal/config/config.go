package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"payfile-synth/internal/logger"
)

// Config is the application configuration
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Storage    StorageConfig    `toml:"storage"`
	Generation GenerationConfig `toml:"generation"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig configures the HTTP and JSON-RPC listener
type ServerConfig struct {
	Port                  int `toml:"port"`
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	RateLimitPerMinute    int `toml:"rate_limit_per_minute"`
}

// StorageConfig configures where generated files are written
type StorageConfig struct {
	OutputDir string `toml:"output_dir"`
}

// GenerationConfig bounds generation requests
type GenerationConfig struct {
	MaxRows int `toml:"max_rows"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  8080,
			RequestTimeoutSeconds: 30,
			RateLimitPerMinute:    60,
		},
		Storage: StorageConfig{
			OutputDir: "output",
		},
		Generation: GenerationConfig{
			MaxRows: 100000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path or a missing file leaves the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("could not read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("could not parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PAYFILE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PAYFILE_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("PAYFILE_OUTPUT_DIR"); v != "" {
		c.Storage.OutputDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("server.request_timeout_seconds must be positive")
	}
	if c.Server.RateLimitPerMinute < 1 {
		return fmt.Errorf("server.rate_limit_per_minute must be positive")
	}
	if c.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir is required")
	}
	if c.Generation.MaxRows < 1 {
		return fmt.Errorf("generation.max_rows must be positive")
	}
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// Save validates the configuration and writes it as TOML
func Save(path string, c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
