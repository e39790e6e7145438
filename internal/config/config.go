package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DBPath   string `envconfig:"SMM_DB_PATH" default:"./data/panel.sqlite"`
	Port     int    `envconfig:"SMM_PORT" default:"8080"`
	LogLevel string `envconfig:"SMM_LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"SMM_LOG_DIR" default:"./logs"`

	// Diagnostic endpoints. Overridable so operators behind strict egress
	// policies can point these at their own infrastructure.
	IPEchoURL     string `envconfig:"SMM_IP_ECHO_URL" default:"https://api.ipify.org"`
	HTTPProbeURL  string `envconfig:"SMM_HTTP_PROBE_URL" default:"http://www.google.com"`
	HTTPSProbeURL string `envconfig:"SMM_HTTPS_PROBE_URL" default:"https://www.google.com"`

	// Default markup applied when an import does not specify one.
	DefaultProfitPct float64 `envconfig:"SMM_DEFAULT_PROFIT_PCT" default:"20"`
}

// Load reads configuration from .env file (if present) then from environment variables.
// Environment variables override .env values.
func Load() (*Config, error) {
	// godotenv does NOT override already-set env vars, so real environment
	// variables take precedence over .env values.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("failed to load .env file", "error", err)
		} else {
			slog.Info("loaded .env file")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be 1-65535, got %d", ErrInvalidConfig, c.Port)
	}
	if c.DefaultProfitPct < 0 {
		return fmt.Errorf("%w: default profit percentage must be >= 0, got %v", ErrInvalidConfig, c.DefaultProfitPct)
	}
	return nil
}
