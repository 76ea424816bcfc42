// Package config provides client configuration loaded from environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds connection and tracing settings. Everything has a usable
// default; environment variables exist so scripts and CI can retarget the
// client without flags.
type Config struct {
	// DebugURL is the base HTTP URL of the host's debug server.
	DebugURL string `envconfig:"LIMN_DEBUG_URL" default:"http://127.0.0.1:9222"`

	// Target selection (empty = attach to the first listed page).
	TargetTitle string `envconfig:"LIMN_TARGET_TITLE"`
	TargetURL   string `envconfig:"LIMN_TARGET_URL"`

	// Timeouts
	ConnectTimeout time.Duration `envconfig:"LIMN_CONNECT_TIMEOUT" default:"10s"`
	RequestTimeout time.Duration `envconfig:"LIMN_REQUEST_TIMEOUT" default:"30s"`

	// TraceDB enables the exchange log when set to a SQLite path.
	TraceDB string `envconfig:"LIMN_TRACE_DB"`

	// Logging
	LogLevel string `envconfig:"LIMN_LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.DebugURL == "" {
		return fmt.Errorf("config: LIMN_DEBUG_URL must not be empty")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("config: LIMN_CONNECT_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: LIMN_REQUEST_TIMEOUT must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown LIMN_LOG_LEVEL %q", c.LogLevel)
	}
}
