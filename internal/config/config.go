// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

// Package config loads the service configuration from layered sources:
// built-in defaults, an optional YAML file, and PISHNAHAD_* environment
// variables, in ascending precedence.
package config

import (
	"fmt"
	"time"

	"github.com/tamasha-vod/pishnahad/internal/reason"
	"github.com/tamasha-vod/pishnahad/internal/recommend"
)

// Config is the root service configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Logging   LoggingConfig    `koanf:"logging"`
	Store     StoreConfig      `koanf:"store"`
	Reason    reason.Config    `koanf:"reason"`
	Recommend recommend.Config `koanf:"recommend"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins. Empty disables CORS.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is the per-client request budget per RateWindow.
	// Zero disables rate limiting.
	RateLimit  int           `koanf:"rate_limit"`
	RateWindow time.Duration `koanf:"rate_window"`

	// IngestToken guards the snapshot push endpoints. Empty leaves
	// them open, for development only.
	IngestToken string `koanf:"ingest_token"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`

	// Caller annotates log lines with file:line.
	Caller bool `koanf:"caller"`
}

// StoreConfig configures the snapshot store.
type StoreConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// InMemory skips disk persistence entirely.
	InMemory bool `koanf:"in_memory"`
}

// defaultConfig returns the built-in defaults, the lowest configuration
// layer.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8490,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       300,
			RateWindow:      time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Path: "/data/pishnahad",
		},
		Reason:    reason.DefaultConfig(),
		Recommend: *recommend.DefaultConfig(),
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative, got %d", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive when rate limiting is enabled")
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store path is required for a persistent store")
	}
	if err := c.Reason.Validate(); err != nil {
		return fmt.Errorf("reason: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}
