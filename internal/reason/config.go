// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package reason

import (
	"fmt"
	"time"
)

// placeholderAPIKey is the known-invalid sentinel that deployment
// templates ship with. Treat it the same as no credential at all so a
// misconfigured instance fails fast instead of burning a network call
// per request.
const placeholderAPIKey = "default_key"

// Config contains the external reasoning client configuration.
type Config struct {
	// APIKey is the text-generation API credential. Empty or the
	// placeholder sentinel disables the client.
	APIKey string `json:"api_key" koanf:"api_key"`

	// BaseURL is the API base, without a trailing slash.
	BaseURL string `json:"base_url" koanf:"base_url"`

	// Model is the model identifier appended to the base URL.
	Model string `json:"model" koanf:"model"`

	// Timeout bounds a single generateContent call.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// Temperature is the sampling temperature sent with every call.
	Temperature float64 `json:"temperature" koanf:"temperature"`

	// MaxOutputTokens bounds the model's reply length.
	MaxOutputTokens int `json:"max_output_tokens" koanf:"max_output_tokens"`

	// RequestsPerSecond throttles outbound calls.
	RequestsPerSecond float64 `json:"requests_per_second" koanf:"requests_per_second"`

	// BreakerFailures is the consecutive-failure count that opens the
	// circuit breaker.
	BreakerFailures uint32 `json:"breaker_failures" koanf:"breaker_failures"`

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration `json:"breaker_timeout" koanf:"breaker_timeout"`
}

// DefaultConfig returns the production default client configuration.
// The API key has no default; it must come from deployment config.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
		Model:             "gemma-3n-e4b-it",
		Timeout:           30 * time.Second,
		Temperature:       0.7,
		MaxOutputTokens:   1024,
		RequestsPerSecond: 2,
		BreakerFailures:   5,
		BreakerTimeout:    30 * time.Second,
	}
}

// Validate checks the configuration for invalid values. A missing API
// key is valid configuration: the client stays constructible and fails
// fast per call instead.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max output tokens must be positive, got %d", c.MaxOutputTokens)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %g", c.RequestsPerSecond)
	}
	if c.BreakerFailures == 0 {
		return fmt.Errorf("breaker failure threshold must be positive")
	}
	if c.BreakerTimeout <= 0 {
		return fmt.Errorf("breaker timeout must be positive, got %s", c.BreakerTimeout)
	}
	return nil
}

// Configured reports whether a usable credential is present.
func (c *Config) Configured() bool {
	return c.APIKey != "" && c.APIKey != placeholderAPIKey
}
