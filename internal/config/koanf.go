// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an explicit config file, bypassing the
// default search paths.
const ConfigPathEnvVar = "PISHNAHAD_CONFIG"

// envPrefix namespaces every configuration environment variable.
const envPrefix = "PISHNAHAD_"

// DefaultConfigPaths are searched in order when no explicit path is set.
var DefaultConfigPaths = []string{
	"pishnahad.yaml",
	"/etc/pishnahad/pishnahad.yaml",
}

// Load assembles the configuration from defaults, an optional YAML
// file, and environment variables, then validates it. Precedence:
// ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps environment variable names (after the PISHNAHAD_
// prefix is stripped and the name lowercased) to config paths. An
// explicit table avoids guessing where underscores become dots in
// multi-word keys like api_key.
var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"server_cors_origins":     "server.cors_origins",
	"server_rate_limit":       "server.rate_limit",
	"server_rate_window":      "server.rate_window",
	"server_ingest_token":     "server.ingest_token",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"store_path":      "store.path",
	"store_in_memory": "store.in_memory",

	"reason_api_key":             "reason.api_key",
	"reason_base_url":            "reason.base_url",
	"reason_model":               "reason.model",
	"reason_timeout":             "reason.timeout",
	"reason_temperature":         "reason.temperature",
	"reason_max_output_tokens":   "reason.max_output_tokens",
	"reason_requests_per_second": "reason.requests_per_second",
	"reason_breaker_failures":    "reason.breaker_failures",
	"reason_breaker_timeout":     "reason.breaker_timeout",

	"similarity_same_type_weight":      "recommend.similarity.same_type",
	"similarity_year_proximity_weight": "recommend.similarity.year_proximity",
	"similarity_year_window":           "recommend.similarity.year_window",
	"similarity_shared_genre_weight":   "recommend.similarity.shared_genre",
	"similarity_shared_tag_weight":     "recommend.similarity.shared_tag",
	"profile_top_genres":               "recommend.profile.top_genres",
	"limit_default_count":              "recommend.limits.default_count",
	"limit_max_count":                  "recommend.limits.max_count",
	"limit_prompt_catalog_max":         "recommend.limits.prompt_catalog_max",
}

func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if path, ok := envMappings[key]; ok {
		return path
	}
	// Unknown variables are dropped rather than guessed at.
	return ""
}

// sliceConfigPaths lists the paths parsed as comma-separated slices
// when sourced from a single environment variable string.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
