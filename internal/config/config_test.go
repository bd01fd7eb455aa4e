// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8490 {
		t.Errorf("port = %d, want 8490", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Recommend.Similarity.SameType != 2 {
		t.Errorf("same type weight = %d, want 2", cfg.Recommend.Similarity.SameType)
	}
	if cfg.Reason.Model == "" {
		t.Error("reason model default missing")
	}
	if cfg.Reason.Configured() {
		t.Error("api key must not have a default")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pishnahad.yaml")
	yaml := `
server:
  port: 9000
recommend:
  similarity:
    shared_genre: 4
  profile:
    top_genres: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Recommend.Similarity.SharedGenre != 4 {
		t.Errorf("shared genre weight = %d, want 4", cfg.Recommend.Similarity.SharedGenre)
	}
	if cfg.Recommend.Profile.TopGenres != 3 {
		t.Errorf("top genres = %d, want 3", cfg.Recommend.Profile.TopGenres)
	}
	// Untouched keys keep their defaults.
	if cfg.Recommend.Similarity.SameType != 2 {
		t.Errorf("same type weight = %d, want default 2", cfg.Recommend.Similarity.SameType)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pishnahad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PISHNAHAD_SERVER_PORT", "9500")
	t.Setenv("PISHNAHAD_REASON_API_KEY", "secret")
	t.Setenv("PISHNAHAD_SIMILARITY_SHARED_TAG_WEIGHT", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9500 {
		t.Errorf("port = %d, want env override 9500", cfg.Server.Port)
	}
	if cfg.Reason.APIKey != "secret" {
		t.Errorf("api key = %q, want secret", cfg.Reason.APIKey)
	}
	if cfg.Recommend.Similarity.SharedTag != 9 {
		t.Errorf("shared tag weight = %d, want 9", cfg.Recommend.Similarity.SharedTag)
	}
}

func TestLoadCORSFromEnvString(t *testing.T) {
	t.Setenv("PISHNAHAD_SERVER_CORS_ORIGINS", "https://tamasha.example, https://admin.tamasha.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"https://tamasha.example", "https://admin.tamasha.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("cors origins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("PISHNAHAD_SERVER_PORT", "0")

	if _, err := Load(); err == nil {
		t.Error("expected validation error for port 0, got nil")
	}
}

func TestValidateDurations(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.ReadTimeout = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero read timeout, got nil")
	}
}

func TestValidateStorePath(t *testing.T) {
	cfg := defaultConfig()
	cfg.Store.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty persistent store path, got nil")
	}

	cfg.Store.InMemory = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("in-memory store must not require a path: %v", err)
	}
}

func TestDefaultRateWindow(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Server.RateWindow != time.Minute {
		t.Errorf("rate window = %s, want 1m", cfg.Server.RateWindow)
	}
}
