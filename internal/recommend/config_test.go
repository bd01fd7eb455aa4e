// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package recommend

import "testing"

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	if cfg.Similarity.SameType != 2 || cfg.Similarity.YearProximity != 1 ||
		cfg.Similarity.YearWindow != 5 || cfg.Similarity.SharedGenre != 2 ||
		cfg.Similarity.SharedTag != 1 {
		t.Errorf("unexpected default similarity weights: %+v", cfg.Similarity)
	}
	if cfg.Profile.TopGenres != 5 {
		t.Errorf("default top genres = %d, want 5", cfg.Profile.TopGenres)
	}
	if cfg.Limits.DefaultCount != 5 {
		t.Errorf("default count = %d, want 5", cfg.Limits.DefaultCount)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Similarity.SharedGenre = -1 }},
		{"negative year window", func(c *Config) { c.Similarity.YearWindow = -5 }},
		{"zero top genres", func(c *Config) { c.Profile.TopGenres = 0 }},
		{"zero default count", func(c *Config) { c.Limits.DefaultCount = 0 }},
		{"max below default", func(c *Config) { c.Limits.MaxCount = 2 }},
		{"zero prompt cap", func(c *Config) { c.Limits.PromptCatalogMax = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Similarity.SameType = 99

	if cfg.Similarity.SameType == 99 {
		t.Error("mutating the clone affected the original")
	}
}
