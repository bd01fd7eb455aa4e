// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package recommend

import (
	"fmt"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Similarity contains the attribute-similarity scoring weights.
	Similarity SimilarityWeights `json:"similarity" koanf:"similarity"`

	// Profile contains preference-profile extraction parameters.
	Profile ProfileConfig `json:"profile" koanf:"profile"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// SimilarityWeights defines the additive attribute-similarity score.
// The score of a candidate relative to a target item is:
//
//	SameType            if candidate.Type == target.Type
//	+ YearProximity     if |candidate.Year - target.Year| <= YearWindow
//	+ SharedGenre * n   for n shared genre identifiers
//	+ SharedTag * m     for m shared tag identifiers
type SimilarityWeights struct {
	// SameType is awarded when the candidate has the target's type.
	SameType int `json:"same_type" koanf:"same_type"`

	// YearProximity is awarded when release years are within YearWindow.
	YearProximity int `json:"year_proximity" koanf:"year_proximity"`

	// YearWindow is the release-year distance that still counts as close.
	YearWindow int `json:"year_window" koanf:"year_window"`

	// SharedGenre is awarded per shared genre identifier.
	SharedGenre int `json:"shared_genre" koanf:"shared_genre"`

	// SharedTag is awarded per shared tag identifier.
	SharedTag int `json:"shared_tag" koanf:"shared_tag"`
}

// ProfileConfig contains preference-profile extraction parameters.
type ProfileConfig struct {
	// TopGenres caps the number of favored genre names kept in a profile.
	TopGenres int `json:"top_genres" koanf:"top_genres"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultCount is the result count when the request does not specify one.
	DefaultCount int `json:"default_count" koanf:"default_count"`

	// MaxCount caps the result count a single request may ask for.
	MaxCount int `json:"max_count" koanf:"max_count"`

	// PromptCatalogMax caps the number of catalog items serialized into a
	// reasoning prompt, bounding prompt size and cost.
	PromptCatalogMax int `json:"prompt_catalog_max" koanf:"prompt_catalog_max"`
}

// DefaultConfig returns the production default configuration.
func DefaultConfig() *Config {
	return &Config{
		Similarity: SimilarityWeights{
			SameType:      2,
			YearProximity: 1,
			YearWindow:    5,
			SharedGenre:   2,
			SharedTag:     1,
		},
		Profile: ProfileConfig{
			TopGenres: 5,
		},
		Limits: LimitsConfig{
			DefaultCount:     5,
			MaxCount:         50,
			PromptCatalogMax: 50,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Similarity.SameType < 0 || c.Similarity.YearProximity < 0 ||
		c.Similarity.SharedGenre < 0 || c.Similarity.SharedTag < 0 {
		return fmt.Errorf("similarity weights must be non-negative")
	}
	if c.Similarity.YearWindow < 0 {
		return fmt.Errorf("similarity year window must be non-negative")
	}
	if c.Profile.TopGenres <= 0 {
		return fmt.Errorf("profile top genres must be positive, got %d", c.Profile.TopGenres)
	}
	if c.Limits.DefaultCount <= 0 {
		return fmt.Errorf("default count must be positive, got %d", c.Limits.DefaultCount)
	}
	if c.Limits.MaxCount < c.Limits.DefaultCount {
		return fmt.Errorf("max count %d must be >= default count %d", c.Limits.MaxCount, c.Limits.DefaultCount)
	}
	if c.Limits.PromptCatalogMax <= 0 {
		return fmt.Errorf("prompt catalog max must be positive, got %d", c.Limits.PromptCatalogMax)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
