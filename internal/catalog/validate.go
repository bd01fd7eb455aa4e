// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package catalog

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. validator.Validate caches
// struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateContent validates a catalog slice at the ingestion boundary.
// Duplicate identifiers are rejected so the rest of the service can treat
// content IDs as unique.
func ValidateContent(items []ContentItem) error {
	seen := make(map[int]struct{}, len(items))
	for i := range items {
		if err := validate.Struct(&items[i]); err != nil {
			return fmt.Errorf("content item at index %d: %w", i, err)
		}
		if _, dup := seen[items[i].ID]; dup {
			return fmt.Errorf("content item at index %d: duplicate id %d", i, items[i].ID)
		}
		seen[items[i].ID] = struct{}{}
	}
	return nil
}

// ValidateGenres validates a genre list at the ingestion boundary.
func ValidateGenres(genres []Genre) error {
	for i := range genres {
		if err := validate.Struct(&genres[i]); err != nil {
			return fmt.Errorf("genre at index %d: %w", i, err)
		}
	}
	return nil
}

// ValidateTags validates a tag list at the ingestion boundary.
func ValidateTags(tags []Tag) error {
	for i := range tags {
		if err := validate.Struct(&tags[i]); err != nil {
			return fmt.Errorf("tag at index %d: %w", i, err)
		}
	}
	return nil
}

// ValidateUser validates a user record at the ingestion boundary.
func ValidateUser(user *User) error {
	if err := validate.Struct(user); err != nil {
		return fmt.Errorf("user: %w", err)
	}
	return nil
}

// ValidateHistory validates a watch history slice at the ingestion boundary.
func ValidateHistory(entries []WatchHistoryEntry) error {
	for i := range entries {
		if err := validate.Struct(&entries[i]); err != nil {
			return fmt.Errorf("history entry at index %d: %w", i, err)
		}
	}
	return nil
}

// ValidateFavorites validates a favorites slice at the ingestion boundary.
func ValidateFavorites(entries []FavoriteEntry) error {
	for i := range entries {
		if err := validate.Struct(&entries[i]); err != nil {
			return fmt.Errorf("favorite entry at index %d: %w", i, err)
		}
	}
	return nil
}
