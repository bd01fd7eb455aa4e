// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

// Package catalog defines the content catalog data model shared by the
// recommendation engine, the snapshot store, and the HTTP API.
//
// All records are read-only snapshots pushed in by the platform backend.
// Validation happens once at the ingestion boundary; internal logic may
// assume well-formed records afterwards.
package catalog

import (
	"time"
)

// ContentType enumerates the four kinds of streamable content.
type ContentType string

const (
	// TypeMovie is a feature film.
	TypeMovie ContentType = "movie"
	// TypeSeries is an episodic show.
	TypeSeries ContentType = "series"
	// TypeAnimation is an animated feature or show.
	TypeAnimation ContentType = "animation"
	// TypeDocumentary is a documentary feature or show.
	TypeDocumentary ContentType = "documentary"
)

// Valid reports whether t is one of the four enumerated content types.
func (t ContentType) Valid() bool {
	switch t {
	case TypeMovie, TypeSeries, TypeAnimation, TypeDocumentary:
		return true
	default:
		return false
	}
}

// String returns the wire name of the content type.
func (t ContentType) String() string {
	return string(t)
}

// ContentItem is a single streamable item in the catalog.
type ContentItem struct {
	// ID is the unique, stable content identifier.
	ID int `json:"id" validate:"required,gt=0"`

	// Title is the Persian-language title.
	Title string `json:"title" validate:"required"`

	// EnglishTitle is the English title, if any.
	EnglishTitle string `json:"english_title,omitempty"`

	// Type is the content kind (movie, series, animation, documentary).
	Type ContentType `json:"type" validate:"required,oneof=movie series animation documentary"`

	// Year is the release year.
	Year int `json:"year" validate:"gte=0"`

	// GenreIDs references Genre records by identifier.
	GenreIDs []int `json:"genre_ids"`

	// TagIDs references Tag records by identifier.
	TagIDs []int `json:"tag_ids"`
}

// Genre is a display genre (e.g. درام, کمدی).
type Genre struct {
	ID   int    `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required"`
}

// Tag is a free-form content tag.
type Tag struct {
	ID   int    `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required"`
}

// User identifies a platform account. Recommendations also work without
// one; anonymous callers get popularity-ranked results.
type User struct {
	ID        int       `json:"id" validate:"required,gt=0"`
	Username  string    `json:"username" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// WatchHistoryEntry records that a user watched a content item.
// Content is the denormalized record, joined by the caller; it may be nil
// when the referenced item has left the catalog.
type WatchHistoryEntry struct {
	UserID    int          `json:"user_id" validate:"required,gt=0"`
	ContentID int          `json:"content_id" validate:"required,gt=0"`
	Content   *ContentItem `json:"content,omitempty"`
	WatchedAt time.Time    `json:"watched_at"`
}

// FavoriteEntry records that a user favorited a content item.
type FavoriteEntry struct {
	UserID    int `json:"user_id" validate:"required,gt=0"`
	ContentID int `json:"content_id" validate:"required,gt=0"`
}

// Lookup resolves genre and tag identifiers to display names.
// Stale identifiers resolve to nothing; no error is raised.
type Lookup struct {
	genres map[int]string
	tags   map[int]string
}

// NewLookup builds a Lookup from full genre and tag lists.
func NewLookup(genres []Genre, tags []Tag) *Lookup {
	l := &Lookup{
		genres: make(map[int]string, len(genres)),
		tags:   make(map[int]string, len(tags)),
	}
	for _, g := range genres {
		l.genres[g.ID] = g.Name
	}
	for _, t := range tags {
		l.tags[t.ID] = t.Name
	}
	return l
}

// GenreNames resolves the item's genre identifiers to names, dropping
// identifiers that no longer resolve.
func (l *Lookup) GenreNames(item *ContentItem) []string {
	return resolve(item.GenreIDs, l.genres)
}

// TagNames resolves the item's tag identifiers to names, dropping
// identifiers that no longer resolve.
func (l *Lookup) TagNames(item *ContentItem) []string {
	return resolve(item.TagIDs, l.tags)
}

func resolve(ids []int, names map[int]string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
		}
	}
	return out
}
