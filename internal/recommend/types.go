// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package recommend

import (
	"context"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
)

// Profile is a derived, ephemeral summary of a user's inferred tastes.
// It is constructed fresh per request and discarded afterwards; it is
// never cached or persisted.
type Profile struct {
	// TopGenres is the user's favored genre names, by descending
	// frequency, capped by config (default 5).
	TopGenres []string `json:"top_genres"`

	// TopTypes is every content type seen in the user's activity,
	// by descending frequency. No cap.
	TopTypes []catalog.ContentType `json:"top_types"`

	// WatchedIDs is the raw list of watched content identifiers.
	WatchedIDs []int `json:"watched_ids"`

	// FavoriteIDs is the raw list of favorited content identifiers.
	FavoriteIDs []int `json:"favorite_ids"`
}

// Empty reports whether the profile carries no preference signal.
func (p *Profile) Empty() bool {
	return len(p.WatchedIDs) == 0 && len(p.FavoriteIDs) == 0
}

// Interpretation tags how a reasoning response was turned into identifiers,
// so callers can tell "empty by design" apart from "parsing degraded".
type Interpretation int

const (
	// InterpretationStrict means the response was valid JSON with the
	// expected key.
	InterpretationStrict Interpretation = iota

	// InterpretationDegraded means strict parsing failed and identifiers
	// were recovered by scanning the text for digit runs.
	InterpretationDegraded

	// InterpretationEmpty means neither strategy yielded identifiers.
	InterpretationEmpty
)

// String returns a human-readable name for the interpretation.
func (i Interpretation) String() string {
	switch i {
	case InterpretationStrict:
		return "strict"
	case InterpretationDegraded:
		return "degraded"
	case InterpretationEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Suggestion is the outcome of an external reasoning call: proposed content
// identifiers plus how they were recovered from the response text.
type Suggestion struct {
	// IDs is the ordered list of proposed content identifiers. May
	// reference items that are not in the catalog; the orchestrator
	// filters those out.
	IDs []int

	// Interpretation records which parsing strategy produced IDs.
	Interpretation Interpretation
}

// Reasoner proposes candidate content identifiers via an external
// reasoning provider. Implementations are expected to fail fast with
// ErrNoCredential-style errors when unconfigured; the engine treats any
// error as a signal to fall back to deterministic ranking.
type Reasoner interface {
	// SuggestForProfile proposes up to count identifiers matching the
	// user's preference profile, drawn from the given catalog slice.
	SuggestForProfile(ctx context.Context, user *catalog.User, profile *Profile, items []catalog.ContentItem, lookup *catalog.Lookup, count int) (Suggestion, error)

	// SuggestSimilar proposes up to count identifiers similar to the
	// target item, drawn from the given catalog slice.
	SuggestSimilar(ctx context.Context, target *catalog.ContentItem, items []catalog.ContentItem, lookup *catalog.Lookup, count int) (Suggestion, error)
}

// Source identifies which path produced a response.
type Source string

const (
	// SourceReasoning means every returned item came from the external
	// reasoning call.
	SourceReasoning Source = "reasoning"

	// SourceMixed means reasoning under-returned and the list was topped
	// up deterministically.
	SourceMixed Source = "mixed"

	// SourceFallback means the whole list was computed locally.
	SourceFallback Source = "fallback"
)

// RecommendRequest carries the inputs for a personalized recommendation.
// All slices are read-only snapshots owned by the caller.
type RecommendRequest struct {
	// User is the requesting account, or nil for anonymous visitors.
	User *catalog.User

	// History is the user's watch history with denormalized content.
	History []catalog.WatchHistoryEntry

	// Favorites is the user's favorited content records.
	Favorites []catalog.ContentItem

	// Content is the catalog slice to recommend from.
	Content []catalog.ContentItem

	// Genres and Tags are the full lookup lists.
	Genres []catalog.Genre
	Tags   []catalog.Tag

	// Count is the number of items to return. Defaults to
	// Config.Limits.DefaultCount if zero.
	Count int

	// RequestID is a unique identifier for tracing.
	RequestID string
}

// SimilarRequest carries the inputs for a "more like this" request.
type SimilarRequest struct {
	// Target is the item to find similar content for.
	Target catalog.ContentItem

	// Content is the catalog slice to draw candidates from. The target
	// itself is excluded from all candidate pools.
	Content []catalog.ContentItem

	// Genres and Tags are the full lookup lists.
	Genres []catalog.Genre
	Tags   []catalog.Tag

	// Count is the number of items to return. Defaults to
	// Config.Limits.DefaultCount if zero.
	Count int

	// RequestID is a unique identifier for tracing.
	RequestID string
}

// Response is an ordered list of content records drawn from the input
// catalog, with diagnostic metadata. Items are never invented and never
// duplicated; for similarity requests the target never appears.
type Response struct {
	// Items is the ordered recommendation list, length
	// min(count, available candidates).
	Items []catalog.ContentItem `json:"items"`

	// Source records which path produced the list.
	Source Source `json:"source"`

	// Interpretation records how the reasoning response was parsed.
	// Only meaningful when Source is reasoning or mixed.
	Interpretation Interpretation `json:"-"`

	// LatencyMS is the total request latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// RequestID echoes the request identifier.
	RequestID string `json:"request_id"`
}
