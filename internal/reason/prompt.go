// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package reason

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
	"github.com/tamasha-vod/pishnahad/internal/recommend"
)

// systemInstruction frames every generateContent call. The output-format
// reminder is repeated here because models drift from per-prompt
// contracts more readily than from system-level ones.
const systemInstruction = "You are the recommendation engine of Tamasha, a Persian-language " +
	"video streaming platform. You select content identifiers from a catalog the user " +
	"provides. You always answer with a single JSON object and nothing else: no prose, " +
	"no markdown fences."

// promptCatalogMax caps the serialized catalog inside a prompt. Callers
// are expected to pre-slice; this is the hard bound.
const promptCatalogMax = 50

// promptItem is the full catalog entry serialized into recommendation
// prompts.
type promptItem struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	EnglishTitle string   `json:"english_title,omitempty"`
	Type         string   `json:"type"`
	Year         int      `json:"year"`
	Genres       []string `json:"genres,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// compactItem is the reduced entry used in similar-content prompts,
// where per-item genres and tags would blow up the prompt size.
type compactItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Year  int    `json:"year"`
}

// buildRecommendationPrompt renders the personalized-recommendation
// prompt: user metadata, the preference profile, a JSON catalog slice
// with resolved genre and tag names, and the output contract under the
// "recommendations" key. Pure string building, no I/O.
func buildRecommendationPrompt(user *catalog.User, profile *recommend.Profile, items []catalog.ContentItem, lookup *catalog.Lookup, count int) string {
	items = capItems(items)
	ask := count
	if ask > len(items) {
		ask = len(items)
	}

	full := make([]promptItem, len(items))
	for i := range items {
		full[i] = promptItem{
			ID:           items[i].ID,
			Title:        items[i].Title,
			EnglishTitle: items[i].EnglishTitle,
			Type:         string(items[i].Type),
			Year:         items[i].Year,
			Genres:       lookup.GenreNames(&items[i]),
			Tags:         lookup.TagNames(&items[i]),
		}
	}
	catalogJSON, _ := json.Marshal(full)

	var b strings.Builder
	b.WriteString("Generate personalized content recommendations for a user of the Tamasha streaming platform.\n\n")

	if user != nil {
		fmt.Fprintf(&b, "User: %s\n", user.Username)
	}
	fmt.Fprintf(&b, "Favorite genres: %s\n", joinOrNone(profile.TopGenres))
	fmt.Fprintf(&b, "Preferred content types: %s\n", joinTypes(profile.TopTypes))
	fmt.Fprintf(&b, "Already watched content ids: %s\n", joinInts(profile.WatchedIDs))
	fmt.Fprintf(&b, "Favorited content ids: %s\n\n", joinInts(profile.FavoriteIDs))

	fmt.Fprintf(&b, "Available catalog:\n%s\n\n", catalogJSON)

	b.WriteString("Take Iranian cultural preferences into account: family-friendly titles are generally preferred.\n")
	b.WriteString("Do not recommend content the user has already watched.\n\n")

	fmt.Fprintf(&b, "Respond with ONLY a JSON object of the form {\"recommendations\": [id, id, ...]} "+
		"containing up to %d integer content ids from the catalog above, best match first.", ask)

	return b.String()
}

// buildSimilarContentPrompt renders the "more like this" prompt: the
// fully resolved target item, the candidate catalog reduced to id,
// title, type, and year, and the output contract under the
// "similar_content" key.
func buildSimilarContentPrompt(target *catalog.ContentItem, items []catalog.ContentItem, lookup *catalog.Lookup, count int) string {
	items = capItems(items)
	if count > len(items) {
		count = len(items)
	}

	targetJSON, _ := json.Marshal(promptItem{
		ID:           target.ID,
		Title:        target.Title,
		EnglishTitle: target.EnglishTitle,
		Type:         string(target.Type),
		Year:         target.Year,
		Genres:       lookup.GenreNames(target),
		Tags:         lookup.TagNames(target),
	})

	compact := make([]compactItem, len(items))
	for i := range items {
		compact[i] = compactItem{
			ID:    items[i].ID,
			Title: items[i].Title,
			Type:  string(items[i].Type),
			Year:  items[i].Year,
		}
	}
	catalogJSON, _ := json.Marshal(compact)

	var b strings.Builder
	b.WriteString("Find content on the Tamasha streaming platform most similar to a target item.\n\n")
	fmt.Fprintf(&b, "Target item:\n%s\n\n", targetJSON)
	fmt.Fprintf(&b, "Candidate catalog:\n%s\n\n", catalogJSON)
	fmt.Fprintf(&b, "Respond with ONLY a JSON object of the form {\"similar_content\": [id, id, ...]} "+
		"containing exactly %d integer content ids from the candidate catalog, most similar first. "+
		"Never include the target item's own id.", count)

	return b.String()
}

func capItems(items []catalog.ContentItem) []catalog.ContentItem {
	if len(items) > promptCatalogMax {
		return items[:promptCatalogMax]
	}
	return items
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func joinTypes(types []catalog.ContentType) string {
	if len(types) == 0 {
		return "none"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func joinInts(ids []int) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
