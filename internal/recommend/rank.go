// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package recommend

import (
	"sort"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
)

// RankByPopularity returns the count most recent items by release year,
// descending. The sort is stable: items with equal years keep their input
// order. Deterministic and side-effect free; the input slice is not
// modified.
func RankByPopularity(items []catalog.ContentItem, count int) []catalog.ContentItem {
	ranked := make([]catalog.ContentItem, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Year > ranked[j].Year
	})

	return truncate(ranked, count)
}

// RankBySimilarity scores each candidate against the target with the
// additive attribute score defined by weights and returns the count
// highest-scoring candidates. The sort is stable: equal scores keep input
// order. The target itself, if present among the candidates, is excluded.
func RankBySimilarity(target *catalog.ContentItem, candidates []catalog.ContentItem, weights SimilarityWeights, count int) []catalog.ContentItem {
	pool := make([]catalog.ContentItem, 0, len(candidates))
	for i := range candidates {
		if candidates[i].ID == target.ID {
			continue
		}
		pool = append(pool, candidates[i])
	}

	scores := make(map[int]int, len(pool))
	for i := range pool {
		scores[pool[i].ID] = SimilarityScore(target, &pool[i], weights)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return scores[pool[i].ID] > scores[pool[j].ID]
	})

	return truncate(pool, count)
}

// SimilarityScore computes the additive attribute-similarity score of a
// candidate relative to a target. The genre and tag overlap terms are
// symmetric; the full score is directional only through the target's
// perspective on type and year.
func SimilarityScore(target, candidate *catalog.ContentItem, weights SimilarityWeights) int {
	score := 0

	if candidate.Type == target.Type {
		score += weights.SameType
	}

	diff := candidate.Year - target.Year
	if diff < 0 {
		diff = -diff
	}
	if diff <= weights.YearWindow {
		score += weights.YearProximity
	}

	score += weights.SharedGenre * sharedCount(target.GenreIDs, candidate.GenreIDs)
	score += weights.SharedTag * sharedCount(target.TagIDs, candidate.TagIDs)

	return score
}

// sharedCount counts identifiers present in both slices.
func sharedCount(a, b []int) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[int]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}

	n := 0
	for _, id := range b {
		if _, ok := set[id]; ok {
			n++
		}
	}
	return n
}

// truncate limits a slice to count items. A non-positive count returns the
// slice unchanged.
func truncate(items []catalog.ContentItem, count int) []catalog.ContentItem {
	if count > 0 && len(items) > count {
		return items[:count]
	}
	return items
}
