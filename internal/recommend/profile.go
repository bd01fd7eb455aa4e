// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package recommend

import (
	"sort"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
)

// ExtractProfile derives a preference profile from a user's watch history
// and favorites. Pure function of its inputs: no side effects, no I/O.
//
// Genre names are counted across the union of watched and favorited
// content (history entries with a missing content join are skipped, and
// stale genre identifiers contribute nothing). The top genres list is
// capped at topGenres, descending by frequency, ties broken by first
// appearance. Content types are counted the same way with no cap.
func ExtractProfile(history []catalog.WatchHistoryEntry, favorites []catalog.ContentItem, lookup *catalog.Lookup, topGenres int) *Profile {
	profile := &Profile{
		WatchedIDs:  make([]int, 0, len(history)),
		FavoriteIDs: make([]int, 0, len(favorites)),
	}

	watched := make([]catalog.ContentItem, 0, len(history))
	for i := range history {
		profile.WatchedIDs = append(profile.WatchedIDs, history[i].ContentID)
		if history[i].Content != nil {
			watched = append(watched, *history[i].Content)
		}
	}
	for i := range favorites {
		profile.FavoriteIDs = append(profile.FavoriteIDs, favorites[i].ID)
	}

	genreCounts := newFrequencyTable()
	typeCounts := newFrequencyTable()

	countItem := func(item *catalog.ContentItem) {
		for _, name := range lookup.GenreNames(item) {
			genreCounts.add(name)
		}
		typeCounts.add(string(item.Type))
	}

	for i := range watched {
		countItem(&watched[i])
	}
	for i := range favorites {
		countItem(&favorites[i])
	}

	profile.TopGenres = genreCounts.top(topGenres)

	types := typeCounts.top(0)
	profile.TopTypes = make([]catalog.ContentType, len(types))
	for i, t := range types {
		profile.TopTypes[i] = catalog.ContentType(t)
	}

	return profile
}

// frequencyTable counts string keys while remembering first-seen order so
// equal counts sort deterministically.
type frequencyTable struct {
	counts map[string]int
	order  map[string]int
	next   int
}

func newFrequencyTable() *frequencyTable {
	return &frequencyTable{
		counts: make(map[string]int),
		order:  make(map[string]int),
	}
}

func (f *frequencyTable) add(key string) {
	if _, seen := f.counts[key]; !seen {
		f.order[key] = f.next
		f.next++
	}
	f.counts[key]++
}

// top returns up to limit keys by descending count, ties by first
// appearance. A limit of zero means no cap.
func (f *frequencyTable) top(limit int) []string {
	keys := make([]string, 0, len(f.counts))
	for key := range f.counts {
		keys = append(keys, key)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if f.counts[keys[i]] != f.counts[keys[j]] {
			return f.counts[keys[i]] > f.counts[keys[j]]
		}
		return f.order[keys[i]] < f.order[keys[j]]
	})

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}
