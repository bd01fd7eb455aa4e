// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package reason

import (
	"regexp"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tamasha-vod/pishnahad/internal/recommend"
)

// The two response keys are deliberately distinct so a reply produced
// for one call type cannot be mistaken for the other. interpret only
// reads the key it was asked for; replies carrying the wrong key come
// back empty.
const (
	keyRecommendations = "recommendations"
	keySimilarContent  = "similar_content"
)

var digitRun = regexp.MustCompile(`\d+`)

// interpret converts raw model output into a suggestion. Three tiers:
//
//  1. Strict: the full text is a JSON object and the expected key holds
//     an array of integers. Used verbatim.
//  2. Degraded: the text is not usable JSON (prose, markdown fences, a
//     mistyped array). Every maximal digit run in the raw text becomes a
//     candidate id, capped at count.
//  3. Empty: neither tier produced anything.
//
// interpret never fails; unusable output is an empty suggestion.
func interpret(text, key string, count int) recommend.Suggestion {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		raw, ok := payload[key]
		if !ok {
			return recommend.Suggestion{Interpretation: recommend.InterpretationEmpty}
		}
		var ids []int
		if err := json.Unmarshal(raw, &ids); err == nil {
			return recommend.Suggestion{IDs: ids, Interpretation: recommend.InterpretationStrict}
		}
	}

	ids := scanDigits(text, count)
	if len(ids) == 0 {
		return recommend.Suggestion{Interpretation: recommend.InterpretationEmpty}
	}
	return recommend.Suggestion{IDs: ids, Interpretation: recommend.InterpretationDegraded}
}

// scanDigits extracts up to count integers from the maximal digit runs
// in text. Runs too long for an int are skipped.
func scanDigits(text string, count int) []int {
	matches := digitRun.FindAllString(text, -1)
	ids := make([]int, 0, count)
	for _, m := range matches {
		if len(ids) == count {
			break
		}
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
