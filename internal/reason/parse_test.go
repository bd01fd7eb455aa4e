// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package reason

import (
	"reflect"
	"testing"

	"github.com/tamasha-vod/pishnahad/internal/recommend"
)

func TestInterpretStrictJSON(t *testing.T) {
	s := interpret(`{"recommendations": [3, 7, 99999]}`, keyRecommendations, 5)

	if s.Interpretation != recommend.InterpretationStrict {
		t.Errorf("interpretation = %s, want strict", s.Interpretation)
	}
	if !reflect.DeepEqual(s.IDs, []int{3, 7, 99999}) {
		t.Errorf("ids = %v, want [3 7 99999]", s.IDs)
	}
}

func TestInterpretStrictSimilarKey(t *testing.T) {
	s := interpret(`{"similar_content": [12, 4]}`, keySimilarContent, 5)

	if s.Interpretation != recommend.InterpretationStrict {
		t.Errorf("interpretation = %s, want strict", s.Interpretation)
	}
	if !reflect.DeepEqual(s.IDs, []int{12, 4}) {
		t.Errorf("ids = %v, want [12 4]", s.IDs)
	}
}

func TestInterpretWrongKeyYieldsEmpty(t *testing.T) {
	// Valid JSON carrying the other call type's key must not be
	// accepted as that call's answer.
	s := interpret(`{"similar_content": [1, 2]}`, keyRecommendations, 5)

	if s.Interpretation != recommend.InterpretationEmpty {
		t.Errorf("interpretation = %s, want empty", s.Interpretation)
	}
	if len(s.IDs) != 0 {
		t.Errorf("ids = %v, want none", s.IDs)
	}
}

func TestInterpretProseFallsBackToDigitScan(t *testing.T) {
	s := interpret(`Sure! Here are some picks: 3, 7, 12.`, keyRecommendations, 5)

	if s.Interpretation != recommend.InterpretationDegraded {
		t.Errorf("interpretation = %s, want degraded", s.Interpretation)
	}
	if !reflect.DeepEqual(s.IDs, []int{3, 7, 12}) {
		t.Errorf("ids = %v, want [3 7 12]", s.IDs)
	}
}

func TestInterpretMarkdownFenceFallsBack(t *testing.T) {
	text := "```json\n{\"recommendations\": [5, 9]}\n```"
	s := interpret(text, keyRecommendations, 5)

	if s.Interpretation != recommend.InterpretationDegraded {
		t.Errorf("interpretation = %s, want degraded", s.Interpretation)
	}
	if !reflect.DeepEqual(s.IDs, []int{5, 9}) {
		t.Errorf("ids = %v, want [5 9]", s.IDs)
	}
}

func TestInterpretDigitScanCappedAtCount(t *testing.T) {
	s := interpret(`ids: 1 2 3 4 5 6 7`, keyRecommendations, 3)

	if !reflect.DeepEqual(s.IDs, []int{1, 2, 3}) {
		t.Errorf("ids = %v, want [1 2 3]", s.IDs)
	}
}

func TestInterpretMistypedArrayFallsBack(t *testing.T) {
	// The key exists but holds strings: the strict tier refuses it and
	// the digit scan takes over.
	s := interpret(`{"recommendations": ["3", "7"]}`, keyRecommendations, 5)

	if s.Interpretation != recommend.InterpretationDegraded {
		t.Errorf("interpretation = %s, want degraded", s.Interpretation)
	}
	if !reflect.DeepEqual(s.IDs, []int{3, 7}) {
		t.Errorf("ids = %v, want [3 7]", s.IDs)
	}
}

func TestInterpretNothingUsableYieldsEmpty(t *testing.T) {
	tests := []string{
		"",
		"no idea, sorry",
		`{"recommendations": "none"}`,
	}

	for _, text := range tests {
		s := interpret(text, keyRecommendations, 5)
		if s.Interpretation != recommend.InterpretationEmpty {
			t.Errorf("interpret(%q) = %s, want empty", text, s.Interpretation)
		}
		if len(s.IDs) != 0 {
			t.Errorf("interpret(%q) ids = %v, want none", text, s.IDs)
		}
	}
}

func TestScanDigitsSkipsOverflowingRuns(t *testing.T) {
	ids := scanDigits("99999999999999999999999999 then 5", 5)

	if !reflect.DeepEqual(ids, []int{5}) {
		t.Errorf("ids = %v, want [5]", ids)
	}
}
