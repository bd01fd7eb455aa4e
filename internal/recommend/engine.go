// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
)

// Note: this package has no dependency on the HTTP, storage, or metrics
// layers. The Reasoner interface allows integration with the reason
// package without creating circular imports.

// Engine orchestrates the reasoning path and the deterministic fallback
// ranker. It is stateless per request and safe for concurrent use.
//
// Construct one Engine at startup and pass it to request handlers
// explicitly; there is deliberately no package-level instance.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	reasoner Reasoner
}

// NewEngine creates a new recommendation engine. The reasoner may be nil,
// in which case every request is served by the deterministic ranker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, reasoner Reasoner, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		reasoner: reasoner,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Recommend generates personalized recommendations.
//
// It never fails: any reasoning error (missing credential, transport
// failure, unusable response) degrades to popularity ranking over the
// request catalog. The returned list has length min(count, catalog size),
// contains no duplicates, and is always drawn from the request catalog.
func (e *Engine) Recommend(ctx context.Context, req *RecommendRequest) *Response {
	start := time.Now()
	count := e.clampCount(req.Count, len(req.Content))
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("mode", "personalized").
		Logger()

	// Anonymous visitors with no activity skip the reasoning call
	// entirely: there is no preference signal to reason about.
	if req.User == nil && len(req.History) == 0 && len(req.Favorites) == 0 {
		logger.Debug().Msg("no preference signal, serving popularity ranking")
		return e.respond(RankByPopularity(req.Content, count), SourceFallback, InterpretationEmpty, req.RequestID, start)
	}

	lookup := catalog.NewLookup(req.Genres, req.Tags)
	profile := ExtractProfile(req.History, req.Favorites, lookup, e.config.Profile.TopGenres)

	suggestion, err := e.suggestForProfile(ctx, req, profile, lookup, count)
	if err != nil {
		logger.Warn().Err(err).Msg("reasoning unavailable, serving popularity ranking")
		return e.respond(RankByPopularity(req.Content, count), SourceFallback, InterpretationEmpty, req.RequestID, start)
	}

	selected := selectByID(req.Content, suggestion.IDs, count, 0)
	items, source := e.topUp(selected, req.Content, count, func(remaining []catalog.ContentItem, n int) []catalog.ContentItem {
		return RankByPopularity(remaining, n)
	})

	logger.Debug().
		Int("suggested", len(suggestion.IDs)).
		Int("matched", len(selected)).
		Int("returned", len(items)).
		Str("interpretation", suggestion.Interpretation.String()).
		Msg("recommendation complete")

	return e.respond(items, source, suggestion.Interpretation, req.RequestID, start)
}

// Similar generates "more like this" recommendations for a target item.
//
// The target is excluded from every candidate pool. Failure semantics
// match Recommend, with attribute similarity as the fallback ranker.
func (e *Engine) Similar(ctx context.Context, req *SimilarRequest) *Response {
	start := time.Now()
	pool := excludeID(req.Content, req.Target.ID)
	count := e.clampCount(req.Count, len(pool))
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("mode", "similar").
		Int("target_id", req.Target.ID).
		Logger()

	lookup := catalog.NewLookup(req.Genres, req.Tags)

	suggestion, err := e.suggestSimilar(ctx, req, pool, lookup, count)
	if err != nil {
		logger.Warn().Err(err).Msg("reasoning unavailable, serving similarity ranking")
		return e.respond(RankBySimilarity(&req.Target, pool, e.config.Similarity, count), SourceFallback, InterpretationEmpty, req.RequestID, start)
	}

	selected := selectByID(pool, suggestion.IDs, count, req.Target.ID)
	items, source := e.topUp(selected, pool, count, func(remaining []catalog.ContentItem, n int) []catalog.ContentItem {
		return RankBySimilarity(&req.Target, remaining, e.config.Similarity, n)
	})

	logger.Debug().
		Int("suggested", len(suggestion.IDs)).
		Int("matched", len(selected)).
		Int("returned", len(items)).
		Str("interpretation", suggestion.Interpretation.String()).
		Msg("similar content complete")

	return e.respond(items, source, suggestion.Interpretation, req.RequestID, start)
}

// suggestForProfile invokes the reasoner, converting a nil reasoner and
// any panic into plain errors so the orchestrator has a single failure
// path.
func (e *Engine) suggestForProfile(ctx context.Context, req *RecommendRequest, profile *Profile, lookup *catalog.Lookup, count int) (s Suggestion, err error) {
	if e.reasoner == nil {
		return Suggestion{}, fmt.Errorf("no reasoner configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reasoner panic: %v", r)
		}
	}()
	return e.reasoner.SuggestForProfile(ctx, req.User, profile, promptSlice(req.Content, e.config.Limits.PromptCatalogMax), lookup, count)
}

// suggestSimilar mirrors suggestForProfile for the similarity path.
func (e *Engine) suggestSimilar(ctx context.Context, req *SimilarRequest, pool []catalog.ContentItem, lookup *catalog.Lookup, count int) (s Suggestion, err error) {
	if e.reasoner == nil {
		return Suggestion{}, fmt.Errorf("no reasoner configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reasoner panic: %v", r)
		}
	}()
	return e.reasoner.SuggestSimilar(ctx, &req.Target, promptSlice(pool, e.config.Limits.PromptCatalogMax), lookup, count)
}

// topUp supplements an under-filled selection with deterministically
// ranked items drawn from the catalog items not already selected.
func (e *Engine) topUp(selected, pool []catalog.ContentItem, count int, rank func([]catalog.ContentItem, int) []catalog.ContentItem) ([]catalog.ContentItem, Source) {
	if len(selected) >= count {
		return selected[:count], SourceReasoning
	}

	chosen := make(map[int]struct{}, len(selected))
	for i := range selected {
		chosen[selected[i].ID] = struct{}{}
	}

	remaining := make([]catalog.ContentItem, 0, len(pool))
	for i := range pool {
		if _, ok := chosen[pool[i].ID]; !ok {
			remaining = append(remaining, pool[i])
		}
	}

	items := append(selected, rank(remaining, count-len(selected))...)

	if len(selected) == 0 {
		return items, SourceFallback
	}
	return items, SourceMixed
}

// clampCount applies the default and maximum result counts, bounded by
// the available candidate pool.
func (e *Engine) clampCount(count, available int) int {
	if count <= 0 {
		count = e.config.Limits.DefaultCount
	}
	if count > e.config.Limits.MaxCount {
		count = e.config.Limits.MaxCount
	}
	if count > available {
		count = available
	}
	return count
}

// respond assembles the final response.
func (e *Engine) respond(items []catalog.ContentItem, source Source, interp Interpretation, requestID string, start time.Time) *Response {
	if items == nil {
		items = []catalog.ContentItem{}
	}
	return &Response{
		Items:          items,
		Source:         source,
		Interpretation: interp,
		LatencyMS:      time.Since(start).Milliseconds(),
		RequestID:      requestID,
	}
}

// selectByID picks items from the catalog in suggestion order, dropping
// unknown identifiers, duplicates, and the excluded identifier, capped at
// count.
func selectByID(items []catalog.ContentItem, ids []int, count, excludeID int) []catalog.ContentItem {
	byID := make(map[int]*catalog.ContentItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	selected := make([]catalog.ContentItem, 0, count)
	taken := make(map[int]struct{}, count)
	for _, id := range ids {
		if len(selected) == count {
			break
		}
		if id == excludeID {
			continue
		}
		if _, dup := taken[id]; dup {
			continue
		}
		item, ok := byID[id]
		if !ok {
			continue
		}
		taken[id] = struct{}{}
		selected = append(selected, *item)
	}
	return selected
}

// excludeID returns the items without the given identifier.
func excludeID(items []catalog.ContentItem, id int) []catalog.ContentItem {
	out := make([]catalog.ContentItem, 0, len(items))
	for i := range items {
		if items[i].ID != id {
			out = append(out, items[i])
		}
	}
	return out
}

// promptSlice caps the catalog slice serialized into a prompt.
func promptSlice(items []catalog.ContentItem, limit int) []catalog.ContentItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
