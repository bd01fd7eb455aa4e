// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
	"github.com/tamasha-vod/pishnahad/internal/logging"
	"github.com/tamasha-vod/pishnahad/internal/metrics"
	"github.com/tamasha-vod/pishnahad/internal/recommend"
	"github.com/tamasha-vod/pishnahad/internal/store"
)

// requestTimeout bounds one recommendation request end to end,
// including the external reasoning call.
const requestTimeout = 45 * time.Second

// maxIngestBody bounds snapshot push payloads.
const maxIngestBody = 64 << 20 // 64 MiB

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store  *store.Store
	engine *recommend.Engine
}

// NewHandlers creates the handler set.
func NewHandlers(st *store.Store, engine *recommend.Engine) *Handlers {
	return &Handlers{store: st, engine: engine}
}

// Health handles GET /api/v1/health.
// It reports whether a catalog snapshot is loaded; the service is
// usable for recommendations only once one has been pushed.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	hasSnapshot := true
	if _, err := h.store.Content(r.Context()); err != nil {
		hasSnapshot = false
	}

	rw.Success(map[string]interface{}{
		"status":           "ok",
		"catalog_snapshot": hasSnapshot,
	})
}

// GetRecommendations handles GET /api/v1/recommendations and
// GET /api/v1/recommendations/user/{userID}.
//
// The anonymous variant always serves popularity-ranked results. The
// user variant joins the user's stored history and favorites against
// the catalog snapshot and runs the full reasoning path.
func (h *Handlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	count, ok := parseCount(rw, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	content, genres, tags, ok := h.loadSnapshot(ctx, rw)
	if !ok {
		return
	}

	req := &recommend.RecommendRequest{
		Content:   content,
		Genres:    genres,
		Tags:      tags,
		Count:     count,
		RequestID: logging.RequestIDFromContext(ctx),
	}

	if userIDStr := chi.URLParam(r, "userID"); userIDStr != "" {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil || userID <= 0 {
			rw.BadRequest("invalid user id")
			return
		}

		user, err := h.store.User(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("unknown user")
			return
		}
		if err != nil {
			logger := logging.LoggerFromContext(ctx)
			logger.Error().Err(err).Msg("load user")
			rw.InternalError("failed to load user")
			return
		}

		history, err := h.store.History(ctx, userID)
		if err != nil {
			logger := logging.LoggerFromContext(ctx)
			logger.Error().Err(err).Msg("load history")
			rw.InternalError("failed to load watch history")
			return
		}

		favorites, err := h.store.Favorites(ctx, userID)
		if err != nil {
			logger := logging.LoggerFromContext(ctx)
			logger.Error().Err(err).Msg("load favorites")
			rw.InternalError("failed to load favorites")
			return
		}

		byID := contentByID(content)
		req.User = user
		req.History = joinHistory(history, byID)
		req.Favorites = resolveFavorites(favorites, byID)
	}

	start := time.Now()
	resp := h.engine.Recommend(ctx, req)

	metrics.RecordRecommendation("personalized", string(resp.Source), time.Since(start), len(resp.Items))
	if resp.Source != recommend.SourceFallback {
		metrics.RecordInterpretation("personalized", resp.Interpretation.String())
	}

	rw.Success(resp)
}

// GetSimilar handles GET /api/v1/similar/{contentID}.
func (h *Handlers) GetSimilar(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	contentID, err := strconv.Atoi(chi.URLParam(r, "contentID"))
	if err != nil || contentID <= 0 {
		rw.BadRequest("invalid content id")
		return
	}

	count, ok := parseCount(rw, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	content, genres, tags, ok := h.loadSnapshot(ctx, rw)
	if !ok {
		return
	}

	var target *catalog.ContentItem
	for i := range content {
		if content[i].ID == contentID {
			target = &content[i]
			break
		}
	}
	if target == nil {
		rw.NotFound("unknown content id")
		return
	}

	req := &recommend.SimilarRequest{
		Target:    *target,
		Content:   content,
		Genres:    genres,
		Tags:      tags,
		Count:     count,
		RequestID: logging.RequestIDFromContext(ctx),
	}

	start := time.Now()
	resp := h.engine.Similar(ctx, req)

	metrics.RecordRecommendation("similar", string(resp.Source), time.Since(start), len(resp.Items))
	if resp.Source != recommend.SourceFallback {
		metrics.RecordInterpretation("similar", resp.Interpretation.String())
	}

	rw.Success(resp)
}

// PutContent handles PUT /api/v1/snapshot/content.
func (h *Handlers) PutContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var items []catalog.ContentItem
	if !decodeBody(rw, r, &items) {
		metrics.RecordSnapshotUpdate("content", false)
		return
	}
	if err := catalog.ValidateContent(items); err != nil {
		metrics.RecordSnapshotUpdate("content", false)
		rw.ValidationFailed("invalid content snapshot", err.Error())
		return
	}

	if err := h.store.ReplaceContent(r.Context(), items); err != nil {
		metrics.RecordSnapshotUpdate("content", false)
		logger := logging.LoggerFromContext(r.Context())
		logger.Error().Err(err).Msg("replace content snapshot")
		rw.InternalError("failed to store content snapshot")
		return
	}

	metrics.RecordSnapshotUpdate("content", true)
	metrics.SnapshotContentItems.Set(float64(len(items)))
	logger := logging.LoggerFromContext(r.Context())
	logger.Info().Int("items", len(items)).Msg("content snapshot replaced")
	rw.NoContent()
}

// PutGenres handles PUT /api/v1/snapshot/genres.
func (h *Handlers) PutGenres(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var genres []catalog.Genre
	if !decodeBody(rw, r, &genres) {
		metrics.RecordSnapshotUpdate("genres", false)
		return
	}
	if err := catalog.ValidateGenres(genres); err != nil {
		metrics.RecordSnapshotUpdate("genres", false)
		rw.ValidationFailed("invalid genre snapshot", err.Error())
		return
	}

	if err := h.store.ReplaceGenres(r.Context(), genres); err != nil {
		metrics.RecordSnapshotUpdate("genres", false)
		rw.InternalError("failed to store genre snapshot")
		return
	}

	metrics.RecordSnapshotUpdate("genres", true)
	rw.NoContent()
}

// PutTags handles PUT /api/v1/snapshot/tags.
func (h *Handlers) PutTags(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var tags []catalog.Tag
	if !decodeBody(rw, r, &tags) {
		metrics.RecordSnapshotUpdate("tags", false)
		return
	}
	if err := catalog.ValidateTags(tags); err != nil {
		metrics.RecordSnapshotUpdate("tags", false)
		rw.ValidationFailed("invalid tag snapshot", err.Error())
		return
	}

	if err := h.store.ReplaceTags(r.Context(), tags); err != nil {
		metrics.RecordSnapshotUpdate("tags", false)
		rw.InternalError("failed to store tag snapshot")
		return
	}

	metrics.RecordSnapshotUpdate("tags", true)
	rw.NoContent()
}

// PutUser handles PUT /api/v1/snapshot/users/{userID}.
func (h *Handlers) PutUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		rw.BadRequest("invalid user id")
		return
	}

	var user catalog.User
	if !decodeBody(rw, r, &user) {
		metrics.RecordSnapshotUpdate("user", false)
		return
	}
	if user.ID != userID {
		metrics.RecordSnapshotUpdate("user", false)
		rw.ValidationFailed("user id mismatch", "body id must match the path id")
		return
	}
	if err := catalog.ValidateUser(&user); err != nil {
		metrics.RecordSnapshotUpdate("user", false)
		rw.ValidationFailed("invalid user record", err.Error())
		return
	}

	if err := h.store.PutUser(r.Context(), &user); err != nil {
		metrics.RecordSnapshotUpdate("user", false)
		rw.InternalError("failed to store user record")
		return
	}

	metrics.RecordSnapshotUpdate("user", true)
	rw.NoContent()
}

// PutHistory handles PUT /api/v1/snapshot/users/{userID}/history.
func (h *Handlers) PutHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		rw.BadRequest("invalid user id")
		return
	}

	var entries []catalog.WatchHistoryEntry
	if !decodeBody(rw, r, &entries) {
		metrics.RecordSnapshotUpdate("history", false)
		return
	}
	for i := range entries {
		if entries[i].UserID != userID {
			metrics.RecordSnapshotUpdate("history", false)
			rw.ValidationFailed("user id mismatch", "every entry must belong to the path user")
			return
		}
		// The denormalized join is rebuilt from the catalog snapshot at
		// read time; stored entries carry identifiers only.
		entries[i].Content = nil
	}
	if err := catalog.ValidateHistory(entries); err != nil {
		metrics.RecordSnapshotUpdate("history", false)
		rw.ValidationFailed("invalid history snapshot", err.Error())
		return
	}

	if err := h.store.ReplaceHistory(r.Context(), userID, entries); err != nil {
		metrics.RecordSnapshotUpdate("history", false)
		rw.InternalError("failed to store watch history")
		return
	}

	metrics.RecordSnapshotUpdate("history", true)
	rw.NoContent()
}

// PutFavorites handles PUT /api/v1/snapshot/users/{userID}/favorites.
func (h *Handlers) PutFavorites(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		rw.BadRequest("invalid user id")
		return
	}

	var entries []catalog.FavoriteEntry
	if !decodeBody(rw, r, &entries) {
		metrics.RecordSnapshotUpdate("favorites", false)
		return
	}
	for i := range entries {
		if entries[i].UserID != userID {
			metrics.RecordSnapshotUpdate("favorites", false)
			rw.ValidationFailed("user id mismatch", "every entry must belong to the path user")
			return
		}
	}
	if err := catalog.ValidateFavorites(entries); err != nil {
		metrics.RecordSnapshotUpdate("favorites", false)
		rw.ValidationFailed("invalid favorites snapshot", err.Error())
		return
	}

	if err := h.store.ReplaceFavorites(r.Context(), userID, entries); err != nil {
		metrics.RecordSnapshotUpdate("favorites", false)
		rw.InternalError("failed to store favorites")
		return
	}

	metrics.RecordSnapshotUpdate("favorites", true)
	rw.NoContent()
}

// loadSnapshot reads the catalog snapshot. Missing genres or tags
// degrade to empty lookups; a missing content snapshot means the
// service cannot answer at all.
func (h *Handlers) loadSnapshot(ctx context.Context, rw *ResponseWriter) (content []catalog.ContentItem, genres []catalog.Genre, tags []catalog.Tag, ok bool) {
	content, err := h.store.Content(ctx)
	if errors.Is(err, store.ErrNotFound) {
		rw.ServiceUnavailable("no catalog snapshot loaded")
		return nil, nil, nil, false
	}
	if err != nil {
		logger := logging.LoggerFromContext(ctx)
		logger.Error().Err(err).Msg("load content snapshot")
		rw.InternalError("failed to load catalog")
		return nil, nil, nil, false
	}

	if genres, err = h.store.Genres(ctx); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger := logging.LoggerFromContext(ctx)
		logger.Error().Err(err).Msg("load genre snapshot")
		rw.InternalError("failed to load genres")
		return nil, nil, nil, false
	}
	if tags, err = h.store.Tags(ctx); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger := logging.LoggerFromContext(ctx)
		logger.Error().Err(err).Msg("load tag snapshot")
		rw.InternalError("failed to load tags")
		return nil, nil, nil, false
	}

	return content, genres, tags, true
}

func parseCount(rw *ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return 0, true
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		rw.BadRequest("count must be a positive integer")
		return 0, false
	}
	return count, true
}

func decodeBody(rw *ResponseWriter, r *http.Request, out interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxIngestBody))
	if err := dec.Decode(out); err != nil {
		rw.BadRequest("malformed JSON body")
		return false
	}
	return true
}

func contentByID(items []catalog.ContentItem) map[int]*catalog.ContentItem {
	byID := make(map[int]*catalog.ContentItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return byID
}

// joinHistory rebuilds the denormalized content join against the
// current snapshot. Entries referencing content that has left the
// catalog keep a nil join; the profile extractor tolerates that.
func joinHistory(entries []catalog.WatchHistoryEntry, byID map[int]*catalog.ContentItem) []catalog.WatchHistoryEntry {
	for i := range entries {
		entries[i].Content = byID[entries[i].ContentID]
	}
	return entries
}

// resolveFavorites maps favorite entries to catalog records, dropping
// references to content no longer in the snapshot.
func resolveFavorites(entries []catalog.FavoriteEntry, byID map[int]*catalog.ContentItem) []catalog.ContentItem {
	items := make([]catalog.ContentItem, 0, len(entries))
	for _, e := range entries {
		if item, ok := byID[e.ContentID]; ok {
			items = append(items, *item)
		}
	}
	return items
}
