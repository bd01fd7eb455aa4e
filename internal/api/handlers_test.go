// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
	"github.com/tamasha-vod/pishnahad/internal/recommend"
	"github.com/tamasha-vod/pishnahad/internal/store"
)

// stubReasoner returns a canned suggestion or an error.
type stubReasoner struct {
	suggestion recommend.Suggestion
	err        error
}

func (s *stubReasoner) SuggestForProfile(context.Context, *catalog.User, *recommend.Profile, []catalog.ContentItem, *catalog.Lookup, int) (recommend.Suggestion, error) {
	return s.suggestion, s.err
}

func (s *stubReasoner) SuggestSimilar(context.Context, *catalog.ContentItem, []catalog.ContentItem, *catalog.Lookup, int) (recommend.Suggestion, error) {
	return s.suggestion, s.err
}

type testServer struct {
	store  *store.Store
	server *httptest.Server
}

func newTestServer(t *testing.T, reasoner recommend.Reasoner, cfg RouterConfig) *testServer {
	t.Helper()

	st, err := store.Open(store.Options{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), reasoner, zerolog.Nop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	server := httptest.NewServer(NewRouter(NewHandlers(st, engine), cfg))
	t.Cleanup(server.Close)

	return &testServer{store: st, server: server}
}

func (ts *testServer) seedCatalog(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	content := []catalog.ContentItem{
		{ID: 1, Title: "جدایی", Type: catalog.TypeMovie, Year: 2011, GenreIDs: []int{1}},
		{ID: 2, Title: "قهرمان", Type: catalog.TypeMovie, Year: 2021, GenreIDs: []int{1}},
		{ID: 3, Title: "شهرزاد", Type: catalog.TypeSeries, Year: 2015, GenreIDs: []int{2}},
		{ID: 7, Title: "پایتخت", Type: catalog.TypeSeries, Year: 2011, GenreIDs: []int{2}},
	}
	if err := ts.store.ReplaceContent(ctx, content); err != nil {
		t.Fatalf("seed content: %v", err)
	}
	if err := ts.store.ReplaceGenres(ctx, []catalog.Genre{{ID: 1, Name: "درام"}, {ID: 2, Name: "کمدی"}}); err != nil {
		t.Fatalf("seed genres: %v", err)
	}
}

func (ts *testServer) seedUser(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if err := ts.store.PutUser(ctx, &catalog.User{ID: 9, Username: "mina", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := ts.store.ReplaceHistory(ctx, 9, []catalog.WatchHistoryEntry{
		{UserID: 9, ContentID: 1, WatchedAt: time.Now().UTC()},
	}); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	if err := ts.store.ReplaceFavorites(ctx, 9, []catalog.FavoriteEntry{{UserID: 9, ContentID: 2}}); err != nil {
		t.Fatalf("seed favorites: %v", err)
	}
}

// envelope mirrors APIResponse with a raw data payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func decodeRecommendation(t *testing.T, resp *http.Response) recommend.Response {
	t.Helper()

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("expected success envelope, got error %+v", env.Error)
	}

	var rec recommend.Response
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatalf("decode recommendation: %v", err)
	}
	return rec
}

func itemIDs(items []catalog.ContentItem) []int {
	ids := make([]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func TestRecommendationsWithoutSnapshot(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})

	resp, err := http.Get(ts.server.URL + "/api/v1/recommendations")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Success || env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("envelope = %+v, want service unavailable error", env)
	}
}

func TestAnonymousRecommendations(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})
	ts.seedCatalog(t)

	resp, err := http.Get(ts.server.URL + "/api/v1/recommendations?count=2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	rec := decodeRecommendation(t, resp)
	if rec.Source != recommend.SourceFallback {
		t.Errorf("source = %s, want fallback", rec.Source)
	}
	if !reflect.DeepEqual(itemIDs(rec.Items), []int{2, 3}) {
		t.Errorf("items = %v, want popularity order [2 3]", itemIDs(rec.Items))
	}
	if rec.RequestID == "" {
		t.Error("request id missing from response")
	}
}

func TestUserRecommendationsReasoningPath(t *testing.T) {
	reasoner := &stubReasoner{suggestion: recommend.Suggestion{IDs: []int{3, 7}, Interpretation: recommend.InterpretationStrict}}
	ts := newTestServer(t, reasoner, RouterConfig{})
	ts.seedCatalog(t)
	ts.seedUser(t)

	resp, err := http.Get(ts.server.URL + "/api/v1/recommendations/user/9?count=2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	rec := decodeRecommendation(t, resp)
	if rec.Source != recommend.SourceReasoning {
		t.Errorf("source = %s, want reasoning", rec.Source)
	}
	if !reflect.DeepEqual(itemIDs(rec.Items), []int{3, 7}) {
		t.Errorf("items = %v, want [3 7]", itemIDs(rec.Items))
	}
}

func TestUserRecommendationsDegradeOnReasonerError(t *testing.T) {
	reasoner := &stubReasoner{err: fmt.Errorf("upstream down")}
	ts := newTestServer(t, reasoner, RouterConfig{})
	ts.seedCatalog(t)
	ts.seedUser(t)

	resp, err := http.Get(ts.server.URL + "/api/v1/recommendations/user/9?count=2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite reasoning failure", resp.StatusCode)
	}

	rec := decodeRecommendation(t, resp)
	if rec.Source != recommend.SourceFallback {
		t.Errorf("source = %s, want fallback", rec.Source)
	}
	if !reflect.DeepEqual(itemIDs(rec.Items), []int{2, 3}) {
		t.Errorf("items = %v, want popularity order [2 3]", itemIDs(rec.Items))
	}
}

func TestUserRecommendationsUnknownUser(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})
	ts.seedCatalog(t)

	resp, err := http.Get(ts.server.URL + "/api/v1/recommendations/user/404")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRecommendationsInvalidCount(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})
	ts.seedCatalog(t)

	for _, q := range []string{"count=0", "count=-3", "count=abc"} {
		resp, err := http.Get(ts.server.URL + "/api/v1/recommendations?" + q)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestSimilarExcludesTarget(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})
	ts.seedCatalog(t)

	resp, err := http.Get(ts.server.URL + "/api/v1/similar/1?count=3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	rec := decodeRecommendation(t, resp)
	for _, id := range itemIDs(rec.Items) {
		if id == 1 {
			t.Fatal("target id 1 leaked into similar results")
		}
	}
	if len(rec.Items) != 3 {
		t.Errorf("length = %d, want 3", len(rec.Items))
	}
	// Highest similarity first: id 2 shares type, era, and genre.
	if rec.Items[0].ID != 2 {
		t.Errorf("top item = %d, want 2", rec.Items[0].ID)
	}
}

func TestSimilarUnknownTarget(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})
	ts.seedCatalog(t)

	resp, err := http.Get(ts.server.URL + "/api/v1/similar/999")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func put(t *testing.T, url, token string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func TestSnapshotIngestion(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})

	content := []catalog.ContentItem{{ID: 1, Title: "جدایی", Type: catalog.TypeMovie, Year: 2011}}
	resp := put(t, ts.server.URL+"/api/v1/snapshot/content", "", content)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	stored, err := ts.store.Content(context.Background())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != 1 {
		t.Errorf("stored = %+v, want the pushed item", stored)
	}
}

func TestSnapshotIngestionRejectsInvalid(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})

	// Missing title and bad type.
	content := []catalog.ContentItem{{ID: 1, Type: "vhs", Year: 2011}}
	resp := put(t, ts.server.URL+"/api/v1/snapshot/content", "", content)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()

	if _, err := ts.store.Content(context.Background()); err == nil {
		t.Error("rejected snapshot must not be stored")
	}
}

func TestSnapshotIngestionAuth(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{IngestToken: "sekrit"})
	content := []catalog.ContentItem{{ID: 1, Title: "جدایی", Type: catalog.TypeMovie, Year: 2011}}

	resp := put(t, ts.server.URL+"/api/v1/snapshot/content", "", content)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	resp = put(t, ts.server.URL+"/api/v1/snapshot/content", "wrong", content)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	resp = put(t, ts.server.URL+"/api/v1/snapshot/content", "sekrit", content)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("valid token: status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	// Read endpoints stay open.
	getResp, err := http.Get(ts.server.URL + "/api/v1/recommendations")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Errorf("read status = %d, want 200", getResp.StatusCode)
	}
	getResp.Body.Close()
}

func TestHistoryIngestionUserMismatch(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})

	entries := []catalog.WatchHistoryEntry{{UserID: 8, ContentID: 1, WatchedAt: time.Now()}}
	resp := put(t, ts.server.URL+"/api/v1/snapshot/users/9/history", "", entries)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})

	resp, err := http.Get(ts.server.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	var data map[string]interface{}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode health data: %v", err)
	}
	if data["status"] != "ok" {
		t.Errorf("status = %v, want ok", data["status"])
	}
	if data["catalog_snapshot"] != false {
		t.Errorf("catalog_snapshot = %v, want false before any push", data["catalog_snapshot"])
	}
}

func TestRequestIDHeaderPropagated(t *testing.T) {
	ts := newTestServer(t, nil, RouterConfig{})

	req, _ := http.NewRequest(http.MethodGet, ts.server.URL+"/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("request id header = %q, want trace-123", got)
	}
}
