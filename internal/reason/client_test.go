// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package reason

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
	"github.com/tamasha-vod/pishnahad/internal/recommend"
)

// candidateBody wraps text in a minimal generateContent response.
func candidateBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	cfg.RequestsPerSecond = 1000 // keep tests fast
	return cfg
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	client, err := NewClient(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestSuggestForProfileRoundTrip(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		fmt.Fprint(w, candidateBody(`{"recommendations": [2, 3]}`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))

	s, err := client.SuggestForProfile(context.Background(),
		&catalog.User{ID: 1, Username: "mina"},
		&recommend.Profile{TopGenres: []string{"درام"}},
		[]catalog.ContentItem{{ID: 2, Title: "قهرمان", Type: catalog.TypeMovie, Year: 2021}},
		catalog.NewLookup(nil, nil), 2)
	if err != nil {
		t.Fatalf("SuggestForProfile: %v", err)
	}

	if !reflect.DeepEqual(s.IDs, []int{2, 3}) {
		t.Errorf("ids = %v, want [2 3]", s.IDs)
	}
	if s.Interpretation != recommend.InterpretationStrict {
		t.Errorf("interpretation = %s, want strict", s.Interpretation)
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times, want 1", calls.Load())
	}
}

func TestSuggestSimilarUsesSimilarKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, candidateBody(`{"similar_content": [7]}`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))

	target := catalog.ContentItem{ID: 1, Title: "جدایی", Type: catalog.TypeMovie, Year: 2011}
	s, err := client.SuggestSimilar(context.Background(), &target,
		[]catalog.ContentItem{{ID: 7, Title: "پایتخت", Type: catalog.TypeSeries, Year: 2011}},
		catalog.NewLookup(nil, nil), 1)
	if err != nil {
		t.Fatalf("SuggestSimilar: %v", err)
	}

	if !reflect.DeepEqual(s.IDs, []int{7}) {
		t.Errorf("ids = %v, want [7]", s.IDs)
	}
}

func TestCredentialGuardFailsFast(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, candidateBody("{}"))
	}))
	defer server.Close()

	for _, key := range []string{"", placeholderAPIKey} {
		cfg := testConfig(server.URL)
		cfg.APIKey = key
		client := newTestClient(t, cfg)

		_, err := client.SuggestForProfile(context.Background(), nil, &recommend.Profile{}, nil, catalog.NewLookup(nil, nil), 5)
		if !errors.Is(err, ErrNoCredential) {
			t.Errorf("key %q: err = %v, want ErrNoCredential", key, err)
		}
	}

	if calls.Load() != 0 {
		t.Errorf("credential guard must prevent network calls, server hit %d times", calls.Load())
	}
}

func TestGenerateNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))

	if _, err := client.SuggestForProfile(context.Background(), nil, &recommend.Profile{}, nil, catalog.NewLookup(nil, nil), 5); err == nil {
		t.Error("expected error for non-2xx status, got nil")
	}
}

func TestGenerateEmptyCandidatesIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))

	if _, err := client.SuggestForProfile(context.Background(), nil, &recommend.Profile{}, nil, catalog.NewLookup(nil, nil), 5); err == nil {
		t.Error("expected error for empty candidates, got nil")
	}
}

func TestGenerateAPIErrorPayloadIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":{"code":403,"message":"key revoked"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))

	_, err := client.SuggestForProfile(context.Background(), nil, &recommend.Profile{}, nil, catalog.NewLookup(nil, nil), 5)
	if err == nil || !strings.Contains(err.Error(), "key revoked") {
		t.Errorf("err = %v, want api error payload surfaced", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BreakerFailures = 2
	client := newTestClient(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.SuggestForProfile(ctx, nil, &recommend.Profile{}, nil, catalog.NewLookup(nil, nil), 5); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	// The third call must be rejected by the open breaker without
	// reaching the server.
	if calls.Load() != 2 {
		t.Errorf("server hit %d times, want 2", calls.Load())
	}
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ""

	if _, err := NewClient(cfg, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid config, got nil")
	}
}
