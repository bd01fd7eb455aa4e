// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package reason

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tamasha-vod/pishnahad/internal/catalog"
	"github.com/tamasha-vod/pishnahad/internal/metrics"
	"github.com/tamasha-vod/pishnahad/internal/recommend"
)

// ErrNoCredential is returned before any network activity when the API
// key is missing or still the deployment placeholder.
var ErrNoCredential = errors.New("reasoning api key not configured")

// Client calls a generateContent-style text-generation API and
// interprets its replies into suggestions. It implements
// recommend.Reasoner.
//
// Calls are throttled with a token-bucket limiter and wrapped in a
// circuit breaker keyed on consecutive failures. A single call is never
// retried; the engine's fallback ranker covers the failure instead.
type Client struct {
	config  Config
	httpc   *http.Client
	logger  zerolog.Logger
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
}

// NewClient creates a reasoning client. A client with no usable
// credential is still valid; every call fails fast with ErrNoCredential.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, httpc *http.Client, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		config:  cfg,
		httpc:   httpc,
		logger:  logger.With().Str("component", "reason").Logger(),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}

	settings := gobreaker.Settings{
		Name:    "reasoning-api",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("reasoning circuit breaker state change")
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](settings)

	return c, nil
}

// SuggestForProfile asks the model for personalized recommendations.
func (c *Client) SuggestForProfile(ctx context.Context, user *catalog.User, profile *recommend.Profile, items []catalog.ContentItem, lookup *catalog.Lookup, count int) (recommend.Suggestion, error) {
	prompt := buildRecommendationPrompt(user, profile, items, lookup, count)
	text, err := c.generate(ctx, prompt)
	if err != nil {
		metrics.RecordReasoningFailure("personalized")
		return recommend.Suggestion{}, err
	}
	return interpret(text, keyRecommendations, count), nil
}

// SuggestSimilar asks the model for content similar to the target.
func (c *Client) SuggestSimilar(ctx context.Context, target *catalog.ContentItem, items []catalog.ContentItem, lookup *catalog.Lookup, count int) (recommend.Suggestion, error) {
	prompt := buildSimilarContentPrompt(target, items, lookup, count)
	text, err := c.generate(ctx, prompt)
	if err != nil {
		metrics.RecordReasoningFailure("similar")
		return recommend.Suggestion{}, err
	}
	return interpret(text, keySimilarContent, count), nil
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	SystemInstruction *generateContent  `json:"systemInstruction,omitempty"`
	Contents          []generateContent `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateResponse is the generateContent response body.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generate sends one prompt and returns the raw text of the first
// response segment.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	// Credential guard runs before the limiter and breaker so a
	// misconfigured instance never queues or trips anything.
	if !c.config.Configured() {
		return "", ErrNoCredential
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("throttle wait: %w", err)
	}

	return c.breaker.Execute(func() (string, error) {
		return c.doGenerate(ctx, prompt)
	})
}

func (c *Client) doGenerate(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.config.BaseURL, c.config.Model, c.config.APIKey)

	body, err := json.Marshal(generateRequest{
		SystemInstruction: &generateContent{Parts: []generatePart{{Text: systemInstruction}}},
		Contents:          []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("reasoning api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("reasoning api status %d: %s", resp.StatusCode, payload)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("reasoning api error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("reasoning api returned no candidates")
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}
