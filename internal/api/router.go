// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the router-level settings.
type RouterConfig struct {
	// CORSOrigins lists allowed CORS origins. Empty disables CORS.
	CORSOrigins []string

	// RateLimit is the per-IP request budget per RateWindow. Zero
	// disables rate limiting.
	RateLimit  int
	RateWindow time.Duration

	// IngestToken guards the snapshot push endpoints.
	IngestToken string
}

// NewRouter assembles the service's HTTP routes.
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORS(cfg.CORSOrigins))
	}

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Metrics())
		if cfg.RateLimit > 0 {
			r.Use(RateLimit(cfg.RateLimit, cfg.RateWindow))
		}

		r.Get("/health", h.Health)

		r.Get("/recommendations", h.GetRecommendations)
		r.Get("/recommendations/user/{userID}", h.GetRecommendations)
		r.Get("/similar/{contentID}", h.GetSimilar)

		r.Route("/snapshot", func(r chi.Router) {
			r.Use(IngestAuth(cfg.IngestToken))

			r.Put("/content", h.PutContent)
			r.Put("/genres", h.PutGenres)
			r.Put("/tags", h.PutTags)
			r.Put("/users/{userID}", h.PutUser)
			r.Put("/users/{userID}/history", h.PutHistory)
			r.Put("/users/{userID}/favorites", h.PutFavorites)
		})
	})

	return r
}
