// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the recommendation service:
// - Request latency and throughput per mode (personalized / similar)
// - Result source split (reasoning / mixed / fallback)
// - Reasoning call failures and degraded interpretations
// - Snapshot ingestion

var (
	// Recommendation Metrics
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pishnahad_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"}, // "personalized", "similar"
	)

	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pishnahad_recommendation_requests_total",
			Help: "Total number of recommendation requests by mode and result source",
		},
		[]string{"mode", "source"}, // source: "reasoning", "mixed", "fallback"
	)

	RecommendationResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pishnahad_recommendation_result_count",
			Help:    "Number of items returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"mode"},
	)

	// Reasoning Metrics
	ReasoningFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pishnahad_reasoning_failures_total",
			Help: "Total number of failed external reasoning calls",
		},
		[]string{"mode"},
	)

	DegradedInterpretations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pishnahad_reasoning_degraded_total",
			Help: "Total number of model replies recovered via the digit-scan heuristic",
		},
		[]string{"mode"},
	)

	EmptyInterpretations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pishnahad_reasoning_empty_total",
			Help: "Total number of model replies that yielded no identifiers",
		},
		[]string{"mode"},
	)

	// Snapshot Ingestion Metrics
	SnapshotUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pishnahad_snapshot_updates_total",
			Help: "Total number of accepted snapshot pushes by kind",
		},
		[]string{"kind"}, // "content", "genres", "tags", "user", "history", "favorites"
	)

	SnapshotRejects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pishnahad_snapshot_rejects_total",
			Help: "Total number of rejected snapshot pushes by kind",
		},
		[]string{"kind"},
	)

	SnapshotContentItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pishnahad_snapshot_content_items",
			Help: "Number of content items in the current snapshot",
		},
	)

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pishnahad_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pishnahad_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)
)

// RecordRecommendation captures one completed recommendation request.
func RecordRecommendation(mode, source string, duration time.Duration, resultCount int) {
	RecommendationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	RecommendationRequests.WithLabelValues(mode, source).Inc()
	RecommendationResults.WithLabelValues(mode).Observe(float64(resultCount))
}

// RecordReasoningFailure captures one failed external reasoning call.
func RecordReasoningFailure(mode string) {
	ReasoningFailures.WithLabelValues(mode).Inc()
}

// RecordInterpretation captures how a model reply was interpreted.
// Strict interpretations are the baseline and are not counted
// separately; they can be derived from request totals.
func RecordInterpretation(mode, interpretation string) {
	switch interpretation {
	case "degraded":
		DegradedInterpretations.WithLabelValues(mode).Inc()
	case "empty":
		EmptyInterpretations.WithLabelValues(mode).Inc()
	}
}

// RecordSnapshotUpdate captures one snapshot push.
func RecordSnapshotUpdate(kind string, accepted bool) {
	if accepted {
		SnapshotUpdates.WithLabelValues(kind).Inc()
		return
	}
	SnapshotRejects.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest captures one completed HTTP request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
		return
	}
	HTTPActiveRequests.Dec()
}
