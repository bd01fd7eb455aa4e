// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

// Package recommend implements the recommendation and similarity engine.
//
// The engine composes four pieces:
//
//   - Profile extraction: a compact, per-request preference profile derived
//     from a user's watch history and favorites (never persisted).
//   - An external reasoning call (the Reasoner interface, implemented by
//     the reason package) that proposes candidate content identifiers.
//   - Deterministic fallback ranking: popularity (release year, descending)
//     and additive attribute similarity (type, year proximity, shared
//     genres, shared tags).
//   - An orchestrator that tries the reasoning path, validates and tops up
//     the result deterministically, and degrades to a fully local
//     computation on any failure.
//
// The orchestrator never returns an error for degradation: every failure
// mode collapses to a deterministic ranking over the caller's catalog, so
// callers always receive an ordered list of content items.
//
// This package has no dependency on the HTTP or storage layers; all inputs
// arrive as arguments and all records are treated as read-only snapshots.
package recommend
