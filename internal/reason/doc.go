// Pishnahad - Recommendation Engine for the Tamasha Streaming Platform
// Copyright 2026 Pishnahad Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tamasha-vod/pishnahad

// Package reason talks to the external language-model API that proposes
// content identifiers for a preference profile or a target item.
//
// The package covers three concerns: building the natural-language
// prompts, making the generateContent call (rate limited, behind a
// circuit breaker, with a fast-fail credential guard), and interpreting
// the model's free-text reply back into identifier lists. Interpretation
// is lossy on purpose: model output that is not clean JSON degrades to a
// digit-scan heuristic, and output that yields nothing becomes an empty
// suggestion rather than an error.
//
// Client implements recommend.Reasoner; the engine package never imports
// this one.
package reason
