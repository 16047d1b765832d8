// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package recommend implements the selection pipeline: it turns the
// metadata index, the play history and a search form into one ordered,
// filterable candidate list plus an auxiliary score map.
//
// # Pipeline
//
//  1. Resolve the scoring anchor: the last-played track, or the manual
//     selection when the similarity sort is keep-order locked.
//  2. Score every playable track's embedding against the anchor's
//     (cosine similarity plus a tiny tie-breaking jitter).
//  3. Derive a recency malus from the play history (suppressed under the
//     keep-order lock).
//  4. A non-empty search query bypasses sorting entirely: "/"-prefixed
//     queries are case-insensitive regular expressions, everything else is
//     fuzzy-matched against title and artist.
//  5. Otherwise order by the selected sort strategy (similarity, creation
//     time, tag value, seeded random), reverse for ascending forms, and
//     apply the library membership filter.
//
// # Determinism
//
// The random sort and the temperature jitter are pure functions of
// (seed, track id); with a pinned seed, repeated evaluations over the same
// inputs produce identical orderings. The per-evaluation score jitter is
// the one deliberate exception: score maps are ephemeral and must not be
// persisted as stable ranks.
//
// All functions are side-effect free over immutable snapshots; the
// pipeline holds no state besides its seed and jitter source.
package recommend
