// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package library builds the in-memory metadata index the rest of Aria
// reads from.
//
// The daemon delivers a raw snapshot (track ids, tags, users) or a patch
// batch against the previously known tag set. Build turns either into an
// immutable Index value: tag lookup per track, embedding vectors with
// precomputed magnitudes, and a flattened title/artist document for the
// search layer.
//
// # Wire contract
//
// Tag and Patch field names and variant tags are a wire contract with the
// sync daemon and must not change:
//
//	{"music_id": 3, "key": "title", "text": "foo"}
//	{"kind": "add", "tag": {...}}
//	{"kind": "remove", "id": 3, "key": "title"}
//	{"kind": "update", "tag": {...}}
//
// # Failure policy
//
// There is no error path. Unknown tag shapes are carried as opaque entries,
// missing values degrade to zero values, and patches referencing unknown
// tracks are no-ops. Lookups on the Index are total functions over
// optional results.
package library
