// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package recommend

import (
	"github.com/lucvr/aria/internal/library"
)

const (
	// currentTrackBonus pins the most recently played track to the top of
	// the list when the ranking is not keep-order locked.
	currentTrackBonus = 200.0

	// malusFalloff controls how quickly the repeat penalty fades with
	// history distance: malus(d) = -1 / (malusFalloff * d).
	malusFalloff = 0.3

	// unscoredSentinel ranks tracks without a score below any real
	// similarity, which lies in [-1, 1].
	unscoredSentinel = -100.0

	// jitterSpan bounds the per-evaluation tie-breaking jitter.
	jitterSpan = 0.0001
)

// Similarity returns the cosine-like similarity between two embedding
// vectors: dot(a, b) / (|a| * |b|). Zero-magnitude vectors yield 0.
func Similarity(a, b library.Vector) float64 {
	if a.Magnitude == 0 || b.Magnitude == 0 {
		return 0
	}
	return library.Dot(a, b) / (a.Magnitude * b.Magnitude)
}

// RecencyMalus maps each track in the history to a score adjustment: the
// most recent entry gets currentTrackBonus, every other occurrence at
// distance d (1-indexed from the end) gets -1/(malusFalloff*d). Tracks
// appearing several times keep the value of their most recent occurrence.
// Tracks absent from the history get no entry.
func RecencyMalus(history []int) map[int]float64 {
	malus := make(map[int]float64, len(history))
	last := len(history) - 1
	for i, id := range history {
		d := last - i
		if d == 0 {
			malus[id] = currentTrackBonus
			continue
		}
		malus[id] = -1.0 / (float64(d) * malusFalloff)
	}
	return malus
}

// scoreMap scores every playable track against the anchor's embedding.
// Tracks without a local rendition are excluded entirely; playable tracks
// without an embedding keep only their jitter. An anchor without an
// embedding yields an empty map.
func (p *Pipeline) scoreMap(idx *library.Index, anchor int) map[int]float64 {
	anchorVec, ok := idx.Embedding(anchor)
	if !ok {
		return map[int]float64{}
	}

	scores := make(map[int]float64, len(idx.Musics))
	for _, id := range idx.Musics {
		tags, ok := idx.TagsOf(id)
		if !ok || !tags.CanPlay() {
			continue
		}
		// Fresh jitter per evaluation; breaks exact ties without
		// materially perturbing ranking.
		score := p.jitter()
		if emb, ok := idx.Embedding(id); ok {
			score += Similarity(anchorVec, emb)
		}
		scores[id] = score
	}
	return scores
}

// jitter returns a uniform value in [0, jitterSpan).
func (p *Pipeline) jitter() float64 {
	p.mu.Lock()
	v := p.rng.Float64() * jitterSpan
	p.mu.Unlock()
	return v
}
