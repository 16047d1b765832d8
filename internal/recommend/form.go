// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package recommend

import (
	"fmt"

	"github.com/goccy/go-json"
)

// SortKind selects the ordering strategy for the candidate list.
type SortKind int

const (
	// SortSimilarity orders by embedding similarity to the anchor track.
	SortSimilarity SortKind = iota
	// SortCreationTime orders by insertion order (most recent first when
	// descending).
	SortCreationTime
	// SortTag orders lexicographically on the text value of a tag key.
	SortTag
	// SortRandom orders by a seeded pseudorandom value per track id.
	SortRandom
)

// String returns the wire name of the sort kind.
func (k SortKind) String() string {
	switch k {
	case SortSimilarity:
		return "similarity"
	case SortCreationTime:
		return "creation_time"
	case SortTag:
		return "tag"
	case SortRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParseSortKind maps a wire name back to a SortKind.
func ParseSortKind(s string) (SortKind, bool) {
	switch s {
	case "similarity":
		return SortSimilarity, true
	case "creation_time":
		return SortCreationTime, true
	case "tag":
		return SortTag, true
	case "random":
		return SortRandom, true
	default:
		return 0, false
	}
}

// Sort is the tagged sort variant plus direction. KeepOrder is meaningful
// only for SortSimilarity; TagKey only for SortTag.
type Sort struct {
	Kind       SortKind
	KeepOrder  bool
	TagKey     string
	Descending bool
}

// sortWire is the JSON shape of Sort with the kind discriminator spelled
// out.
type sortWire struct {
	Kind       string `json:"kind"`
	KeepOrder  bool   `json:"keep_order,omitempty"`
	TagKey     string `json:"tag_key,omitempty"`
	Descending bool   `json:"descending"`
}

// MarshalJSON writes the tagged-variant wire form.
func (s Sort) MarshalJSON() ([]byte, error) {
	return json.Marshal(sortWire{
		Kind:       s.Kind.String(),
		KeepOrder:  s.KeepOrder,
		TagKey:     s.TagKey,
		Descending: s.Descending,
	})
}

// UnmarshalJSON parses the tagged-variant wire form. Unknown kinds are
// rejected rather than silently mapped.
func (s *Sort) UnmarshalJSON(data []byte) error {
	var w sortWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, ok := ParseSortKind(w.Kind)
	if !ok {
		return fmt.Errorf("unknown sort kind %q", w.Kind)
	}
	*s = Sort{Kind: kind, KeepOrder: w.KeepOrder, TagKey: w.TagKey, Descending: w.Descending}
	return nil
}

// Filters narrows the candidate list.
type Filters struct {
	// User restricts candidates to one user's library when set.
	User *int `json:"user,omitempty"`

	// SearchQuery overrides sorting entirely when non-empty. A leading
	// "/" switches from fuzzy matching to a regular expression.
	SearchQuery string `json:"search_query"`
}

// SimilarityParams tunes the similarity ordering.
type SimilarityParams struct {
	// Temperature scales a seeded jitter mixed into the similarity
	// ordering. 0 is pure score order; higher values progressively
	// randomize for exploration.
	Temperature float64 `json:"temperature"`
}

// SearchForm is the full user-controlled selection input.
type SearchForm struct {
	Filters    Filters          `json:"filters"`
	Sort       Sort             `json:"sort"`
	Similarity SimilarityParams `json:"similarity_params"`
}

// DefaultSearchForm returns the form a fresh session starts with:
// descending similarity, no query, zero temperature, optionally scoped
// to a user's library.
func DefaultSearchForm(user *int) SearchForm {
	return SearchForm{
		Filters: Filters{User: user},
		Sort:    Sort{Kind: SortSimilarity, Descending: true},
	}
}

// keepOrderActive reports whether the similarity ranking is locked to the
// manual selection.
func (f SearchForm) keepOrderActive() bool {
	return f.Sort.Kind == SortSimilarity && f.Sort.KeepOrder
}

// MusicSelect is the pipeline output: the ordered candidate list and the
// score map it was ranked with. Both are fresh values per evaluation and
// are never mutated by consumers.
type MusicSelect struct {
	List   []int           `json:"list"`
	Scores map[int]float64 `json:"scores"`
}
