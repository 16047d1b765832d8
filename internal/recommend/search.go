// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package recommend

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/lucvr/aria/internal/library"
)

// DefaultMinRelevance is the moderately permissive fuzzy-match threshold:
// tracks scoring below it are dropped from search results.
const DefaultMinRelevance = 0.4

// Search resolves a free-text query into an ordered track-id list over the
// flattened search document.
//
// Queries starting with "/" are case-insensitive regular expressions
// matched against title OR artist; malformed expressions yield an empty
// result, never an error. Anything else is fuzzy-matched with a relevance
// threshold, most relevant first.
//
// The empty query is the caller's short-circuit — it means "no search
// filtering requested", and callers fall back to sort-based ordering
// instead of calling Search.
func (p *Pipeline) Search(document []library.IndexedTrack, query string) []int {
	if query == "" {
		return []int{}
	}
	if strings.HasPrefix(query, "/") {
		return searchRegex(document, query[1:])
	}
	return p.searchFuzzy(document, query)
}

// searchRegex returns ids whose title or artist matches the
// case-insensitive expression, in document order.
func searchRegex(document []library.IndexedTrack, expr string) []int {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return []int{}
	}
	matches := []int{}
	for _, entry := range document {
		if re.MatchString(entry.Title) || re.MatchString(entry.Artist) {
			matches = append(matches, entry.ID)
		}
	}
	return matches
}

// searchFuzzy ranks tracks by approximate similarity between the query and
// the title/artist fields, keeping those at or above the relevance
// threshold. A case-insensitive substring hit counts as full relevance;
// otherwise the best per-field Jaro-Winkler similarity is used.
func (p *Pipeline) searchFuzzy(document []library.IndexedTrack, query string) []int {
	type match struct {
		id        int
		relevance float64
	}

	jw := metrics.NewJaroWinkler()
	q := strings.ToLower(query)

	matches := []match{}
	for _, entry := range document {
		rel := fieldRelevance(q, entry.Title, jw)
		if r := fieldRelevance(q, entry.Artist, jw); r > rel {
			rel = r
		}
		if rel >= p.minRelevance {
			matches = append(matches, match{id: entry.ID, relevance: rel})
		}
	}

	// Stable keeps document order among equal relevances.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].relevance > matches[j].relevance
	})

	ids := make([]int, len(matches))
	for i, m := range matches {
		ids[i] = m.id
	}
	return ids
}

// fieldRelevance scores one field against the lowercased query.
func fieldRelevance(query, field string, jw *metrics.JaroWinkler) float64 {
	if field == "" {
		return 0
	}
	f := strings.ToLower(field)
	if strings.Contains(f, query) {
		return 1
	}
	return strutil.Similarity(query, f, jw)
}
