// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package recommend

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lucvr/aria/internal/library"
)

// Config holds the pipeline tunables.
type Config struct {
	// Seed drives the random sort and the temperature jitter. Zero picks
	// a fresh seed at construction; pin it for reproducible orderings.
	Seed int64

	// MinRelevance is the fuzzy-search threshold. Zero applies
	// DefaultMinRelevance.
	MinRelevance float64
}

// Pipeline computes MusicSelect values. It is safe for concurrent use;
// every evaluation is a pure function of its inputs apart from the
// ephemeral score jitter.
type Pipeline struct {
	seed         int64
	minRelevance float64
	logger       zerolog.Logger

	// rng feeds the per-evaluation score jitter only; everything ordering
	// -relevant derives from seed via unitValue.
	rng *rand.Rand
	mu  sync.Mutex
}

// New creates a selection pipeline.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) *Pipeline {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	minRelevance := cfg.MinRelevance
	if minRelevance == 0 {
		minRelevance = DefaultMinRelevance
	}

	return &Pipeline{
		seed:         seed,
		minRelevance: minRelevance,
		logger:       logger.With().Str("component", "recommend").Logger(),
		rng:          rand.New(rand.NewSource(seed)), //nolint:gosec // tie-breaking jitter, not security
	}
}

// Seed returns the seed the pipeline was constructed with.
func (p *Pipeline) Seed() int64 { return p.seed }

// Select produces the ordered candidate list and score map for the given
// index snapshot, play history, manual selection and search form. The
// inputs are read, never mutated.
func (p *Pipeline) Select(idx *library.Index, form SearchForm, history []int, manualSelect *int) MusicSelect {
	var anchor *int
	if len(history) > 0 {
		last := history[len(history)-1]
		anchor = &last
	}
	if form.keepOrderActive() && manualSelect != nil {
		anchor = manualSelect
	}

	scores := map[int]float64{}
	if anchor != nil {
		scores = p.scoreMap(idx, *anchor)
	}

	// Keep-order mode suppresses the malus entirely so browsing does not
	// reshuffle the list under the user.
	malus := map[int]float64{}
	if !form.keepOrderActive() {
		malus = RecencyMalus(history)
	}

	var list []int
	if query := form.Filters.SearchQuery; query != "" {
		// Search overrides both sorting and the library filter.
		list = p.Search(idx.SearchDocument(), query)
	} else {
		list = p.sorted(idx, form, anchor, scores, malus)
		list = filterLibrary(idx, list, form.Filters.User)
	}

	return MusicSelect{List: list, Scores: scores}
}

// sorted orders all tracks by the form's sort strategy. Each branch
// constructs a descending-first ordering; ascending forms are reversed at
// the end.
func (p *Pipeline) sorted(idx *library.Index, form SearchForm, anchor *int, scores, malus map[int]float64) []int {
	list := make([]int, len(idx.Musics))
	copy(list, idx.Musics)

	switch form.Sort.Kind {
	case SortSimilarity:
		if anchor == nil {
			// Nothing played yet: most recently added first.
			reverse(list)
			break
		}
		temp := form.Similarity.Temperature
		adjusted := func(id int) float64 {
			score, ok := scores[id]
			if !ok {
				score = unscoredSentinel
			}
			return score + malus[id] - temp*unitValue(p.seed, id)
		}
		sort.SliceStable(list, func(i, j int) bool {
			return adjusted(list[i]) > adjusted(list[j])
		})

	case SortCreationTime:
		reverse(list)

	case SortTag:
		key := form.Sort.TagKey
		value := func(id int) string {
			tags, ok := idx.TagsOf(id)
			if !ok {
				return ""
			}
			return tags[key].TextValue()
		}
		// Lexicographic ascending is the "descending-first" construction
		// for tag sorts; the descending flag flips it below.
		sort.SliceStable(list, func(i, j int) bool {
			return strings.Compare(value(list[i]), value(list[j])) < 0
		})

	case SortRandom:
		sort.SliceStable(list, func(i, j int) bool {
			return unitValue(p.seed, list[i]) < unitValue(p.seed, list[j])
		})
	}

	if !form.Sort.Descending {
		reverse(list)
	}
	return list
}

// filterLibrary retains tracks carrying the user's library-membership tag.
// It is a pure membership filter producing a new slice; relative order is
// preserved.
func filterLibrary(idx *library.Index, list []int, user *int) []int {
	if user == nil {
		return list
	}
	key := library.UserLibraryKey(*user)
	kept := make([]int, 0, len(list))
	for _, id := range list {
		if tags, ok := idx.TagsOf(id); ok {
			if _, member := tags[key]; member {
				kept = append(kept, id)
			}
		}
	}
	return kept
}

func reverse(list []int) {
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
}
