// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package recommend

import (
	"reflect"
	"testing"

	"github.com/lucvr/aria/internal/library"
)

func searchDocument() []library.IndexedTrack {
	return []library.IndexedTrack{
		{ID: 1, Title: "foobar", Artist: "alice"},
		{ID: 2, Title: "barfoo", Artist: "bob"},
		{ID: 3, Title: "Waltz No. 2", Artist: "Shostakovich"},
		{ID: 4, Title: "", Artist: ""},
	}
}

func TestSearchRegex(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{
			name:  "anchored prefix",
			query: "/^foo",
			want:  []int{1},
		},
		{
			name:  "case insensitive",
			query: "/WALTZ",
			want:  []int{3},
		},
		{
			name:  "matches artist too",
			query: "/shosta",
			want:  []int{3},
		},
		{
			name:  "no matches",
			query: "/xyzzy",
			want:  []int{},
		},
		{
			name:  "malformed expression yields empty result",
			query: "/foo[",
			want:  []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := p.Search(searchDocument(), tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSearchFuzzy(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)

	// Exact-substring hits rank at full relevance, in document order.
	got := p.Search(searchDocument(), "foo")
	if len(got) < 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Search(foo) = %v, want [1 2 ...]", got)
	}

	// A near-miss still matches; irrelevant tracks do not.
	got = p.Search(searchDocument(), "shostakovitch")
	if len(got) == 0 || got[0] != 3 {
		t.Errorf("Search(shostakovitch) = %v, want [3]", got)
	}
	for _, id := range got {
		if id == 4 {
			t.Error("track with empty fields must not match")
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)
	if got := p.Search(searchDocument(), ""); len(got) != 0 {
		t.Errorf("Search(\"\") = %v, want empty", got)
	}
}
