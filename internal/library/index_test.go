// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package library

import (
	"math"
	"reflect"
	"testing"
)

func strptr(s string) *string { return &s }

func textTag(id int, key, value string) Tag {
	return Tag{MusicID: id, Key: key, Text: strptr(value)}
}

func vectorTag(id int, components ...float64) Tag {
	return Tag{MusicID: id, Key: KeyEmbedding, Vector: components}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	raw := RawMetadata{
		Musics: []int{1, 2, 3},
		Users:  []User{{ID: 7, Name: "alice"}},
		Tags: []Tag{
			textTag(1, KeyTitle, "foobar"),
			textTag(1, KeyArtist, "someone"),
			textTag(1, "local_mp3", "x"),
			vectorTag(1, 3, 4),
			textTag(2, KeyTitle, "barfoo"),
		},
	}

	idx := Build(raw, nil)

	if got := len(idx.Musics); got != 3 {
		t.Fatalf("len(Musics) = %d, want 3", got)
	}

	ts, ok := idx.TagsOf(1)
	if !ok {
		t.Fatal("TagsOf(1) not found")
	}
	if got := ts[KeyTitle].TextValue(); got != "foobar" {
		t.Errorf("title = %q, want %q", got, "foobar")
	}
	if !ts.CanPlay() {
		t.Error("track 1 should be playable")
	}

	// Track 3 has no tags but is known: empty set, not "not found".
	ts3, ok := idx.TagsOf(3)
	if !ok {
		t.Fatal("TagsOf(3) not found, want empty set")
	}
	if len(ts3) != 0 {
		t.Errorf("TagsOf(3) = %v, want empty", ts3)
	}

	if _, ok := idx.TagsOf(99); ok {
		t.Error("TagsOf(99) found, want absent")
	}

	v, ok := idx.Embedding(1)
	if !ok {
		t.Fatal("Embedding(1) missing")
	}
	if math.Abs(v.Magnitude-5) > 1e-9 {
		t.Errorf("magnitude = %f, want 5", v.Magnitude)
	}
	if _, ok := idx.Embedding(2); ok {
		t.Error("Embedding(2) present, want absent")
	}

	wantDoc := []IndexedTrack{
		{ID: 1, Title: "foobar", Artist: "someone"},
		{ID: 2, Title: "barfoo", Artist: ""},
		{ID: 3, Title: "", Artist: ""},
	}
	if got := idx.SearchDocument(); !reflect.DeepEqual(got, wantDoc) {
		t.Errorf("SearchDocument() = %v, want %v", got, wantDoc)
	}

	if id, ok := idx.FirstUser(); !ok || id != 7 {
		t.Errorf("FirstUser() = %d,%v, want 7,true", id, ok)
	}
}

func TestBuildIncremental(t *testing.T) {
	t.Parallel()

	prev := Build(RawMetadata{
		Musics: []int{1},
		Tags:   []Tag{textTag(1, KeyTitle, "old")},
	}, nil)

	// Patch-only update: no Tags in the raw snapshot, base is the
	// previous index's tag set.
	next := Build(RawMetadata{
		Musics: []int{1},
		Patches: []Patch{
			{Kind: PatchUpdate, Tag: &Tag{MusicID: 1, Key: KeyTitle, Text: strptr("new")}},
		},
	}, prev)

	ts, _ := next.TagsOf(1)
	if got := ts[KeyTitle].TextValue(); got != "new" {
		t.Errorf("title after update = %q, want %q", got, "new")
	}

	// The previous index is untouched.
	prevTags, _ := prev.TagsOf(1)
	if got := prevTags[KeyTitle].TextValue(); got != "old" {
		t.Errorf("previous title = %q, want %q", got, "old")
	}
}

func TestApplyPatches(t *testing.T) {
	t.Parallel()

	base := []Tag{
		textTag(1, KeyTitle, "a"),
		textTag(1, KeyArtist, "b"),
		textTag(2, KeyTitle, "c"),
	}

	tests := []struct {
		name    string
		patches []Patch
		want    []Tag
	}{
		{
			name:    "add appends",
			patches: []Patch{{Kind: PatchAdd, Tag: &Tag{MusicID: 3, Key: KeyTitle, Text: strptr("d")}}},
			want: []Tag{
				textTag(1, KeyTitle, "a"),
				textTag(1, KeyArtist, "b"),
				textTag(2, KeyTitle, "c"),
				textTag(3, KeyTitle, "d"),
			},
		},
		{
			name:    "remove matches id and key, not either",
			patches: []Patch{{Kind: PatchRemove, ID: 1, Key: KeyTitle}},
			want: []Tag{
				textTag(1, KeyArtist, "b"),
				textTag(2, KeyTitle, "c"),
			},
		},
		{
			name: "remove is idempotent",
			patches: []Patch{
				{Kind: PatchRemove, ID: 1, Key: KeyTitle},
				{Kind: PatchRemove, ID: 1, Key: KeyTitle},
			},
			want: []Tag{
				textTag(1, KeyArtist, "b"),
				textTag(2, KeyTitle, "c"),
			},
		},
		{
			name:    "update replaces first match in place",
			patches: []Patch{{Kind: PatchUpdate, Tag: &Tag{MusicID: 2, Key: KeyTitle, Text: strptr("z")}}},
			want: []Tag{
				textTag(1, KeyTitle, "a"),
				textTag(1, KeyArtist, "b"),
				textTag(2, KeyTitle, "z"),
			},
		},
		{
			name:    "update on missing tag is a no-op",
			patches: []Patch{{Kind: PatchUpdate, Tag: &Tag{MusicID: 9, Key: KeyTitle, Text: strptr("z")}}},
			want:    base,
		},
		{
			name:    "remove on missing tag is a no-op",
			patches: []Patch{{Kind: PatchRemove, ID: 9, Key: "nope"}},
			want:    base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ApplyPatches(base, tt.patches)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ApplyPatches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyPatchesDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	base := []Tag{textTag(1, KeyTitle, "a"), textTag(2, KeyTitle, "b")}
	ApplyPatches(base, []Patch{{Kind: PatchRemove, ID: 1, Key: KeyTitle}})

	want := []Tag{textTag(1, KeyTitle, "a"), textTag(2, KeyTitle, "b")}
	if !reflect.DeepEqual(base, want) {
		t.Errorf("input mutated: %v", base)
	}
}

func TestVector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    Vector
		wantDot float64
	}{
		{
			name:    "orthogonal",
			a:       NewVector([]float64{1, 0}),
			b:       NewVector([]float64{0, 1}),
			wantDot: 0,
		},
		{
			name:    "identical",
			a:       NewVector([]float64{1, 0}),
			b:       NewVector([]float64{1, 0}),
			wantDot: 1,
		},
		{
			name:    "truncates to shorter",
			a:       NewVector([]float64{1, 2, 3}),
			b:       NewVector([]float64{4, 5}),
			wantDot: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Dot(tt.a, tt.b); math.Abs(got-tt.wantDot) > 1e-9 {
				t.Errorf("Dot() = %f, want %f", got, tt.wantDot)
			}
		})
	}
}

func TestMagnitudeInvariant(t *testing.T) {
	t.Parallel()

	for _, components := range [][]float64{
		{},
		{0},
		{1, 2, 3},
		{-1, 0.5, 2.25},
	} {
		v := NewVector(components)
		var sum float64
		for _, c := range components {
			sum += c * c
		}
		if want := math.Sqrt(sum); math.Abs(v.Magnitude-want) > 1e-12 {
			t.Errorf("magnitude of %v = %f, want %f", components, v.Magnitude, want)
		}
	}
}

func TestCanPlay(t *testing.T) {
	t.Parallel()

	idx := Build(RawMetadata{
		Musics: []int{1, 2},
		Tags: []Tag{
			textTag(1, "local_youtube", ""),
			textTag(2, KeyTitle, "not playable"),
		},
	}, nil)

	if !idx.CanPlay(1) {
		t.Error("CanPlay(1) = false, want true")
	}
	if idx.CanPlay(2) {
		t.Error("CanPlay(2) = true, want false")
	}
	if idx.CanPlay(42) {
		t.Error("CanPlay(42) = true, want false")
	}
}
