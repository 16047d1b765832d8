// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package library

// Index is the immutable, derived view over one metadata snapshot. A new
// Index fully replaces its predecessor on every snapshot or patch batch;
// consumers never observe partial mutation.
type Index struct {
	// Musics lists track ids in daemon insertion order.
	Musics []int

	// Tags is the flat tag sequence the index was built from, after
	// patch application. It is the base for the next incremental build.
	Tags []Tag

	// Users lists known library owners.
	Users []User

	tagsByMusic map[int]Tags
	embeddings  map[int]Vector
	searchDoc   []IndexedTrack
}

// Build constructs an Index from a raw snapshot. The base tag set is
// raw.Tags if present, else the previous index's tags if one is given,
// else empty; raw.Patches are then applied strictly in order before the
// index structures are derived.
func Build(raw RawMetadata, previous *Index) *Index {
	tags := raw.Tags
	if tags == nil && previous != nil {
		tags = previous.Tags
	}
	tags = ApplyPatches(tags, raw.Patches)

	idx := &Index{
		Musics:      raw.Musics,
		Tags:        tags,
		Users:       raw.Users,
		tagsByMusic: make(map[int]Tags, len(raw.Musics)),
		embeddings:  make(map[int]Vector),
		searchDoc:   make([]IndexedTrack, 0, len(raw.Musics)),
	}

	// Every known track gets a tag mapping, so lookups on tracks without
	// tags yield an empty set rather than "not found".
	for _, id := range raw.Musics {
		idx.tagsByMusic[id] = make(Tags)
	}

	for _, tag := range tags {
		ts, ok := idx.tagsByMusic[tag.MusicID]
		if !ok {
			// Tag for an untracked id; carried in Tags but not indexed.
			continue
		}
		ts[tag.Key] = tag
		if tag.Key == KeyEmbedding && tag.Vector != nil {
			idx.embeddings[tag.MusicID] = NewVector(tag.Vector)
		}
	}

	for _, id := range raw.Musics {
		ts := idx.tagsByMusic[id]
		idx.searchDoc = append(idx.searchDoc, IndexedTrack{
			ID:     id,
			Title:  ts[KeyTitle].TextValue(),
			Artist: ts[KeyArtist].TextValue(),
		})
	}

	return idx
}

// Empty returns an index over no tracks.
func Empty() *Index {
	return Build(RawMetadata{}, nil)
}

// ApplyPatches returns a new tag sequence with the patches applied in
// order. The input slice is not mutated. Patches referencing tags that do
// not exist are no-ops; applying the same remove twice is idempotent.
func ApplyPatches(tags []Tag, patches []Patch) []Tag {
	if len(patches) == 0 {
		if tags == nil {
			return []Tag{}
		}
		return tags
	}

	out := make([]Tag, len(tags))
	copy(out, tags)

	for _, p := range patches {
		switch p.Kind {
		case PatchAdd:
			if p.Tag != nil {
				out = append(out, *p.Tag)
			}
		case PatchRemove:
			// Remove tags matching the id AND the key, keeping order.
			kept := out[:0]
			for _, t := range out {
				if t.MusicID == p.ID && t.Key == p.Key {
					continue
				}
				kept = append(kept, t)
			}
			out = kept
		case PatchUpdate:
			if p.Tag == nil {
				break
			}
			for i, t := range out {
				if t.MusicID == p.Tag.MusicID && t.Key == p.Tag.Key {
					out[i] = *p.Tag
					break
				}
			}
		}
	}

	return out
}

// TagsOf returns the tag set for a track. The second return is false for
// tracks the index does not know about; known tracks without tags return
// an empty, non-nil set.
func (idx *Index) TagsOf(id int) (Tags, bool) {
	ts, ok := idx.tagsByMusic[id]
	return ts, ok
}

// Embedding returns the track's embedding vector, if it has one.
func (idx *Index) Embedding(id int) (Vector, bool) {
	v, ok := idx.embeddings[id]
	return v, ok
}

// CanPlay reports whether the track carries a locally available rendition.
func (idx *Index) CanPlay(id int) bool {
	ts, ok := idx.tagsByMusic[id]
	return ok && ts.CanPlay()
}

// SearchDocument returns the flattened {id, title, artist} document, one
// entry per track in Musics order.
func (idx *Index) SearchDocument() []IndexedTrack {
	return idx.searchDoc
}

// FirstUser returns the first known user id, used as the default library
// selection when no preference is stored.
func (idx *Index) FirstUser() (int, bool) {
	if len(idx.Users) == 0 {
		return 0, false
	}
	return idx.Users[0].ID, true
}
