// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package library

import (
	"strconv"
	"strings"
)

// Tag keys with special meaning to the index and the selection pipeline.
const (
	// KeyTitle holds the display title of a track.
	KeyTitle = "title"

	// KeyArtist holds the display artist of a track.
	KeyArtist = "artist"

	// KeyEmbedding carries the learned similarity vector of a track.
	KeyEmbedding = "embedding"

	// LocalPrefix marks tags describing a locally available rendition
	// (e.g. "local_mp3"). A track with at least one such tag is playable.
	LocalPrefix = "local_"

	// UserLibraryPrefix marks library-membership tags; the full key is
	// UserLibraryPrefix + the decimal user id.
	UserLibraryPrefix = "user_library:"
)

// Tag is a typed key/value fact attached to one track. Exactly one of the
// value fields is set; which one depends on the key. Unknown combinations
// are carried opaquely.
type Tag struct {
	// MusicID is the track this tag belongs to.
	MusicID int `json:"music_id"`

	// Key is the namespaced tag key (e.g. "title", "embedding",
	// "user_library:1").
	Key string `json:"key"`

	// Text is the text payload, if any.
	Text *string `json:"text,omitempty"`

	// Integer is the integer payload, if any.
	Integer *int64 `json:"integer,omitempty"`

	// Date is the date payload in RFC 3339 form, if any.
	Date *string `json:"date,omitempty"`

	// Vector is the vector payload, if any. Only meaningful on the
	// "embedding" key.
	Vector []float64 `json:"vector,omitempty"`
}

// TextValue returns the text payload or the empty string.
func (t Tag) TextValue() string {
	if t.Text == nil {
		return ""
	}
	return *t.Text
}

// User identifies a library owner. The id is stable; the display name may
// change.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Tags maps tag key to Tag for a single track.
type Tags map[string]Tag

// CanPlay reports whether the tag set carries a locally available
// rendition.
func (t Tags) CanPlay() bool {
	for key := range t {
		if strings.HasPrefix(key, LocalPrefix) {
			return true
		}
	}
	return false
}

// HasLibrary reports whether the tag set marks membership in the given
// user's library.
func (t Tags) HasLibrary(userID int) bool {
	_, ok := t[UserLibraryKey(userID)]
	return ok
}

// UserLibraryKey returns the membership tag key for a user.
func UserLibraryKey(userID int) string {
	return UserLibraryPrefix + strconv.Itoa(userID)
}

// IndexedTrack is one entry of the flattened search document.
type IndexedTrack struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Patch kinds. These are wire values.
const (
	PatchAdd    = "add"
	PatchRemove = "remove"
	PatchUpdate = "update"
)

// Patch is one incremental change to the tag sequence. Kind selects the
// variant: "add" and "update" carry Tag, "remove" carries ID and Key.
type Patch struct {
	Kind string `json:"kind"`
	Tag  *Tag   `json:"tag,omitempty"`
	ID   int    `json:"id,omitempty"`
	Key  string `json:"key,omitempty"`
}

// RawMetadata is the snapshot shape delivered by the sync daemon. Tags may
// be omitted when Patches carries an incremental update against the
// previously known tag set.
type RawMetadata struct {
	Musics   []int       `json:"musics"`
	Tags     []Tag       `json:"tags,omitempty"`
	Users    []User      `json:"users"`
	Settings [][2]string `json:"settings,omitempty"`
	Patches  []Patch     `json:"patches,omitempty"`
}
