// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package tracklist owns the playback-history state machine: a bounded
// play history, an optional pending queue with strict priority over
// algorithmic selection, and the manual-selection lock that keeps
// similarity ordering stable while the user jumps around.
//
// The machine has two conceptual states — idle (empty history) and
// active — and three transitions: play, previous and reset. Underflow
// (previous on empty history, play with nothing resolvable) is a no-op,
// never an error.
package tracklist

import (
	"github.com/lucvr/aria/internal/library"
)

// DefaultMaxHistory caps the play history unless configured otherwise.
const DefaultMaxHistory = 30

// Tracklist is the only mutable state in the playback core. It must be
// mutated through the transition methods, by one caller at a time; the
// orchestration layer serializes access.
type Tracklist struct {
	history      []int
	maxHistory   int
	manualSelect *int
	queue        []int

	// version increments on every observable mutation; consumers key
	// selection memoization on it.
	version uint64
}

// New creates an idle tracklist. A non-positive maxHistory applies
// DefaultMaxHistory.
func New(maxHistory int) *Tracklist {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Tracklist{maxHistory: maxHistory}
}

// PlayEffect is the side effect a transition hands to the audio-transport
// collaborator, which owns actual decoding, seeking and volume.
type PlayEffect struct {
	ID   int          `json:"id"`
	Tags library.Tags `json:"tags"`
	Seek *float64     `json:"seek,omitempty"`
}

// Dispatcher receives playback side effects.
type Dispatcher interface {
	Play(effect PlayEffect)
}

// History returns a copy of the play history, oldest first.
func (t *Tracklist) History() []int {
	out := make([]int, len(t.history))
	copy(out, t.history)
	return out
}

// Queue returns a copy of the pending queue.
func (t *Tracklist) Queue() []int {
	out := make([]int, len(t.queue))
	copy(out, t.queue)
	return out
}

// Current returns the currently playing track (the history tail).
func (t *Tracklist) Current() (int, bool) {
	if len(t.history) == 0 {
		return 0, false
	}
	return t.history[len(t.history)-1], true
}

// ManualSelect returns the last explicitly chosen track, if any.
func (t *Tracklist) ManualSelect() *int {
	return t.manualSelect
}

// Version returns the mutation counter.
func (t *Tracklist) Version() uint64 {
	return t.version
}

// Idle reports whether nothing has been played.
func (t *Tracklist) Idle() bool {
	return len(t.history) == 0
}

// SetManualSelect records an explicit user choice. Automatic advancement
// never calls this.
func (t *Tracklist) SetManualSelect(id int) {
	v := id
	t.manualSelect = &v
	t.version++
}

// Enqueue appends a track to the pending queue. Queued tracks are
// consumed before any algorithmic selection.
func (t *Tracklist) Enqueue(id int) {
	t.queue = append(t.queue, id)
	t.version++
}

// Play resolves and plays a track. When id is nil the next track is the
// head of the queue if any, else the candidate cyclically after the
// current track in ordered (or its first entry when nothing is playing).
// An unresolvable play is a no-op. The resolved track is appended to the
// history unless it is already the tail; the oldest entry is evicted past
// the cap.
func (t *Tracklist) Play(id *int, seek *float64, ordered []int, idx *library.Index, dispatch Dispatcher) {
	resolved, ok := t.resolve(id, ordered)
	if !ok {
		return
	}

	if cur, playing := t.Current(); !playing || cur != resolved {
		t.history = append(t.history, resolved)
		if len(t.history) > t.maxHistory {
			t.history = t.history[1:]
		}
		t.version++
	}

	if dispatch != nil {
		tags, _ := idx.TagsOf(resolved)
		dispatch.Play(PlayEffect{ID: resolved, Tags: tags, Seek: seek})
	}
}

// resolve picks the track a play transition applies to.
func (t *Tracklist) resolve(id *int, ordered []int) (int, bool) {
	if id != nil {
		return *id, true
	}

	if len(t.queue) > 0 {
		head := t.queue[0]
		t.queue = append([]int{}, t.queue[1:]...)
		t.version++
		return head, true
	}

	if len(ordered) == 0 {
		return 0, false
	}

	next := ordered[0]
	if cur, playing := t.Current(); playing {
		for i, candidate := range ordered {
			if candidate == cur {
				next = ordered[(i+1)%len(ordered)]
				break
			}
		}
	}
	return next, true
}

// Previous pops the most recent history entry and, if a previous track
// remains, replays it from the start. On an empty or singleton history no
// playback effect fires.
func (t *Tracklist) Previous(idx *library.Index, dispatch Dispatcher) {
	if len(t.history) == 0 {
		return
	}
	t.history = t.history[:len(t.history)-1]
	t.version++

	last, ok := t.Current()
	if !ok {
		return
	}
	if dispatch != nil {
		tags, _ := idx.TagsOf(last)
		dispatch.Play(PlayEffect{ID: last, Tags: tags})
	}
}

// Reset clears history, queue and the manual selection, restoring the
// idle state.
func (t *Tracklist) Reset() {
	t.history = nil
	t.queue = nil
	t.manualSelect = nil
	t.version++
}
