// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package player is the orchestration layer: it owns the current metadata
// index snapshot, the tracklist and the search form, recomputes the
// selection when (and only when) one of them changed, and routes playback
// side effects to the audio transport.
//
// The player serializes all transitions behind one mutex; the core types
// it coordinates are pure and never see concurrent access. Index and
// selection values are immutable snapshots — a newer snapshot replaces
// its predecessor wholesale, so a superseded recomputation is simply
// discarded.
package player

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lucvr/aria/internal/library"
	"github.com/lucvr/aria/internal/metrics"
	"github.com/lucvr/aria/internal/recommend"
	"github.com/lucvr/aria/internal/tracklist"
)

// Notifier receives change notifications for the UI layer. Implementations
// must not call back into the player.
type Notifier interface {
	// SelectionUpdated fires after the memoized selection was replaced.
	SelectionUpdated(sel recommend.MusicSelect)

	// TracklistUpdated fires after a tracklist transition.
	TracklistUpdated(snapshot TracklistSnapshot)
}

// TracklistSnapshot is the read-only tracklist view exposed to the UI.
type TracklistSnapshot struct {
	History      []int `json:"history"`
	Queue        []int `json:"queue"`
	Current      *int  `json:"current,omitempty"`
	ManualSelect *int  `json:"manual_select,omitempty"`
}

// Player coordinates the selection core. Safe for concurrent use.
type Player struct {
	mu sync.Mutex

	pipeline *recommend.Pipeline
	index    *library.Index
	list     *tracklist.Tracklist
	form     recommend.SearchForm

	// Version counters decide when the memoized selection is stale.
	// Identity-based invalidation is deliberately avoided.
	indexVersion uint64
	formVersion  uint64

	memo      recommend.MusicSelect
	memoIndex uint64
	memoForm  uint64
	memoList  uint64
	memoValid bool

	dispatcher tracklist.Dispatcher
	notifier   Notifier
	logger     zerolog.Logger
}

// Options configures a Player.
type Options struct {
	// MaxHistory caps the play history; zero applies the tracklist
	// default.
	MaxHistory int

	// Dispatcher receives playback side effects. May be nil.
	Dispatcher tracklist.Dispatcher

	// Notifier receives UI change notifications. May be nil.
	Notifier Notifier
}

// New creates a player over an empty index.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(pipeline *recommend.Pipeline, opts Options, logger zerolog.Logger) *Player {
	return &Player{
		pipeline:   pipeline,
		index:      library.Empty(),
		list:       tracklist.New(opts.MaxHistory),
		form:       recommend.DefaultSearchForm(nil),
		dispatcher: opts.Dispatcher,
		notifier:   opts.Notifier,
		logger:     logger.With().Str("component", "player").Logger(),
	}
}

// ApplySnapshot replaces the current index with one built from the raw
// snapshot (or patch batch, resolved against the previous tag set). The
// default library filter is initialized from the first known user on the
// first snapshot that carries users.
func (p *Player) ApplySnapshot(raw library.RawMetadata) {
	p.mu.Lock()
	defer p.mu.Unlock()

	trigger := "snapshot"
	if raw.Tags == nil && len(raw.Patches) > 0 {
		trigger = "patch"
	}

	start := time.Now()
	p.index = library.Build(raw, p.index)
	p.indexVersion++
	metrics.IndexBuilds.WithLabelValues(trigger).Inc()
	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	metrics.IndexTracks.Set(float64(len(p.index.Musics)))

	if p.form.Filters.User == nil {
		if id, ok := p.index.FirstUser(); ok {
			user := id
			p.form.Filters.User = &user
			p.formVersion++
		}
	}

	p.logger.Debug().
		Str("trigger", trigger).
		Int("tracks", len(p.index.Musics)).
		Int("tags", len(p.index.Tags)).
		Msg("metadata index rebuilt")

	p.notifySelection()
}

// Index returns the current immutable index snapshot.
func (p *Player) Index() *library.Index {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// SearchForm returns the current search form.
func (p *Player) SearchForm() recommend.SearchForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// SetSearchForm replaces the search form.
func (p *Player) SetSearchForm(form recommend.SearchForm) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.form = form
	p.formVersion++
	p.logger.Debug().
		Str("sort", form.Sort.Kind.String()).
		Bool("descending", form.Sort.Descending).
		Str("query", form.Filters.SearchQuery).
		Msg("search form updated")

	p.notifySelection()
}

// Selection returns the current MusicSelect, recomputing it only if the
// index, form or tracklist changed since the memoized evaluation.
func (p *Player) Selection() recommend.MusicSelect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectionLocked()
}

// selectionLocked recomputes or reuses the memoized selection. Callers
// hold p.mu.
func (p *Player) selectionLocked() recommend.MusicSelect {
	listVersion := p.list.Version()
	if p.memoValid &&
		p.memoIndex == p.indexVersion &&
		p.memoForm == p.formVersion &&
		p.memoList == listVersion {
		metrics.SelectionMemoHits.Inc()
		return p.memo
	}

	trigger := "metadata"
	switch {
	case p.memoValid && p.memoForm != p.formVersion:
		trigger = "form"
	case p.memoValid && p.memoList != listVersion:
		trigger = "tracklist"
	}

	start := time.Now()
	p.memo = p.pipeline.Select(p.index, p.form, p.list.History(), p.list.ManualSelect())
	p.memoIndex = p.indexVersion
	p.memoForm = p.formVersion
	p.memoList = listVersion
	p.memoValid = true

	metrics.SelectionRecomputes.WithLabelValues(trigger).Inc()
	metrics.SelectionDuration.Observe(time.Since(start).Seconds())

	return p.memo
}

// Play resolves and plays a track: an explicit id, the queue head, or the
// next candidate after the current track in the selection ordering. When
// manual is set the choice is recorded for the keep-order similarity lock.
func (p *Player) Play(id *int, seek *float64, manual bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if manual && id != nil {
		p.list.SetManualSelect(*id)
	}

	sel := p.selectionLocked()
	p.list.Play(id, seek, sel.List, p.index, p.dispatcher)
	metrics.PlaybackTransitions.WithLabelValues("play").Inc()

	p.notifyTracklist()
}

// Previous steps back in the play history.
func (p *Player) Previous() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.list.Previous(p.index, p.dispatcher)
	metrics.PlaybackTransitions.WithLabelValues("previous").Inc()

	p.notifyTracklist()
}

// Reset clears the play history, queue and manual selection.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.list.Reset()
	metrics.PlaybackTransitions.WithLabelValues("reset").Inc()

	p.notifyTracklist()
}

// Enqueue appends a track to the pending queue.
func (p *Player) Enqueue(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.list.Enqueue(id)
	metrics.PlaybackTransitions.WithLabelValues("enqueue").Inc()

	p.notifyTracklist()
}

// Tracklist returns a read-only snapshot for UI display.
func (p *Player) Tracklist() TracklistSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracklistSnapshotLocked()
}

func (p *Player) tracklistSnapshotLocked() TracklistSnapshot {
	snapshot := TracklistSnapshot{
		History:      p.list.History(),
		Queue:        p.list.Queue(),
		ManualSelect: p.list.ManualSelect(),
	}
	if cur, ok := p.list.Current(); ok {
		c := cur
		snapshot.Current = &c
	}
	return snapshot
}

// notifySelection pushes a freshly computed selection to the notifier.
// Callers hold p.mu.
func (p *Player) notifySelection() {
	if p.notifier == nil {
		return
	}
	p.notifier.SelectionUpdated(p.selectionLocked())
}

// notifyTracklist pushes the tracklist snapshot and, since history
// changes reorder the selection, the refreshed selection too. Callers
// hold p.mu.
func (p *Player) notifyTracklist() {
	if p.notifier == nil {
		return
	}
	p.notifier.TracklistUpdated(p.tracklistSnapshotLocked())
	p.notifier.SelectionUpdated(p.selectionLocked())
}
