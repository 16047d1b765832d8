// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package metrics exposes Prometheus instrumentation for the selection
// core and its collaborators: index builds, selection recomputes, playback
// transitions, the sync feed and the UI websocket hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IndexBuilds counts metadata index rebuilds by trigger.
	IndexBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_index_builds_total",
			Help: "Total number of metadata index builds",
		},
		[]string{"trigger"}, // "snapshot", "patch"
	)

	// IndexBuildDuration observes how long index builds take.
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aria_index_build_duration_seconds",
			Help:    "Duration of metadata index builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// IndexTracks gauges the number of tracks in the current index.
	IndexTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aria_index_tracks",
			Help: "Number of tracks in the current metadata index",
		},
	)

	// SelectionRecomputes counts selection pipeline evaluations by
	// trigger.
	SelectionRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_selection_recomputes_total",
			Help: "Total number of selection pipeline evaluations",
		},
		[]string{"trigger"}, // "metadata", "form", "tracklist"
	)

	// SelectionDuration observes selection pipeline latency.
	SelectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aria_selection_duration_seconds",
			Help:    "Duration of selection pipeline evaluations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SelectionMemoHits counts evaluations skipped because no input
	// version changed.
	SelectionMemoHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aria_selection_memo_hits_total",
			Help: "Selection evaluations served from the memoized result",
		},
	)

	// PlaybackTransitions counts tracklist transitions by kind.
	PlaybackTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_playback_transitions_total",
			Help: "Total number of tracklist transitions",
		},
		[]string{"kind"}, // "play", "previous", "reset", "enqueue"
	)

	// SyncMessages counts messages received from the metadata daemon.
	SyncMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aria_sync_messages_total",
			Help: "Total number of messages received on the sync feed",
		},
		[]string{"kind"}, // "snapshot", "patch", "invalid"
	)

	// SyncReconnects counts reconnection attempts to the daemon.
	SyncReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aria_sync_reconnects_total",
			Help: "Total number of sync feed reconnection attempts",
		},
	)

	// WebsocketClients gauges connected UI clients.
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aria_websocket_clients",
			Help: "Number of connected UI websocket clients",
		},
	)

	// HTTPRequestDuration observes API endpoint latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aria_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
