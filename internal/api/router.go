// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package api provides the HTTP surface for the UI: selection and
// tracklist reads, playback commands, search form updates and local
// settings.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lucvr/aria/internal/player"
	"github.com/lucvr/aria/internal/settings"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	player   *player.Player
	store    *settings.Store
	ws       http.Handler
	mw       *Middleware
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewRouter creates a router. ws may be nil when the UI socket endpoint
// is not served.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(p *player.Player, store *settings.Store, ws http.Handler, mw *Middleware, logger zerolog.Logger) *Router {
	if mw == nil {
		mw = NewMiddleware(DefaultMiddlewareConfig())
	}
	return &Router{
		player:   p,
		store:    store,
		ws:       ws,
		mw:       mw,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Setup builds the chi handler tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(MetricsMiddleware())

		// Reads
		r.Get("/select", router.handleSelect)
		r.Get("/tracklist", router.handleTracklist)
		r.Get("/searchform", router.handleSearchFormGet)

		// Playback commands
		r.Post("/play", router.handlePlay)
		r.Post("/previous", router.handlePrevious)
		r.Post("/reset", router.handleReset)
		r.Post("/queue", router.handleQueue)

		r.Put("/searchform", router.handleSearchFormPut)

		// Local settings
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", router.handleSettingsList)
			r.Get("/{key}", router.handleSettingGet)
			r.Put("/{key}", router.handleSettingPut)
		})

		if router.ws != nil {
			r.Handle("/ws", router.ws)
		}
	})

	r.Get("/healthz", router.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
