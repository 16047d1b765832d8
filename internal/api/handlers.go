// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucvr/aria/internal/recommend"
	"github.com/lucvr/aria/internal/settings"
)

// playRequest triggers a playback transition. All fields are optional;
// an empty body advances to the next candidate.
type playRequest struct {
	ID     *int     `json:"id" validate:"omitempty,min=0"`
	Seek   *float64 `json:"seek" validate:"omitempty,gte=0"`
	Manual bool     `json:"manual"`
}

// queueRequest appends one track to the pending queue.
type queueRequest struct {
	ID int `json:"id" validate:"min=0"`
}

// settingPutRequest writes one settings value.
type settingPutRequest struct {
	Value string `json:"value" validate:"max=65536"`
}

// handleSelect returns the current selection ordering and scores.
func (router *Router) handleSelect(w http.ResponseWriter, r *http.Request) {
	respondData(w, router.player.Selection())
}

// handleTracklist returns the tracklist snapshot.
func (router *Router) handleTracklist(w http.ResponseWriter, r *http.Request) {
	respondData(w, router.player.Tracklist())
}

// handleSearchFormGet returns the active search form.
func (router *Router) handleSearchFormGet(w http.ResponseWriter, r *http.Request) {
	respondData(w, router.player.SearchForm())
}

// handleSearchFormPut replaces the search form.
func (router *Router) handleSearchFormPut(w http.ResponseWriter, r *http.Request) {
	var form recommend.SearchForm
	if err := decodeBody(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed search form", err)
		return
	}
	if form.Similarity.Temperature < 0 {
		respondError(w, http.StatusBadRequest, CodeValidationError, "temperature must not be negative", nil)
		return
	}

	router.player.SetSearchForm(form)
	respondData(w, router.player.SearchForm())
}

// handlePlay resolves and plays a track.
func (router *Router) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed play request", err)
			return
		}
		if err := router.validate.Struct(&req); err != nil {
			respondError(w, http.StatusBadRequest, CodeValidationError, err.Error(), nil)
			return
		}
	}

	router.player.Play(req.ID, req.Seek, req.Manual)
	respondData(w, router.player.Tracklist())
}

// handlePrevious steps back in the play history.
func (router *Router) handlePrevious(w http.ResponseWriter, r *http.Request) {
	router.player.Previous()
	respondData(w, router.player.Tracklist())
}

// handleReset clears the tracklist state.
func (router *Router) handleReset(w http.ResponseWriter, r *http.Request) {
	router.player.Reset()
	respondData(w, router.player.Tracklist())
}

// handleQueue appends a track to the queue.
func (router *Router) handleQueue(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed queue request", err)
		return
	}
	if err := router.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, err.Error(), nil)
		return
	}

	router.player.Enqueue(req.ID)
	respondData(w, router.player.Tracklist())
}

// handleSettingsList returns all stored settings.
func (router *Router) handleSettingsList(w http.ResponseWriter, r *http.Request) {
	all, err := router.store.All()
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternalError, "failed to read settings", err)
		return
	}
	respondData(w, all)
}

// handleSettingGet returns one settings value.
func (router *Router) handleSettingGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := router.store.Get(key)
	if errors.Is(err, settings.ErrNotFound) {
		respondError(w, http.StatusNotFound, CodeNotFound, "setting not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternalError, "failed to read setting", err)
		return
	}

	respondData(w, map[string]string{"key": key, "value": value})
}

// handleSettingPut writes one settings value.
func (router *Router) handleSettingPut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req settingPutRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed settings request", err)
		return
	}
	if err := router.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, err.Error(), nil)
		return
	}

	if err := router.store.Set(key, req.Value); err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternalError, "failed to write setting", err)
		return
	}

	respondData(w, map[string]string{"key": key, "value": req.Value})
}

// handleHealth reports liveness.
func (router *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondData(w, map[string]string{"status": "healthy"})
}
