// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/lucvr/aria/internal/library"
	"github.com/lucvr/aria/internal/player"
	"github.com/lucvr/aria/internal/recommend"
	"github.com/lucvr/aria/internal/settings"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *APIError       `json:"error"`
}

func strptr(s string) *string { return &s }

func newTestServer(t *testing.T) (*httptest.Server, *player.Player) {
	t.Helper()

	pipeline := recommend.New(recommend.Config{Seed: 7}, zerolog.Nop())
	p := player.New(pipeline, player.Options{}, zerolog.Nop())
	p.ApplySnapshot(library.RawMetadata{
		Musics: []int{1, 2},
		Tags: []library.Tag{
			{MusicID: 1, Key: library.KeyTitle, Text: strptr("first")},
			{MusicID: 1, Key: "local_mp3", Text: strptr("a.mp3")},
			{MusicID: 2, Key: library.KeyTitle, Text: strptr("second")},
			{MusicID: 2, Key: "local_mp3", Text: strptr("b.mp3")},
		},
		Users: []library.User{{ID: 1, Name: "luc"}},
	})

	store, err := settings.Open("", zerolog.Nop())
	if err != nil {
		t.Fatalf("open settings: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	router := NewRouter(p, store, nil, nil, zerolog.Nop())
	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return srv, p
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func TestSelectEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/select", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var sel recommend.MusicSelect
	if err := json.Unmarshal(env.Data, &sel); err != nil {
		t.Fatalf("unmarshal selection: %v", err)
	}
	if len(sel.List) != 2 {
		t.Fatalf("List = %v, want two playable tracks", sel.List)
	}
}

func TestPlayAndTracklistEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/play", map[string]interface{}{"id": 2, "manual": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("play status = %d, error = %+v", resp.StatusCode, env.Error)
	}

	_, env = doJSON(t, http.MethodGet, srv.URL+"/api/tracklist", nil)
	var snapshot player.TracklistSnapshot
	if err := json.Unmarshal(env.Data, &snapshot); err != nil {
		t.Fatalf("unmarshal tracklist: %v", err)
	}
	if snapshot.Current == nil || *snapshot.Current != 2 {
		t.Fatalf("Current = %v, want 2", snapshot.Current)
	}
	if snapshot.ManualSelect == nil || *snapshot.ManualSelect != 2 {
		t.Fatalf("ManualSelect = %v, want 2", snapshot.ManualSelect)
	}
}

func TestPlayEmptyBodyAdvances(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/play", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestQueueValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/queue", map[string]interface{}{"id": -1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != CodeValidationError {
		t.Fatalf("error = %+v, want %s", env.Error, CodeValidationError)
	}
}

func TestSearchFormRoundTrip(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	form := map[string]interface{}{
		"filters": map[string]interface{}{"user": 1, "search_query": "first"},
		"sort":    map[string]interface{}{"kind": "creation_time", "descending": true},
	}
	resp, env := doJSON(t, http.MethodPut, srv.URL+"/api/searchform", form)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", resp.StatusCode, env.Error)
	}

	_, env = doJSON(t, http.MethodGet, srv.URL+"/api/searchform", nil)
	var got recommend.SearchForm
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("unmarshal form: %v", err)
	}
	if got.Sort.Kind != recommend.SortCreationTime || got.Filters.SearchQuery != "first" {
		t.Fatalf("form = %+v", got)
	}
}

func TestSearchFormRejectsUnknownSort(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	form := map[string]interface{}{
		"sort": map[string]interface{}{"kind": "shuffle"},
	}
	resp, env := doJSON(t, http.MethodPut, srv.URL+"/api/searchform", form)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != CodeInvalidRequest {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestSearchFormRejectsNegativeTemperature(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	form := map[string]interface{}{
		"similarity_params": map[string]interface{}{"temperature": -1.0},
	}
	resp, env := doJSON(t, http.MethodPut, srv.URL+"/api/searchform", form)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != CodeValidationError {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/settings/volume", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != CodeNotFound {
		t.Fatalf("error = %+v", env.Error)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/settings/volume", map[string]string{"value": "0.8"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	_, env = doJSON(t, http.MethodGet, srv.URL+"/api/settings/volume", nil)
	var got map[string]string
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("unmarshal setting: %v", err)
	}
	if got["value"] != "0.8" {
		t.Fatalf("value = %q, want %q", got["value"], "0.8")
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if env.Status != "ok" {
		t.Fatalf("Status = %q", env.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
