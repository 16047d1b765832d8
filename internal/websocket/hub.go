// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package websocket pushes selection and tracklist updates to connected
// UI clients.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lucvr/aria/internal/metrics"
	"github.com/lucvr/aria/internal/player"
	"github.com/lucvr/aria/internal/recommend"
	"github.com/lucvr/aria/internal/tracklist"
)

// Message types for UI communication.
const (
	MessageTypeSelection = "select_updated"
	MessageTypeTracklist = "tracklist_updated"
	MessageTypePlay      = "play"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
)

// Message is one frame sent to UI clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to
// them. It implements player.Notifier.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a hub.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// RunWithContext runs the hub loop until ctx is canceled, then closes
// all clients and returns ctx.Err(). Designed for suture supervision.
//
// Events are handled with fixed priority — shutdown, then client
// lifecycle, then broadcasts — so client state is consistent before any
// message is delivered. Go's select picks randomly among ready channels;
// the staged selects below remove that nondeterminism.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(total))
	h.logger.Info().Int("total_clients", total).Msg("client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebsocketClients.Set(float64(total))
	h.logger.Info().Int("total_clients", total).Msg("client disconnected")
}

// broadcastToClients delivers one message to every client in client-ID
// order. Clients with a full send buffer are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WebsocketClients.Set(float64(len(h.clients)))
		h.logger.Warn().Int("dropped", len(toRemove)).Msg("dropped slow clients")
	}
}

// shutdown closes all clients in ID order.
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebsocketClients.Set(0)
	h.logger.Info().Int("clients_closed", len(clients)).Msg("hub stopped")
}

// SelectionUpdated broadcasts a refreshed selection to all clients.
func (h *Hub) SelectionUpdated(sel recommend.MusicSelect) {
	h.enqueue(Message{Type: MessageTypeSelection, Data: sel})
}

// TracklistUpdated broadcasts a tracklist transition to all clients.
func (h *Hub) TracklistUpdated(snapshot player.TracklistSnapshot) {
	h.enqueue(Message{Type: MessageTypeTracklist, Data: snapshot})
}

// Play broadcasts a playback effect so the browser audio element can
// start the track. Implements tracklist.Dispatcher.
func (h *Hub) Play(effect tracklist.PlayEffect) {
	h.enqueue(Message{Type: MessageTypePlay, Data: effect})
}

func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Str("type", message.Type).Msg("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
