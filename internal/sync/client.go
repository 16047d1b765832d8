// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package sync maintains the WebSocket connection to the metadata daemon.
//
// The daemon pushes JSON metadata messages: a full snapshot on connect,
// then patch batches as the library changes. The client periodically
// sends a "refresh" text frame to request a delta. Connection loss is
// handled by rate-limited reconnection; the daemon replays a full
// snapshot after reconnect, which supersedes any missed patches.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lucvr/aria/internal/library"
	"github.com/lucvr/aria/internal/metrics"
)

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 90 * time.Second
	writeTimeout     = 5 * time.Second
)

// Handler receives decoded metadata messages. Calls are serialized.
type Handler interface {
	HandleMetadata(raw library.RawMetadata)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(raw library.RawMetadata)

// HandleMetadata calls f(raw).
func (f HandlerFunc) HandleMetadata(raw library.RawMetadata) { f(raw) }

// Config configures the daemon sync client.
type Config struct {
	// URL is the daemon WebSocket endpoint, e.g. ws://localhost:3200/api/metadata/ws.
	URL string

	// RefreshInterval is the cadence of "refresh" requests. Zero
	// disables periodic refresh; the connection then only carries
	// daemon-initiated pushes.
	RefreshInterval time.Duration

	// ReconnectRate limits reconnection attempts. Zero defaults to one
	// attempt per two seconds with a burst of one.
	ReconnectRate rate.Limit
}

// Client connects to the metadata daemon and feeds decoded messages to a
// Handler. Run blocks until the context is canceled.
type Client struct {
	cfg     Config
	handler Handler
	limiter *rate.Limiter
	logger  zerolog.Logger

	connMu sync.Mutex
	conn   *websocket.Conn
}

// NewClient creates a sync client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, handler Handler, logger zerolog.Logger) *Client {
	limit := cfg.ReconnectRate
	if limit == 0 {
		limit = rate.Every(2 * time.Second)
	}
	return &Client{
		cfg:     cfg,
		handler: handler,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("component", "sync").Logger(),
	}
}

// Run connects and processes messages until ctx is canceled. Every
// reconnection waits on the rate limiter first.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		if err := c.connect(ctx); err != nil {
			c.logger.Warn().Err(err).Str("url", c.cfg.URL).Msg("connection failed")
			metrics.SyncReconnects.Inc()
			continue
		}

		err := c.readLoop(ctx)
		c.closeConn()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn().Err(err).Msg("connection lost, reconnecting")
		metrics.SyncReconnects.Inc()
	}
}

func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout:  handshakeTimeout,
		EnableCompression: true,
	}

	conn, resp, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s (status %d): %w", c.cfg.URL, resp.StatusCode, err)
		}
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.logger.Info().Str("url", c.cfg.URL).Msg("connected to metadata daemon")
	return nil
}

// readLoop consumes messages until the connection fails. The refresh
// ticker runs alongside and writes through the connection mutex.
func (c *Client) readLoop(ctx context.Context) error {
	stopRefresh := make(chan struct{})
	defer close(stopRefresh)
	if c.cfg.RefreshInterval > 0 {
		go c.refreshLoop(ctx, stopRefresh)
	}

	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}

		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		c.handleMessage(message)
	}
}

// handleMessage decodes one daemon message and hands it to the handler.
// Malformed payloads are counted and skipped; the connection stays up.
func (c *Client) handleMessage(data []byte) {
	var raw library.RawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn().Err(err).Int("bytes", len(data)).Msg("invalid metadata message")
		metrics.SyncMessages.WithLabelValues("invalid").Inc()
		return
	}

	kind := "snapshot"
	if raw.Tags == nil && len(raw.Patches) > 0 {
		kind = "patch"
	}
	metrics.SyncMessages.WithLabelValues(kind).Inc()

	c.logger.Debug().
		Str("kind", kind).
		Int("musics", len(raw.Musics)).
		Int("patches", len(raw.Patches)).
		Msg("metadata message received")

	c.handler.HandleMetadata(raw)
}

// refreshLoop periodically asks the daemon for a delta.
func (c *Client) refreshLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if err := c.Refresh(); err != nil {
				c.logger.Debug().Err(err).Msg("refresh request failed")
			}
		}
	}
}

// Refresh sends an immediate refresh request over the open connection.
func (c *Client) Refresh() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte("refresh")); err != nil {
		return fmt.Errorf("write refresh: %w", err)
	}
	return nil
}

func (c *Client) closeConn() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	_ = c.conn.Close()
	c.conn = nil
}
