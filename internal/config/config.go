// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

// Package config loads layered configuration: struct defaults, then an
// optional YAML file, then ARIA_-prefixed environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Daemon    DaemonConfig    `koanf:"daemon"`
	Selection SelectionConfig `koanf:"selection"`
	Tracklist TracklistConfig `koanf:"tracklist"`
	Settings  SettingsConfig  `koanf:"settings"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// DaemonConfig configures the metadata daemon connection.
type DaemonConfig struct {
	// URL is the daemon WebSocket endpoint.
	URL string `koanf:"url"`

	// RefreshInterval is the cadence of delta requests. Zero disables
	// periodic refresh.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// SelectionConfig tunes the selection pipeline.
type SelectionConfig struct {
	// Seed fixes the jitter and random-sort seed. Zero derives one from
	// the clock at startup.
	Seed int64 `koanf:"seed"`

	// MinRelevance is the fuzzy search cutoff in [0,1].
	MinRelevance float64 `koanf:"min_relevance"`
}

// TracklistConfig tunes playback history.
type TracklistConfig struct {
	MaxHistory int `koanf:"max_history"`
}

// SettingsConfig configures the local settings store.
type SettingsConfig struct {
	// Path is the Badger directory. Empty runs in memory.
	Path string `koanf:"path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Daemon.URL != "" {
		u, err := url.Parse(c.Daemon.URL)
		if err != nil {
			return fmt.Errorf("daemon.url: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("daemon.url scheme %q, want ws or wss", u.Scheme)
		}
	}

	if c.Selection.MinRelevance < 0 || c.Selection.MinRelevance > 1 {
		return fmt.Errorf("selection.min_relevance %f out of range [0,1]", c.Selection.MinRelevance)
	}

	if c.Tracklist.MaxHistory < 0 {
		return fmt.Errorf("tracklist.max_history must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format %q, want json or console", c.Logging.Format)
	}

	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
