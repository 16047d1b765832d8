// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package services

import (
	"context"
)

// DaemonClient matches the sync client's blocking Run method.
//
// Satisfied by *sync.Client from internal/sync/client.go. The interface
// avoids importing the sync package here and keeps tests free of real
// WebSocket connections.
type DaemonClient interface {
	Run(ctx context.Context) error
}

// DaemonSyncService wraps the daemon metadata client as a supervised
// service. Run already implements the connect/read/reconnect loop with
// context-aware shutdown, so the wrapper only supplies a stable name.
type DaemonSyncService struct {
	client DaemonClient
	name   string
}

// NewDaemonSyncService creates a new daemon sync service wrapper.
func NewDaemonSyncService(client DaemonClient) *DaemonSyncService {
	return &DaemonSyncService{
		client: client,
		name:   "daemon-sync",
	}
}

// Serve implements suture.Service by delegating to the client's Run loop.
// Run returns ctx.Err() on shutdown; any other error causes suture to
// restart the service under its backoff policy.
func (s *DaemonSyncService) Serve(ctx context.Context) error {
	return s.client.Run(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (s *DaemonSyncService) String() string {
	return s.name
}
