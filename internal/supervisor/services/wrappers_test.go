// Aria - Personal Music Library Browser and Recommendation Engine
// Copyright 2026 Luc V. (lucvr)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lucvr/aria

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type blockingRunner struct {
	started chan struct{}
	err     error
}

func (r *blockingRunner) Run(ctx context.Context) error {
	close(r.started)
	if r.err != nil {
		return r.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (r *blockingRunner) RunWithContext(ctx context.Context) error {
	return r.Run(ctx)
}

func TestWrappersImplementSutureService(t *testing.T) {
	t.Parallel()

	var _ suture.Service = (*DaemonSyncService)(nil)
	var _ suture.Service = (*HubService)(nil)
}

func TestDaemonSyncServiceDelegatesToRun(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{started: make(chan struct{})}
	svc := NewDaemonSyncService(runner)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	select {
	case <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("client did not start")
	}

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if svc.String() != "daemon-sync" {
		t.Errorf("unexpected service name %q", svc.String())
	}
}

func TestDaemonSyncServicePropagatesError(t *testing.T) {
	t.Parallel()

	runErr := errors.New("dial failed")
	runner := &blockingRunner{started: make(chan struct{}), err: runErr}
	svc := NewDaemonSyncService(runner)

	if err := svc.Serve(context.Background()); !errors.Is(err, runErr) {
		t.Errorf("expected %v, got %v", runErr, err)
	}
}

func TestHubServiceDelegatesToRunWithContext(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{started: make(chan struct{})}
	svc := NewHubService(runner)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	<-runner.started
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if svc.String() != "websocket-hub" {
		t.Errorf("unexpected service name %q", svc.String())
	}
}
