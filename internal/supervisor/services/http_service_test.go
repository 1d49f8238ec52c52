// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockServer controls ListenAndServe/Shutdown behavior without a socket.
type mockServer struct {
	serveErr    error
	shutdownErr error
	release     chan struct{}
	shutdowns   int
}

func newMockServer() *mockServer {
	return &mockServer{release: make(chan struct{})}
}

func (m *mockServer) ListenAndServe() error {
	<-m.release
	return m.serveErr
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.shutdowns++
	close(m.release)
	return m.shutdownErr
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	server := newMockServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if server.shutdowns != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.shutdowns)
	}
}

func TestHTTPServerServiceSurfacesServeError(t *testing.T) {
	server := newMockServer()
	server.serveErr = errors.New("bind: address already in use")
	close(server.release)

	svc := NewHTTPServerService(server, time.Second)
	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.serveErr) {
		t.Errorf("Serve returned %v, want wrapped serve error", err)
	}
}

func TestAuditRecorderServiceDrainsOnShutdown(t *testing.T) {
	closed := make(chan struct{})
	svc := NewAuditRecorderService(closeFunc(func() { close(closed) }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("recorder was not drained after cancel")
	}
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
}

// closeFunc adapts a func to AuditDrainer.
type closeFunc func()

func (f closeFunc) Close() { f() }
