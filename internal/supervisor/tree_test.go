// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package supervisor

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// blockingService runs until canceled and counts its starts.
type blockingService struct {
	name    string
	started chan struct{}
	starts  atomic.Int32
}

func newBlockingService(name string) *blockingService {
	return &blockingService{name: name, started: make(chan struct{}, 8)}
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	s.started <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return s.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTreeAppliesDefaults(t *testing.T) {
	tree, err := NewTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", tree.config.ShutdownTimeout)
	}
	if tree.Root() == nil {
		t.Error("Root() returned nil")
	}
}

func TestTreeServesAndStopsServices(t *testing.T) {
	tree, err := NewTree(testLogger(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}

	apiSvc := newBlockingService("api-svc")
	auditSvc := newBlockingService("audit-svc")
	tree.AddAPIService(apiSvc)
	tree.AddAuditService(auditSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*blockingService{apiSvc, auditSvc} {
		select {
		case <-svc.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("service %s did not start", svc.name)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			t.Errorf("Serve returned %v, want nil or context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancel")
	}

	if got := apiSvc.starts.Load(); got != 1 {
		t.Errorf("api service started %d times, want 1", got)
	}
}
