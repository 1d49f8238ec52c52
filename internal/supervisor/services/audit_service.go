// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package services

import (
	"context"
)

// AuditDrainer matches the audit recorder's shutdown surface. Close blocks
// until buffered records have been flushed to the store.
type AuditDrainer interface {
	Close()
}

// AuditRecorderService ties the audit recorder's lifetime to the supervisor
// tree: the recorder runs its own writer goroutine from construction, so
// this service only has to hold its slot open and drain it on shutdown.
type AuditRecorderService struct {
	recorder AuditDrainer
	name     string
}

// NewAuditRecorderService creates the audit recorder service wrapper.
func NewAuditRecorderService(recorder AuditDrainer) *AuditRecorderService {
	return &AuditRecorderService{
		recorder: recorder,
		name:     "audit-recorder",
	}
}

// Serve implements suture.Service. Blocks until shutdown, then drains the
// recorder so queued records are not lost.
func (a *AuditRecorderService) Serve(ctx context.Context) error {
	<-ctx.Done()
	a.recorder.Close()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor log messages.
func (a *AuditRecorderService) String() string {
	return a.name
}
