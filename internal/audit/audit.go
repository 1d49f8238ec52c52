// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

// Package audit appends an immutable record for every successful privileged
// mutation (create/update/delete of organizations, sites, environments,
// sensors, and users, plus role changes).
//
// Writes are asynchronous and best-effort: the Recorder never blocks a
// request and a failed or dropped write never rolls back the mutation it
// describes. Failures surface in operational telemetry only.
package audit

import (
	"context"
	"errors"

	"github.com/coldspan/coldspan/internal/models"
)

// ErrStoreClosed is returned by store operations after Close.
var ErrStoreClosed = errors.New("audit store closed")

// ListQuery filters audit reads. Zero fields match everything.
type ListQuery struct {
	// ActorID restricts to records written for one actor.
	ActorID string

	// Action restricts to one AuditAction constant.
	Action string

	// TargetType restricts to one resource kind.
	TargetType string

	// Limit caps the number of returned records, newest first. Zero means
	// the store default.
	Limit int
}

// Store persists admin action records. Append-only: there is no update or
// delete operation.
type Store interface {
	// Append durably writes one record.
	Append(ctx context.Context, record *models.AdminActionRecord) error

	// List returns records matching the query, newest first.
	List(ctx context.Context, query ListQuery) ([]*models.AdminActionRecord, error)

	// Close releases store resources.
	Close() error
}
