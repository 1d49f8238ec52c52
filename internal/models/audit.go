// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
audit.go - Admin Action Audit Models

This file defines the append-only record written after every successful
privileged mutation, and the confirmation state machine for role changes
between user and master_user.

Audit writes are best-effort: a failed write is logged to operational
telemetry and never rolls back the mutation it describes.
*/

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Audit action types. One per privileged mutation.
const (
	AuditActionCreateOrganization = "create_organization"
	AuditActionUpdateOrganization = "update_organization"
	AuditActionDeleteOrganization = "delete_organization"
	AuditActionCreateSite         = "create_site"
	AuditActionUpdateSite         = "update_site"
	AuditActionDeleteSite         = "delete_site"
	AuditActionCreateEnvironment  = "create_environment"
	AuditActionUpdateEnvironment  = "update_environment"
	AuditActionDeleteEnvironment  = "delete_environment"
	AuditActionCreateSensor       = "create_sensor"
	AuditActionUpdateSensor       = "update_sensor"
	AuditActionDeleteSensor       = "delete_sensor"
	AuditActionCreateUser         = "create_user"
	AuditActionUpdateUser         = "update_user"
	AuditActionDeleteUser         = "delete_user"
	AuditActionRoleChange         = "role_change"
)

// AdminActionRecord is one immutable audit entry.
type AdminActionRecord struct {
	// ID is a UUID assigned when the record is accepted for writing.
	ID string `json:"id"`

	// ActorID is the principal that performed the mutation.
	ActorID string `json:"actor_id"`

	// Action is one of the AuditAction constants.
	Action string `json:"action"`

	// TargetType names the resource kind (organization, site, environment,
	// sensor, user).
	TargetType string `json:"target_type"`

	// TargetID is the mutated resource's ID.
	TargetID string `json:"target_id"`

	// RequestID links the record to the HTTP request that caused it.
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is when the mutation committed.
	Timestamp time.Time `json:"timestamp"`

	// Metadata holds optional context (e.g. changed fields, old/new role).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewAdminActionRecord creates a record with a fresh ID and timestamp.
func NewAdminActionRecord(actorID, action, targetType, targetID string) *AdminActionRecord {
	return &AdminActionRecord{
		ID:         uuid.New().String(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Timestamp:  time.Now().UTC(),
	}
}

// Role-change request states. Promoting a user to master_user (or demoting
// the other way) is a capability escalation and must pass through an
// explicit confirmation before any policy check is consulted.
const (
	RoleChangePending   = "pending_confirmation"
	RoleChangeConfirmed = "confirmed"
	RoleChangeApplied   = "applied"
)

// ErrInvalidRoleChangeState is returned on an out-of-order transition,
// e.g. applying a request that was never confirmed.
var ErrInvalidRoleChangeState = errors.New("invalid role change state transition")

// RoleChangeRequest tracks one user↔master_user role change through the
// pending_confirmation → confirmed → applied state machine.
type RoleChangeRequest struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	TargetUserID string    `json:"target_user_id"`
	FromRole     Role      `json:"from_role"`
	ToRole       Role      `json:"to_role"`
	State        string    `json:"state"`
	RequestedBy  string    `json:"requested_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewRoleChangeRequest creates a pending request.
func NewRoleChangeRequest(tenantID, targetUserID, requestedBy string, from, to Role) *RoleChangeRequest {
	now := time.Now().UTC()
	return &RoleChangeRequest{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		TargetUserID: targetUserID,
		FromRole:     from,
		ToRole:       to,
		State:        RoleChangePending,
		RequestedBy:  requestedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RequiresConfirmation reports whether a role transition must pass through
// the confirmation gate. Both directions between user and master_user do;
// the consequences are asymmetric but the gate is the same.
func RequiresConfirmation(from, to Role) bool {
	return (from == RoleUser && to == RoleMasterUser) ||
		(from == RoleMasterUser && to == RoleUser)
}

// Confirm moves a pending request to confirmed.
func (rc *RoleChangeRequest) Confirm() error {
	if rc.State != RoleChangePending {
		return ErrInvalidRoleChangeState
	}
	rc.State = RoleChangeConfirmed
	rc.UpdatedAt = time.Now().UTC()
	return nil
}

// Apply moves a confirmed request to applied.
func (rc *RoleChangeRequest) Apply() error {
	if rc.State != RoleChangeConfirmed {
		return ErrInvalidRoleChangeState
	}
	rc.State = RoleChangeApplied
	rc.UpdatedAt = time.Now().UTC()
	return nil
}
