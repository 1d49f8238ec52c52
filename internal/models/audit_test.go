// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package models

import (
	"errors"
	"testing"
)

func TestRequiresConfirmation(t *testing.T) {
	tests := []struct {
		name string
		from Role
		to   Role
		want bool
	}{
		{name: "promotion user to master", from: RoleUser, to: RoleMasterUser, want: true},
		{name: "demotion master to user", from: RoleMasterUser, to: RoleUser, want: true},
		{name: "user to auditor", from: RoleUser, to: RoleAuditor, want: false},
		{name: "auditor to user", from: RoleAuditor, to: RoleUser, want: false},
		{name: "admin grant", from: RoleUser, to: RoleAdmin, want: false},
		{name: "no-op", from: RoleUser, to: RoleUser, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiresConfirmation(tt.from, tt.to); got != tt.want {
				t.Errorf("RequiresConfirmation(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRoleChangeStateMachine(t *testing.T) {
	rc := NewRoleChangeRequest("org-1", "user-1", "master-1", RoleUser, RoleMasterUser)
	if rc.State != RoleChangePending {
		t.Fatalf("new request state = %q, want %q", rc.State, RoleChangePending)
	}

	// Applying before confirming is out of order.
	if err := rc.Apply(); !errors.Is(err, ErrInvalidRoleChangeState) {
		t.Fatalf("premature Apply() = %v, want ErrInvalidRoleChangeState", err)
	}
	if rc.State != RoleChangePending {
		t.Fatalf("state mutated on failed transition: %q", rc.State)
	}

	if err := rc.Confirm(); err != nil {
		t.Fatalf("Confirm() = %v", err)
	}
	if rc.State != RoleChangeConfirmed {
		t.Fatalf("state after confirm = %q, want %q", rc.State, RoleChangeConfirmed)
	}

	// Confirming twice is out of order.
	if err := rc.Confirm(); !errors.Is(err, ErrInvalidRoleChangeState) {
		t.Fatalf("repeat Confirm() = %v, want ErrInvalidRoleChangeState", err)
	}

	if err := rc.Apply(); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if rc.State != RoleChangeApplied {
		t.Fatalf("state after apply = %q, want %q", rc.State, RoleChangeApplied)
	}

	// Applied is terminal.
	if err := rc.Apply(); !errors.Is(err, ErrInvalidRoleChangeState) {
		t.Fatalf("repeat Apply() = %v, want ErrInvalidRoleChangeState", err)
	}
	if err := rc.Confirm(); !errors.Is(err, ErrInvalidRoleChangeState) {
		t.Fatalf("Confirm() after apply = %v, want ErrInvalidRoleChangeState", err)
	}
}
