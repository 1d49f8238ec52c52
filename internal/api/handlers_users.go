// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
handlers_users.go - User Management and Role Changes

User CRUD is gated on ManageUsers (admins and master users). Master users
operate inside their own organization only; the tenant check mirrors the
resource validator's cross-tenant handling.

Role transitions between user and master_user are capability escalations
(in either direction) and must pass through the explicit confirmation state
machine: create → confirm → apply. Everything else is a plain update.
*/

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/models"
)

// CreateUserRequest is the payload for POST /users.
type CreateUserRequest struct {
	Email         string     `json:"email" validate:"required,email,max=254"`
	Name          string     `json:"name" validate:"omitempty,max=200"`
	Role          string     `json:"role" validate:"required,role"`
	TenantID      string     `json:"tenant_id" validate:"omitempty,max=100"`
	SiteAccess    []string   `json:"site_access" validate:"omitempty,max=100"`
	AuditorExpiry *time.Time `json:"auditor_expiry,omitempty"`
}

// UpdateUserRequest is the payload for PUT /users/{userID}. Role is
// accepted only for transitions that do not require confirmation.
type UpdateUserRequest struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Role          *string    `json:"role,omitempty" validate:"omitempty,role"`
	SiteAccess    []string   `json:"site_access,omitempty" validate:"omitempty,max=100"`
	AuditorExpiry *time.Time `json:"auditor_expiry,omitempty"`
}

// CreateRoleChangeRequest is the payload for POST /users/{userID}/role-changes.
type CreateRoleChangeRequest struct {
	ToRole string `json:"to_role" validate:"required,role"`
}

// assertUserAccess loads a user and applies the tenant boundary the same
// way the resource validator does for monitoring resources.
func (h *Handler) assertUserAccess(w http.ResponseWriter, r *http.Request, principal *models.Principal, userID string) (*models.User, bool) {
	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Resource not found", nil)
		return nil, false
	}

	if !authz.ValidateOrganizationAccess(principal.TenantID, user.TenantID, principal.Role) {
		authz.RecordCrossTenantDenial()
		if h.cfg.Security.HideCrossTenant {
			respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Resource not found", nil)
			return nil, false
		}
		respondError(w, r, http.StatusForbidden, models.ErrCodeCrossTenantDenied,
			"Access to this resource is denied", map[string]interface{}{
				"userOrganization":     principal.TenantID,
				"resourceOrganization": user.TenantID,
			})
		return nil, false
	}
	return user, true
}

// ListUsers lists accounts visible to the caller.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}
	filter, ok := scopeOrDeny(w, r, principal)
	if !ok {
		return
	}

	users, err := h.store.ListUsers(r.Context(), filter)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"total":   len(users),
		"results": users,
	})
}

// CreateUser provisions an account. Master users create inside their own
// organization and can never mint admins.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	tenantID := principal.TenantID
	if principal.IsAdmin() {
		tenantID = req.TenantID
	}

	if !principal.IsAdmin() && req.Role == models.RoleAdmin.String() {
		respondError(w, r, http.StatusForbidden, models.ErrCodeForbidden, "Admin access required", nil)
		return
	}
	if req.Role != models.RoleAdmin.String() && tenantID == "" {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "tenant_id is required for non-admin users", nil)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:            uuid.New().String(),
		Email:         req.Email,
		Name:          req.Name,
		Role:          req.Role,
		TenantID:      tenantID,
		SiteAccess:    req.SiteAccess,
		AuditorExpiry: req.AuditorExpiry,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionCreateUser, "user", user.ID, map[string]string{"role": user.Role})
	respondData(w, http.StatusCreated, user)
}

// GetUser returns one account.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}
	user, ok := h.assertUserAccess(w, r, principal, chi.URLParam(r, "userID"))
	if !ok {
		return
	}
	respondData(w, http.StatusOK, user)
}

// UpdateUser updates account attributes. Transitions between user and
// master_user are rejected here; they require the confirmation flow.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}
	user, ok := h.assertUserAccess(w, r, principal, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	if req.Role != nil && *req.Role != user.Role {
		fromRole, err := models.ParseRole(user.Role)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", nil)
			return
		}
		toRole, _ := models.ParseRole(*req.Role)

		if models.RequiresConfirmation(fromRole, toRole) {
			respondError(w, r, http.StatusConflict, models.ErrCodeConflict,
				"This role transition requires the confirmation flow", nil)
			return
		}
		// Granting or revoking the admin role is a platform operation.
		if (toRole == models.RoleAdmin || fromRole == models.RoleAdmin) && !principal.IsAdmin() {
			respondError(w, r, http.StatusForbidden, models.ErrCodeForbidden, "Admin access required", nil)
			return
		}
		user.Role = *req.Role
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.SiteAccess != nil {
		user.SiteAccess = req.SiteAccess
	}
	if req.AuditorExpiry != nil {
		user.AuditorExpiry = req.AuditorExpiry
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionUpdateUser, "user", user.ID, nil)
	respondData(w, http.StatusOK, user)
}

// DeleteUser removes an account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}
	user, ok := h.assertUserAccess(w, r, principal, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	if err := h.store.DeleteUser(r.Context(), user.ID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionDeleteUser, "user", user.ID, nil)
	respondData(w, http.StatusOK, map[string]string{"deleted": user.ID})
}

// CreateRoleChange opens a pending confirmation for a user↔master_user
// transition.
func (h *Handler) CreateRoleChange(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}
	user, ok := h.assertUserAccess(w, r, principal, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	var req CreateRoleChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Malformed request body", nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	fromRole, err := models.ParseRole(user.Role)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", nil)
		return
	}
	toRole, _ := models.ParseRole(req.ToRole)

	if !models.RequiresConfirmation(fromRole, toRole) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"This role transition does not use the confirmation flow", nil)
		return
	}

	change := models.NewRoleChangeRequest(user.TenantID, user.ID, principal.ID, fromRole, toRole)
	if err := h.store.CreateRoleChange(r.Context(), change); err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, change)
}

// loadRoleChange fetches a role-change request and applies the tenant
// boundary.
func (h *Handler) loadRoleChange(w http.ResponseWriter, r *http.Request, principal *models.Principal) (*models.RoleChangeRequest, bool) {
	change, err := h.store.GetRoleChange(r.Context(), chi.URLParam(r, "changeID"))
	if err != nil {
		respondStoreError(w, r, err)
		return nil, false
	}
	if !authz.ValidateOrganizationAccess(principal.TenantID, change.TenantID, principal.Role) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Resource not found", nil)
		return nil, false
	}
	return change, true
}

// ConfirmRoleChange moves a pending request to confirmed.
func (h *Handler) ConfirmRoleChange(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}
	change, ok := h.loadRoleChange(w, r, principal)
	if !ok {
		return
	}

	if err := change.Confirm(); err != nil {
		if errors.Is(err, models.ErrInvalidRoleChangeState) {
			respondError(w, r, http.StatusConflict, models.ErrCodeConflict,
				"Role change is not awaiting confirmation", nil)
			return
		}
		respondStoreError(w, r, err)
		return
	}
	if err := h.store.UpdateRoleChange(r.Context(), change); err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, change)
}

// ApplyRoleChange executes a confirmed request: the target user's role is
// rewritten and the escalation is audited.
func (h *Handler) ApplyRoleChange(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authorize(w, r, authz.ManageUsers)
	if !ok {
		return
	}
	change, ok := h.loadRoleChange(w, r, principal)
	if !ok {
		return
	}

	if err := change.Apply(); err != nil {
		if errors.Is(err, models.ErrInvalidRoleChangeState) {
			respondError(w, r, http.StatusConflict, models.ErrCodeConflict,
				"Role change is not confirmed", nil)
			return
		}
		respondStoreError(w, r, err)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), change.TargetUserID)
	if err != nil {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Resource not found", nil)
		return
	}
	user.Role = change.ToRole.String()
	user.UpdatedAt = time.Now().UTC()
	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		respondStoreError(w, r, err)
		return
	}
	if err := h.store.UpdateRoleChange(r.Context(), change); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.audit(r, principal.ID, models.AuditActionRoleChange, "user", user.ID, map[string]string{
		"from_role": change.FromRole.String(),
		"to_role":   change.ToRole.String(),
	})
	respondData(w, http.StatusOK, change)
}
