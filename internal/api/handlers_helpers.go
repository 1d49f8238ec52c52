// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

// Package api provides the HTTP surface: thin CRUD handlers over the
// authorization core. List endpoints narrow results only through the scope
// filter; item endpoints go through the cross-tenant validator; successful
// privileged mutations are recorded by the auditor.
package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/coldspan/coldspan/internal/audit"
	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/config"
	"github.com/coldspan/coldspan/internal/logging"
	"github.com/coldspan/coldspan/internal/models"
	"github.com/coldspan/coldspan/internal/store"
	"github.com/coldspan/coldspan/internal/validation"
)

// maxBodyBytes caps request bodies. Generous for reading batches, tiny for
// everything this API actually accepts.
const maxBodyBytes = 1 << 20

// Handler carries the dependencies every endpoint needs.
type Handler struct {
	cfg       *config.Config
	gate      *authz.Gate
	validator *authz.Validator
	recorder  *audit.Recorder
	auditLog  audit.Store
	store     store.Store
}

// NewHandler wires the HTTP handlers.
func NewHandler(cfg *config.Config, gate *authz.Gate, validator *authz.Validator, recorder *audit.Recorder, auditLog audit.Store, st store.Store) *Handler {
	return &Handler{
		cfg:       cfg,
		gate:      gate,
		validator: validator,
		recorder:  recorder,
		auditLog:  auditLog,
		store:     st,
	}
}

// respondData writes the standard success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(&models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes the standard error envelope with the request ID from
// context.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(&models.ErrorEnvelope{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: logging.RequestIDFromContext(r.Context()),
			Details:   details,
		},
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal error envelope")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write error envelope")
	}
}

// respondHTTPError translates an authorization failure into the envelope.
func respondHTTPError(w http.ResponseWriter, r *http.Request, httpErr *authz.HTTPError) {
	respondError(w, r, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// authorize runs the gate for the declared capability. On failure the error
// envelope has been written and the handler must return.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, capability authz.Capability) (*models.Principal, bool) {
	principal, httpErr := h.gate.Authorize(r, capability)
	if httpErr != nil {
		respondHTTPError(w, r, httpErr)
		return nil, false
	}
	return principal, true
}

// scopeOrDeny builds the principal's scope filter for a list endpoint. A
// DenyAll filter short-circuits with 403 NO_ORGANIZATION_MEMBERSHIP: the
// caller is authenticated but owns no data, and an empty 200 would mask the
// account misconfiguration.
func scopeOrDeny(w http.ResponseWriter, r *http.Request, principal *models.Principal) (authz.ScopeFilter, bool) {
	filter := authz.BuildFilter(principal)
	authz.RecordScopeFilter(filter.Kind)

	if filter.Kind == authz.DenyAll {
		respondError(w, r, http.StatusForbidden, models.ErrCodeNoOrganizationMembership,
			"User has no organization membership", nil)
		return filter, false
	}
	return filter, true
}

// decodeJSON reads and unmarshals a request body.
func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse body: %w", err)
	}
	return nil
}

// validateRequest validates a decoded payload and writes the validation
// envelope on failure.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
	return false
}

// respondStoreError maps store sentinels to envelope responses.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isNotFound(err):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Resource not found", nil)
	case isConflict(err):
		respondError(w, r, http.StatusConflict, models.ErrCodeConflict, "Resource conflicts with existing data", nil)
	default:
		logging.CtxErr(r.Context(), err).Msg("Store operation failed")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", nil)
	}
}

// audit queues one admin action record for the completed mutation.
func (h *Handler) audit(r *http.Request, actorID, action, targetType, targetID string, metadata map[string]string) {
	record := models.NewAdminActionRecord(actorID, action, targetType, targetID)
	record.Metadata = metadata
	h.recorder.Record(r.Context(), record)
}
