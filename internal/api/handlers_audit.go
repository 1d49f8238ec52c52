// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package api

import (
	"net/http"
	"strconv"

	"github.com/coldspan/coldspan/internal/audit"
	"github.com/coldspan/coldspan/internal/authz"
	"github.com/coldspan/coldspan/internal/models"
)

// ListAuditRecords returns admin action records, newest first. Admin only:
// audit entries cross tenant boundaries by construction (they name actors
// and targets from any organization).
func (h *Handler) ListAuditRecords(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, authz.AdminOnly); !ok {
		return
	}

	query := audit.ListQuery{
		ActorID:    r.URL.Query().Get("actor_id"),
		Action:     r.URL.Query().Get("action"),
		TargetType: r.URL.Query().Get("target_type"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "limit must be an integer between 1 and 1000", nil)
			return
		}
		query.Limit = parsed
	}

	records, err := h.auditLog.List(r.Context(), query)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"total":   len(records),
		"results": records,
	})
}
