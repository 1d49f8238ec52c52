// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package api

import "net/http"

// HealthLive answers liveness probes. Always 200 while the process serves.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady answers readiness probes. The in-process store has no
// connection state to check; a degraded audit buffer does not make the
// server unready because audit is best-effort.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	used, size := h.recorder.BufferUsage()
	respondData(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"audit_buffer_used": used,
		"audit_buffer_size": size,
	})
}
