// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authzDecisionsTotal counts gate decisions by capability and outcome.
	// Outcomes: allowed, forbidden, unauthenticated, auditor_expired.
	authzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coldspan_authz_decisions_total",
			Help: "Total number of authorization gate decisions",
		},
		[]string{"capability", "outcome"},
	)

	// authzCrossTenantDenialsTotal tracks tenant-boundary violations
	// separately for alerting; a spike usually means a buggy client or a
	// probing one.
	authzCrossTenantDenialsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldspan_authz_cross_tenant_denials_total",
			Help: "Total number of cross-tenant access denials",
		},
	)

	// authzScopeFiltersTotal counts scope filters built, by kind.
	authzScopeFiltersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coldspan_authz_scope_filters_total",
			Help: "Total number of scope filters built, by filter kind",
		},
		[]string{"kind"},
	)
)

// RecordDecision records one gate decision.
func RecordDecision(capability, outcome string) {
	authzDecisionsTotal.WithLabelValues(capability, outcome).Inc()
}

// RecordCrossTenantDenial records a tenant-boundary violation.
func RecordCrossTenantDenial() {
	authzCrossTenantDenialsTotal.Inc()
}

// RecordScopeFilter records a scope filter build by kind.
func RecordScopeFilter(kind FilterKind) {
	authzScopeFiltersTotal.WithLabelValues(kind.String()).Inc()
}
