// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	auditQueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldspan_audit_records_queued_total",
			Help: "Total number of audit records accepted into the buffer",
		},
	)

	auditWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldspan_audit_records_written_total",
			Help: "Total number of audit records durably written",
		},
	)

	// auditDroppedTotal is the alerting signal: any sustained nonzero rate
	// means the buffer is undersized or the store is too slow.
	auditDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldspan_audit_records_dropped_total",
			Help: "Total number of audit records dropped (buffer overflow)",
		},
	)

	auditWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldspan_audit_write_failures_total",
			Help: "Total number of failed audit store writes",
		},
	)
)

// RecordQueued counts a record accepted into the buffer.
func RecordQueued() { auditQueuedTotal.Inc() }

// RecordWritten counts a durable write.
func RecordWritten() { auditWrittenTotal.Inc() }

// RecordDropped counts a record lost to buffer overflow.
func RecordDropped() { auditDroppedTotal.Inc() }

// RecordWriteFailure counts a failed store write.
func RecordWriteFailure() { auditWriteFailuresTotal.Inc() }
