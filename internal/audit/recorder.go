// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
recorder.go - Asynchronous Audit Recorder

The recorder decouples request latency from audit durability. Record is
non-blocking: the record goes into a buffered channel and a single writer
goroutine drains it into the Store. When the buffer is full the record is
dropped, logged, and counted; requests are never delayed or failed by audit
pressure.

Close stops intake and drains everything already buffered before returning.
*/

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/coldspan/coldspan/internal/logging"
	"github.com/coldspan/coldspan/internal/models"
)

// RecorderConfig configures the async recorder.
type RecorderConfig struct {
	// Enabled controls whether records are accepted at all. A disabled
	// recorder silently discards everything.
	Enabled bool

	// BufferSize is the channel capacity between Record and the writer.
	BufferSize int

	// WriteTimeout bounds each store write.
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns production defaults.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Enabled:      true,
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder accepts admin action records and writes them to a Store in the
// background.
type Recorder struct {
	config   RecorderConfig
	store    Store
	records  chan *models.AdminActionRecord
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRecorder creates a recorder over the given store and starts its writer
// goroutine when enabled.
func NewRecorder(store Store, config RecorderConfig) *Recorder {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		config:   config,
		store:    store,
		records:  make(chan *models.AdminActionRecord, config.BufferSize),
		stopChan: make(chan struct{}),
	}

	if config.Enabled {
		r.wg.Add(1)
		go r.processRecords()
	}
	return r
}

// Record queues one record for writing. Non-blocking: a full buffer drops
// the record with a warning and a metric, never an error to the caller.
//
// The request ID is captured from ctx here, while the request is still
// alive; the background write happens after the request context is gone.
func (r *Recorder) Record(ctx context.Context, record *models.AdminActionRecord) {
	if r == nil || !r.config.Enabled || record == nil {
		return
	}

	if record.RequestID == "" {
		record.RequestID = logging.RequestIDFromContext(ctx)
	}

	select {
	case r.records <- record:
		RecordQueued()
	default:
		logging.Warn().
			Str("actor_id", record.ActorID).
			Str("action", record.Action).
			Str("target_id", record.TargetID).
			Msg("Audit buffer full, record dropped")
		RecordDropped()
	}
}

// processRecords is the single writer goroutine.
func (r *Recorder) processRecords() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopChan:
			r.drain()
			return
		case record := <-r.records:
			r.write(record)
		}
	}
}

// drain flushes everything buffered at shutdown.
func (r *Recorder) drain() {
	for {
		select {
		case record := <-r.records:
			r.write(record)
		default:
			return
		}
	}
}

// write persists one record. Failures are logged and counted, nothing more:
// the mutation the record describes has already succeeded.
func (r *Recorder) write(record *models.AdminActionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.store.Append(ctx, record); err != nil {
		logging.Error().
			Err(err).
			Str("audit_id", record.ID).
			Str("actor_id", record.ActorID).
			Str("action", record.Action).
			Msg("Audit write failed")
		RecordWriteFailure()
		return
	}
	RecordWritten()
}

// Close stops intake, drains the buffer, and waits for the writer to exit.
// The underlying store is not closed; its owner does that.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
}

// BufferUsage returns current and maximum buffer occupancy.
func (r *Recorder) BufferUsage() (used, size int) {
	if r == nil {
		return 0, 0
	}
	return len(r.records), r.config.BufferSize
}
