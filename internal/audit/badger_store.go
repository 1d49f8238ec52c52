// Coldspan - Multi-Tenant Cold Chain Monitoring
// Copyright 2026 Coldspan Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coldspan/coldspan

/*
badger_store.go - BadgerDB Audit Store

Records are stored append-only under keys of the form

	audit:<unix-nanos, zero-padded>:<record id>

so lexicographic key order equals chronological order and newest-first
listing is a reverse prefix scan. There is deliberately no delete path.
*/

package audit

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/coldspan/coldspan/internal/models"
)

const auditKeyPrefix = "audit:"

// defaultListLimit bounds List when the query does not set one.
const defaultListLimit = 100

// BadgerStore implements Store on BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a badger database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewInMemoryStore opens a badger database with no backing files. Used for
// tests and for deployments that accept audit loss on restart.
func NewInMemoryStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory audit store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func auditKey(record *models.AdminActionRecord) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", auditKeyPrefix, record.Timestamp.UnixNano(), record.ID))
}

// Append writes one record. Existing keys are never overwritten in practice
// because the key embeds a UUID.
func (s *BadgerStore) Append(_ context.Context, record *models.AdminActionRecord) error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(record), data)
	})
}

// List returns matching records, newest first.
func (s *BadgerStore) List(_ context.Context, query ListQuery) ([]*models.AdminActionRecord, error) {
	if s.db.IsClosed() {
		return nil, ErrStoreClosed
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var records []*models.AdminActionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(auditKeyPrefix)
		// Reverse iteration starts just past the last audit key. 0xff sorts
		// after every digit that can follow the prefix.
		seek := append([]byte(auditKeyPrefix), 0xff)

		for it.Seek(seek); it.ValidForPrefix(prefix) && len(records) < limit; it.Next() {
			var record models.AdminActionRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("unmarshal audit record: %w", err)
			}
			if !matchesQuery(&record, query) {
				continue
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func matchesQuery(record *models.AdminActionRecord, query ListQuery) bool {
	if query.ActorID != "" && record.ActorID != query.ActorID {
		return false
	}
	if query.Action != "" && record.Action != query.Action {
		return false
	}
	if query.TargetType != "" && record.TargetType != query.TargetType {
		return false
	}
	return true
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
