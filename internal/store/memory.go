// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/MKhiriev/go-drive-keeper/models"
)

type recordKey struct {
	collection string
	id         models.ID
}

type versionedRecord struct {
	rec     Record
	version uint64
}

// MemoryStore is an in-process [Store]. Transactions buffer their writes and
// apply them at commit under optimistic concurrency control: a commit fails
// with [ErrSerializationConflict] when a record the transaction read or wrote
// changed since it was first touched.
type MemoryStore struct {
	mu      sync.Mutex
	records map[recordKey]versionedRecord
	// versions survive deletes so a delete+recreate still conflicts.
	versions map[recordKey]uint64
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[recordKey]versionedRecord),
		versions: make(map[recordKey]uint64),
	}
}

// Begin implements [Store].
func (s *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryTx{
		store:    s,
		writes:   make(map[recordKey]*Record),
		observed: make(map[recordKey]uint64),
	}, nil
}

// Classify implements [Store].
func (s *MemoryStore) Classify(err error) ErrorClassification {
	if errors.Is(err, ErrSerializationConflict) {
		return Retryable
	}
	return NonRetryable
}

// Close implements [Store].
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of committed records in collection.
func (s *MemoryStore) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k := range s.records {
		if k.collection == collection {
			n++
		}
	}
	return n
}

type memoryTx struct {
	store *MemoryStore
	// writes maps a key to its pending record; nil marks a delete.
	writes   map[recordKey]*Record
	observed map[recordKey]uint64
	done     bool
}

// observe records the committed version of k the first time the
// transaction touches it. Callers hold store.mu.
func (tx *memoryTx) observe(k recordKey) {
	if _, ok := tx.observed[k]; !ok {
		tx.observed[k] = tx.store.versions[k]
	}
}

func (tx *memoryTx) Get(ctx context.Context, collection string, id models.ID) (Record, error) {
	if tx.done {
		return Record{}, ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	k := recordKey{collection, id}
	if w, ok := tx.writes[k]; ok {
		if w == nil {
			return Record{}, ErrDocumentNotFound
		}
		return cloneRecord(*w), nil
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	tx.observe(k)
	vr, ok := tx.store.records[k]
	if !ok {
		return Record{}, ErrDocumentNotFound
	}
	return cloneRecord(vr.rec), nil
}

func (tx *memoryTx) Query(ctx context.Context, collection string, filter Filter) ([]Record, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make(map[models.ID]Record)

	tx.store.mu.Lock()
	for k, vr := range tx.store.records {
		if k.collection != collection {
			continue
		}
		if _, pending := tx.writes[k]; pending {
			continue
		}
		if matches(vr.rec.Fields, filter) {
			tx.observe(k)
			merged[k.id] = cloneRecord(vr.rec)
		}
	}
	tx.store.mu.Unlock()

	for k, w := range tx.writes {
		if k.collection != collection || w == nil {
			continue
		}
		if matches(w.Fields, filter) {
			merged[k.id] = cloneRecord(*w)
		}
	}

	ids := slices.SortedFunc(maps.Keys(merged), func(a, b models.ID) int {
		return a.Compare(b)
	})
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, merged[id])
	}
	return out, nil
}

func (tx *memoryTx) Put(ctx context.Context, rec Record) error {
	if tx.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	k := recordKey{rec.Collection, rec.ID}
	tx.store.mu.Lock()
	tx.observe(k)
	tx.store.mu.Unlock()

	c := cloneRecord(rec)
	tx.writes[k] = &c
	return nil
}

func (tx *memoryTx) Delete(ctx context.Context, collection string, id models.ID) error {
	if tx.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	k := recordKey{collection, id}
	tx.store.mu.Lock()
	tx.observe(k)
	tx.store.mu.Unlock()

	tx.writes[k] = nil
	return nil
}

func (tx *memoryTx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range tx.observed {
		if s.versions[k] != v {
			return ErrSerializationConflict
		}
	}

	for k, w := range tx.writes {
		s.versions[k]++
		if w == nil {
			delete(s.records, k)
			continue
		}
		s.records[k] = versionedRecord{rec: *w, version: s.versions[k]}
	}
	return nil
}

func (tx *memoryTx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	return nil
}

func matches(fields map[string]string, filter Filter) bool {
	for k, v := range filter {
		if fields[k] != v {
			return false
		}
	}
	return true
}

func cloneRecord(r Record) Record {
	return Record{
		Collection: r.Collection,
		ID:         r.ID,
		Fields:     maps.Clone(r.Fields),
		Body:       slices.Clone(r.Body),
	}
}
