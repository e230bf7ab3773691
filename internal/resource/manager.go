// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/models"
)

const (
	// DefaultMaxAttempts bounds how often a transaction body runs when the
	// store keeps reporting retryable failures.
	DefaultMaxAttempts = 5

	retryBackoff = 5 * time.Millisecond
)

type cacheKey struct {
	collection string
	id         models.ID
}

// cacheEntry is a type-erased weak reference to a *Resource[T].
type cacheEntry struct {
	// value returns the live resource as any, or nil once collected.
	value func() any
}

// Manager owns the document store and the process-wide identity cache.
type Manager struct {
	store       store.Store
	codec       Codec
	maxAttempts int

	// mu guards cache and is never held while calling into the store.
	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
}

// Option configures a [Manager].
type Option func(*Manager)

// WithMaxAttempts overrides [DefaultMaxAttempts].
func WithMaxAttempts(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithCodec overrides the CBOR body codec.
func WithCodec(c Codec) Option {
	return func(m *Manager) { m.codec = c }
}

// NewManager builds a Manager over s.
func NewManager(s store.Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:       s,
		maxAttempts: DefaultMaxAttempts,
		cache:       make(map[cacheKey]cacheEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.codec == nil {
		codec, err := NewCBORCodec()
		if err != nil {
			return nil, err
		}
		m.codec = codec
	}
	return m, nil
}

// Store returns the underlying document store.
func (m *Manager) Store() store.Store {
	return m.store
}

// Transact runs body inside a transaction and commits it when body returns
// nil. When body fails, the store transaction is rolled back and the undo
// log is replayed in reverse. A ctx that already carries a transaction is
// reused: body then joins the outer transaction, whose owner decides about
// commit and rollback.
//
// Failures the store classifies as retryable (serialization conflicts,
// deadlocks, lost connections) rerun body in a fresh transaction, up to the
// configured number of attempts.
func (m *Manager) Transact(ctx context.Context, body func(ctx context.Context, tx *Tx) error) error {
	if tx := TxFromContext(ctx); tx != nil && tx.manager == m {
		return body(ctx, tx)
	}

	log := logger.FromContext(ctx)

	var err error
	for attempt := 1; ; attempt++ {
		err = m.transactOnce(ctx, body)
		if err == nil {
			return nil
		}
		if attempt >= m.maxAttempts || m.store.Classify(err) != store.Retryable {
			return err
		}

		log.Debug().Err(err).Str("func", "*Manager.Transact").Int("attempt", attempt).Msg("retrying transaction")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
}

func (m *Manager) transactOnce(ctx context.Context, body func(ctx context.Context, tx *Tx) error) (err error) {
	stx, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}

	tx := &Tx{manager: m, stx: stx}
	txCtx := withTx(ctx, tx)

	defer func() {
		if p := recover(); p != nil {
			tx.abort(ctx)
			panic(p)
		}
	}()

	if err = body(txCtx, tx); err != nil {
		tx.abort(ctx)
		return err
	}

	if err = stx.Commit(); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*Manager.transactOnce").Msg("commit failed, replaying undo log")
		tx.replayUndo()
		return err
	}
	tx.finished = true

	return nil
}

// lookup returns the live resource cached under k, if any.
func (m *Manager) lookup(k cacheKey) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.cache[k]
	if !ok {
		return nil
	}
	if v := e.value(); v != nil {
		return v
	}
	delete(m.cache, k)
	return nil
}

// register caches r under k unless another live resource already holds the
// slot, in which case that one is returned.
func register[T any](m *Manager, k cacheKey, r *Resource[T]) *Resource[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.cache[k]; ok {
		if live, ok := e.value().(*Resource[T]); ok && live != nil {
			return live
		}
	}

	m.cache[k] = weakEntry(r)
	runtime.AddCleanup(r, m.reclaim, k)
	return r
}

// evict drops k from the cache when it still points at r.
func (m *Manager) evict(k cacheKey, r any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.cache[k]; ok && e.value() == r {
		delete(m.cache, k)
	}
}

// reinstate puts r back under k after an undone delete.
func reinstate[T any](m *Manager, k cacheKey, r *Resource[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache[k] = weakEntry(r)
}

// reclaim runs after the resource cached under k was garbage collected.
func (m *Manager) reclaim(k cacheKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.cache[k]; ok && e.value() == nil {
		delete(m.cache, k)
	}
}

// cached reports how many cache slots are currently occupied.
func (m *Manager) cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}
