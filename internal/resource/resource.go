// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// DocumentPtr constrains P to the pointer type of a document struct T.
type DocumentPtr[T any] interface {
	*T
	models.Document
}

// Resource is the single in-process handle of one persisted document.
type Resource[T any] struct {
	manager *Manager
	doc     func(*T) models.Document

	mu      sync.Mutex
	data    T
	saved   T
	deleted bool
}

// ID returns the document identifier.
func (r *Resource[T]) ID() models.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc(&r.data).DocumentID()
}

// Data returns a copy of the current document.
func (r *Resource[T]) Data() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// Update applies fn to the in-memory document. The change is persisted by
// the next Save.
func (r *Resource[T]) Update(fn func(*T)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.doc(&r.data).DocumentID()
	fn(&r.data)
	// identity is immutable
	r.doc(&r.data).SetDocumentID(id)
}

// Deleted reports whether the resource was deleted.
func (r *Resource[T]) Deleted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleted
}

// Save persists the current document within tx. On abort the in-memory
// document reverts to its last persisted state.
func (r *Resource[T]) Save(ctx context.Context, tx *Tx) error {
	r.mu.Lock()
	if r.deleted {
		r.mu.Unlock()
		return ErrDeleted
	}
	current := r.data
	previous := r.saved
	r.mu.Unlock()

	if err := put(ctx, tx, r.doc(&current)); err != nil {
		return err
	}

	r.mu.Lock()
	r.saved = current
	r.mu.Unlock()

	tx.OnAbort(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.data = previous
		r.saved = previous
	})
	return nil
}

// Modify is Update followed by Save.
func (r *Resource[T]) Modify(ctx context.Context, tx *Tx, fn func(*T)) error {
	r.Update(fn)
	return r.Save(ctx, tx)
}

// Get loads the document with the given id. The returned resource is the
// process-wide instance for that document; its data is refreshed from the
// store.
func Get[T any, P DocumentPtr[T]](ctx context.Context, tx *Tx, id models.ID) (*Resource[T], error) {
	collection := P(new(T)).Collection()

	rec, err := tx.stx.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, collection, id)
		}
		return nil, err
	}
	return load[T, P](tx, rec)
}

// Query lazily yields every document of T's collection matching filter, in
// identifier order. Iteration stops at the first error.
func Query[T any, P DocumentPtr[T]](ctx context.Context, tx *Tx, filter store.Filter) iter.Seq2[*Resource[T], error] {
	return func(yield func(*Resource[T], error) bool) {
		recs, err := tx.stx.Query(ctx, P(new(T)).Collection(), filter)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, rec := range recs {
			r, err := load[T, P](tx, rec)
			if !yield(r, err) || err != nil {
				return
			}
		}
	}
}

// All collects Query into a slice.
func All[T any, P DocumentPtr[T]](ctx context.Context, tx *Tx, filter store.Filter) ([]*Resource[T], error) {
	var out []*Resource[T]
	for r, err := range Query[T, P](ctx, tx, filter) {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// FindOne returns the first document matching filter or [ErrNotFound].
func FindOne[T any, P DocumentPtr[T]](ctx context.Context, tx *Tx, filter store.Filter) (*Resource[T], error) {
	for r, err := range Query[T, P](ctx, tx, filter) {
		return r, err
	}
	return nil, fmt.Errorf("%w: %s %v", ErrNotFound, P(new(T)).Collection(), filter)
}

// New persists data as a new document with a fresh identifier.
func New[T any, P DocumentPtr[T]](ctx context.Context, tx *Tx, data T) (*Resource[T], error) {
	P(&data).SetDocumentID(models.NewID())

	r := &Resource[T]{
		manager: tx.manager,
		doc:     docFunc[T, P],
		data:    data,
		saved:   data,
	}

	if err := put(ctx, tx, P(&data)); err != nil {
		return nil, err
	}

	k := cacheKey{P(&data).Collection(), P(&data).DocumentID()}
	register(tx.manager, k, r)

	tx.OnAbort(func() {
		tx.manager.evict(k, r)
		r.mu.Lock()
		defer r.mu.Unlock()
		r.deleted = true
	})
	return r, nil
}

// Delete removes the document and evicts it from the identity cache. On
// abort the resource is restored and registered again.
func Delete[T any](ctx context.Context, tx *Tx, r *Resource[T]) error {
	r.mu.Lock()
	if r.deleted {
		r.mu.Unlock()
		return ErrDeleted
	}
	doc := r.doc(&r.data)
	k := cacheKey{doc.Collection(), doc.DocumentID()}
	r.mu.Unlock()

	if err := tx.stx.Delete(ctx, k.collection, k.id); err != nil {
		return err
	}

	tx.manager.evict(k, r)
	r.mu.Lock()
	r.deleted = true
	r.mu.Unlock()

	tx.OnAbort(func() {
		r.mu.Lock()
		r.deleted = false
		r.mu.Unlock()
		reinstate(tx.manager, k, r)
	})
	return nil
}

func docFunc[T any, P DocumentPtr[T]](t *T) models.Document {
	return P(t)
}

func put(ctx context.Context, tx *Tx, doc models.Document) error {
	body, err := tx.manager.codec.Marshal(doc)
	if err != nil {
		return err
	}
	return tx.stx.Put(ctx, store.Record{
		Collection: doc.Collection(),
		ID:         doc.DocumentID(),
		Fields:     doc.IndexFields(),
		Body:       body,
	})
}

// load decodes rec and returns the canonical resource for it.
func load[T any, P DocumentPtr[T]](tx *Tx, rec store.Record) (*Resource[T], error) {
	var data T
	if err := tx.manager.codec.Unmarshal(rec.Body, P(&data)); err != nil {
		return nil, err
	}
	P(&data).SetDocumentID(rec.ID)

	k := cacheKey{rec.Collection, rec.ID}
	fresh := &Resource[T]{
		manager: tx.manager,
		doc:     docFunc[T, P],
		data:    data,
		saved:   data,
	}

	r := register(tx.manager, k, fresh)
	if r != fresh {
		r.mu.Lock()
		if !r.deleted {
			r.data = data
			r.saved = data
		}
		r.mu.Unlock()
	}
	return r, nil
}
