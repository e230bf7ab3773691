// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-drive-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Record is one persisted document: the opaque body plus the scalar fields
// the store may filter on.
type Record struct {
	Collection string
	ID         models.ID
	Fields     map[string]string
	Body       []byte
}

// Filter selects records whose indexed fields equal every given value.
// An empty Filter matches every record of the collection.
type Filter map[string]string

// Store is the external document store the resource layer persists to.
type Store interface {
	// Begin starts a transaction.
	Begin(ctx context.Context) (Tx, error)

	// Classify reports whether an error returned by this store is worth
	// retrying the whole transaction for.
	Classify(err error) ErrorClassification

	// Close releases the underlying connections.
	Close() error
}

// Tx is one store transaction. A Tx is used by one goroutine at a time.
type Tx interface {
	// Get returns the record or an error matching [ErrDocumentNotFound].
	Get(ctx context.Context, collection string, id models.ID) (Record, error)

	// Query returns every record of collection matching filter, ordered by
	// ID.
	Query(ctx context.Context, collection string, filter Filter) ([]Record, error)

	// Put inserts or replaces the record.
	Put(ctx context.Context, rec Record) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, collection string, id models.ID) error

	Commit() error
	Rollback() error
}

// ErrorClassification tells the resource manager whether a failed
// transaction is worth running again.
type ErrorClassification int

const (
	// NonRetryable is the default for unrecognised errors.
	NonRetryable ErrorClassification = iota

	// Retryable marks serialization conflicts, deadlocks and lost
	// connections.
	Retryable
)

// String implements fmt.Stringer.
func (c ErrorClassification) String() string {
	if c == Retryable {
		return "retryable"
	}
	return "non-retryable"
}

// ErrorClassificator decides whether a store error is transient.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
