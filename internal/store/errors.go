// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
)

// Sentinel errors returned by store transactions to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrDocumentNotFound is returned by Get when no record exists for the
	// collection and ID.
	ErrDocumentNotFound = fmt.Errorf("%w: document", app.ErrNotFound)

	// ErrSerializationConflict is returned at commit when another
	// transaction changed a record this one read or wrote.
	ErrSerializationConflict = errors.New("serialization conflict")

	// ErrTxDone is returned when a committed or rolled back transaction is
	// used again.
	ErrTxDone = errors.New("transaction already finished")

	// ErrInvalidField is returned when a filter names a field that is not
	// a plain lowercase identifier.
	ErrInvalidField = errors.New("invalid filter field")

	// ErrUnknownDriver is returned by [NewStore] for unsupported drivers.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Low-level database operation errors. These are returned (or wrapped) by
// SQL transactions when a statement fails before any domain logic can be
// applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing an INSERT or DELETE
	// fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRows is returned when scanning a result row fails.
	ErrScanningRows = errors.New("failed to scan document rows")

	// ErrEncodingFields is returned when index fields cannot be encoded or
	// decoded as JSON.
	ErrEncodingFields = errors.New("failed to encode document fields")
)
