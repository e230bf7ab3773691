// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/migrations"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// DB is the SQL-backed [Store]. Every document lives in one row of the
// documents table; indexed fields are kept in a JSON column and filtered
// with the dialect's JSON operators.
type DB struct {
	*sql.DB
	dialect            dialect
	errorClassificator ErrorClassificator
	logger             *logger.Logger
	now                func() time.Time
}

func newDB(conn *sql.DB, d dialect, classifier ErrorClassificator, log *logger.Logger) *DB {
	return &DB{
		DB:                 conn,
		dialect:            d,
		errorClassificator: classifier,
		logger:             log,
		now:                time.Now,
	}
}

// Migrate applies the embedded schema migrations of the dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect.name)
}

// Begin implements [Store].
func (db *DB) Begin(ctx context.Context) (Tx, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: db.dialect.isolation})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*DB.Begin").Msg("error beginning transaction")
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	return &sqlTx{tx: tx, db: db}, nil
}

// Classify implements [Store].
func (db *DB) Classify(err error) ErrorClassification {
	if db.errorClassificator == nil {
		return NonRetryable
	}
	return db.errorClassificator.Classify(err)
}

type sqlTx struct {
	tx *sql.Tx
	db *DB
}

func (t *sqlTx) Get(ctx context.Context, collection string, id models.ID) (Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := t.db.dialect.getDocument(collection, id.String())
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var fields []byte
	var body []byte
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&fields, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, id)
		}
		log.Err(err).Str("func", "*sqlTx.Get").Str("collection", collection).Msg("error selecting document")
		return Record{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	rec := Record{Collection: collection, ID: id, Body: body}
	if err := decodeFields(fields, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Query implements [Tx]. Rows are read eagerly: the transaction's connection
// is busy until the result set is closed.
func (t *sqlTx) Query(ctx context.Context, collection string, filter Filter) ([]Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := t.db.dialect.queryDocuments(collection, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sqlTx.Query").Str("collection", collection).Msg("error querying documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rawID string
		var fields, body []byte
		if err := rows.Scan(&rawID, &fields, &body); err != nil {
			log.Err(err).Str("func", "*sqlTx.Query").Msg("error scanning document row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		id, err := models.ParseID(rawID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		rec := Record{Collection: collection, ID: id, Body: body}
		if err := decodeFields(fields, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*sqlTx.Query").Msg("error iterating document rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

func (t *sqlTx) Put(ctx context.Context, rec Record) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingFields, err)
	}

	query, args, err := t.db.dialect.upsertDocument(rec.Collection, rec.ID.String(), string(fields), rec.Body, t.db.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sqlTx.Put").
			Str("collection", rec.Collection).
			Str("pg_code", sqlState(err)).
			Msg("error upserting document")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (t *sqlTx) Delete(ctx context.Context, collection string, id models.ID) error {
	query, args, err := t.db.dialect.deleteDocument(collection, id.String())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sqlTx.Delete").Str("collection", collection).Msg("error deleting document")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTxDone
		}
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTxDone
		}
		return err
	}
	return nil
}

func decodeFields(raw []byte, rec *Record) error {
	if len(raw) == 0 {
		rec.Fields = map[string]string{}
		return nil
	}
	if err := json.Unmarshal(raw, &rec.Fields); err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingFields, err)
	}
	return nil
}
