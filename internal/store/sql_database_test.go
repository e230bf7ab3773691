// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := newDB(conn, postgresDialect, NewPostgresErrorClassifier(), logger.Nop())
	db.now = func() time.Time { return fixedNow }
	return db, mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestSQLTx_GetFound(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := context.Background()
	id := models.NewID()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT fields, body FROM documents WHERE collection = \$1 AND id = \$2`).
		WithArgs("files", id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"fields", "body"}).
			AddRow([]byte(`{"name":"a.txt"}`), []byte("cbor")))

	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	rec, err := tx.Get(ctx, "files", id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "a.txt", rec.Fields["name"])
	assert.Equal(t, []byte("cbor"), rec.Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTx_GetNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT fields, body FROM documents").WillReturnError(sql.ErrNoRows)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.Get(ctx, "files", models.NewID())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, err, app.ErrNotFound)
}

func TestSQLTx_QueryWithFilter(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := context.Background()
	a, b := models.NewID(), models.NewID()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, fields, body FROM documents WHERE collection = \$1 AND fields->>'parent_id' = \$2 ORDER BY id`).
		WithArgs("files", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fields", "body"}).
			AddRow(a.String(), []byte(`{"parent_id":"p1"}`), []byte("1")).
			AddRow(b.String(), []byte(`{"parent_id":"p1"}`), []byte("2")))

	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	recs, err := tx.Query(ctx, "files", Filter{"parent_id": "p1"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, a, recs[0].ID)
	assert.Equal(t, b, recs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTx_QueryRejectsBadField(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.Query(ctx, "files", Filter{"x'; DROP TABLE documents; --": "1"})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestSQLTx_QueryBadID(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, fields, body FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fields", "body"}).AddRow("nothex", []byte(`{}`), []byte("")))

	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.Query(ctx, "files", nil)
	assert.ErrorIs(t, err, ErrScanningRows)
}

func TestSQLTx_PutUpserts(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := context.Background()
	id := models.NewID()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents \(collection,id,fields,body,updated_at\) VALUES \(\$1,\$2,\$3,\$4,\$5\) ON CONFLICT \(collection, id\) DO UPDATE`).
		WithArgs("files", id.String(), `{"name":"a"}`, []byte("body"), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Put(ctx, Record{Collection: "files", ID: id, Fields: map[string]string{"name": "a"}, Body: []byte("body")}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTx_PutSerializationFailureIsRetryable(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").WillReturnError(pgError(pgerrcode.SerializationFailure))
	mock.ExpectRollback()

	tx, err := db.Begin(ctx)
	require.NoError(t, err)

	err = tx.Put(ctx, Record{Collection: "files", ID: models.NewID()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.Equal(t, Retryable, db.Classify(err))
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTx_Delete(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := context.Background()
	id := models.NewID()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1 AND id = \$2`).
		WithArgs("file_buffers", id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	assert.NoError(t, tx.Delete(ctx, "file_buffers", id))
}

func TestDB_BeginError(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := db.Begin(context.Background())
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestSQLTx_CommitError(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(pgError(pgerrcode.SerializationFailure))

	tx, err := db.Begin(context.Background())
	require.NoError(t, err)

	err = tx.Commit()
	assert.ErrorIs(t, err, ErrCommitingTransaction)
	assert.Equal(t, Retryable, db.Classify(err))
}
