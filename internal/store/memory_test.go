// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-drive-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putCommitted(t *testing.T, s *MemoryStore, recs ...Record) {
	t.Helper()
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, tx.Put(context.Background(), r))
	}
	require.NoError(t, tx.Commit())
}

func TestMemoryStore_PutGetCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := models.NewID()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Put(ctx, Record{Collection: "files", ID: id, Fields: map[string]string{"name": "a"}, Body: []byte("x")}))

	// visible inside the transaction, invisible outside
	got, err := tx.Get(ctx, "files", id)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got.Body)

	other, _ := s.Begin(ctx)
	_, err = other.Get(ctx, "files", id)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	require.NoError(t, other.Rollback())

	require.NoError(t, tx.Commit())
	assert.Equal(t, 1, s.Len("files"))

	after, _ := s.Begin(ctx)
	got, err = after.Get(ctx, "files", id)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Fields["name"])
}

func TestMemoryStore_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tx, _ := s.Begin(ctx)
	require.NoError(t, tx.Put(ctx, Record{Collection: "files", ID: models.NewID()}))
	require.NoError(t, tx.Rollback())

	assert.Equal(t, 0, s.Len("files"))
	assert.ErrorIs(t, tx.Commit(), ErrTxDone)
}

func TestMemoryStore_QueryFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	parent := models.NewID()
	ids := []models.ID{models.NewID(), models.NewID(), models.NewID()}
	putCommitted(t, s,
		Record{Collection: "files", ID: ids[2], Fields: map[string]string{"parent_id": parent.String()}},
		Record{Collection: "files", ID: ids[0], Fields: map[string]string{"parent_id": parent.String()}},
		Record{Collection: "files", ID: ids[1], Fields: map[string]string{"parent_id": "other"}},
		Record{Collection: "groups", ID: models.NewID(), Fields: map[string]string{"parent_id": parent.String()}},
	)

	tx, _ := s.Begin(ctx)
	defer tx.Rollback()

	// pending write shows up, pending delete hides a committed record
	extra := models.NewID()
	require.NoError(t, tx.Put(ctx, Record{Collection: "files", ID: extra, Fields: map[string]string{"parent_id": parent.String()}}))
	require.NoError(t, tx.Delete(ctx, "files", ids[0]))

	recs, err := tx.Query(ctx, "files", Filter{"parent_id": parent.String()})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, ids[2], recs[0].ID)
	assert.Equal(t, extra, recs[1].ID)

	all, err := tx.Query(ctx, "files", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStore_ConflictingCommitIsRetryable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := models.NewID()
	putCommitted(t, s, Record{Collection: "files", ID: id, Body: []byte("v1")})

	t1, _ := s.Begin(ctx)
	t2, _ := s.Begin(ctx)

	_, err := t1.Get(ctx, "files", id)
	require.NoError(t, err)
	_, err = t2.Get(ctx, "files", id)
	require.NoError(t, err)

	require.NoError(t, t1.Put(ctx, Record{Collection: "files", ID: id, Body: []byte("t1")}))
	require.NoError(t, t2.Put(ctx, Record{Collection: "files", ID: id, Body: []byte("t2")}))

	require.NoError(t, t1.Commit())
	err = t2.Commit()
	assert.ErrorIs(t, err, ErrSerializationConflict)
	assert.Equal(t, Retryable, s.Classify(err))

	check, _ := s.Begin(ctx)
	got, err := check.Get(ctx, "files", id)
	require.NoError(t, err)
	assert.Equal(t, []byte("t1"), got.Body)
}

func TestMemoryStore_RecordsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := models.NewID()

	body := []byte("abc")
	fields := map[string]string{"name": "a"}
	putCommitted(t, s, Record{Collection: "files", ID: id, Fields: fields, Body: body})
	body[0] = 'z'
	fields["name"] = "mutated"

	tx, _ := s.Begin(ctx)
	got, err := tx.Get(ctx, "files", id)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got.Body)
	assert.Equal(t, "a", got.Fields["name"])
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
