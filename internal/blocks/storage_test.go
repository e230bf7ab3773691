// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package blocks

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/crypto"
	"github.com/MKhiriev/go-drive-keeper/internal/mock"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testBlockSize = 16

type env struct {
	t       *testing.T
	mem     *store.MemoryStore
	m       *resource.Manager
	s       *Storage
	file    unlock.File
	content *resource.Resource[models.FileContent]
}

func newEnv(t *testing.T) *env {
	t.Helper()
	keys := crypto.NewKeyChain(crypto.Params{Iterations: 1000})
	mem := store.NewMemoryStore()
	m, err := resource.NewManager(mem)
	require.NoError(t, err)
	s, err := NewStorage(keys, Options{BlockSize: testBlockSize, Checksums: true})
	require.NoError(t, err)

	key, err := keys.GenerateSymmetricKey()
	require.NoError(t, err)

	e := &env{t: t, mem: mem, m: m, s: s}
	e.run(func(ctx context.Context, tx *resource.Tx) error {
		f, err := resource.New(ctx, tx, models.File{Name: "a.bin"})
		if err != nil {
			return err
		}
		e.file = unlock.File{Resource: f, Key: key}
		e.content, err = resource.New(ctx, tx, models.FileContent{FileID: f.ID(), Name: models.MainContentName, IsMain: true})
		return err
	})
	return e
}

func (e *env) run(body func(ctx context.Context, tx *resource.Tx) error) {
	e.t.Helper()
	require.NoError(e.t, e.m.Transact(context.Background(), body))
}

func (e *env) snapshot(base *resource.Resource[models.FileSnapshot]) *resource.Resource[models.FileSnapshot] {
	e.t.Helper()
	var snap *resource.Resource[models.FileSnapshot]
	e.run(func(ctx context.Context, tx *resource.Tx) error {
		var err error
		snap, err = e.s.CreateSnapshot(ctx, tx, e.content, base, models.NilID)
		return err
	})
	return snap
}

func (e *env) write(snap *resource.Resource[models.FileSnapshot], pos int64, data []byte) {
	e.t.Helper()
	e.run(func(ctx context.Context, tx *resource.Tx) error {
		return e.s.WriteFile(ctx, tx, e.file, snap, pos, data)
	})
}

func (e *env) read(snap *resource.Resource[models.FileSnapshot], pos, length int64) []byte {
	e.t.Helper()
	var out []byte
	e.run(func(ctx context.Context, tx *resource.Tx) error {
		var err error
		out, err = e.s.ReadFile(ctx, tx, e.file, snap, pos, length)
		return err
	})
	return out
}

func TestNewStorage_RejectsTinyBlocks(t *testing.T) {
	_, err := NewStorage(crypto.NewKeyChain(crypto.Params{}), Options{BlockSize: 8})
	assert.ErrorIs(t, err, ErrInvalidBlockSize)
}

func TestReadBlock_SparseIsZero(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		block, err := e.s.ReadBlock(ctx, tx, e.file, snap.ID(), 7)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, testBlockSize), block)
		return nil
	})
}

func TestWriteBlock_PadsAndTruncates(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		require.NoError(t, e.s.WriteBlock(ctx, tx, e.file, snap.ID(), 0, []byte("short")))
		require.NoError(t, e.s.WriteBlock(ctx, tx, e.file, snap.ID(), 1, bytes.Repeat([]byte("x"), 40)))

		b0, err := e.s.ReadBlock(ctx, tx, e.file, snap.ID(), 0)
		require.NoError(t, err)
		assert.Equal(t, append([]byte("short"), make([]byte, testBlockSize-5)...), b0)

		b1, err := e.s.ReadBlock(ctx, tx, e.file, snap.ID(), 1)
		require.NoError(t, err)
		assert.Equal(t, bytes.Repeat([]byte("x"), testBlockSize), b1)
		return nil
	})
}

func TestWriteBlock_NewBufferReleasesOld(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)

	var first models.ID
	e.run(func(ctx context.Context, tx *resource.Tx) error {
		require.NoError(t, e.s.WriteBlock(ctx, tx, e.file, snap.ID(), 0, []byte("one")))
		d, err := e.s.findData(ctx, tx, snap.ID(), 0)
		require.NoError(t, err)
		first = d.Data().BufferID
		return nil
	})
	e.run(func(ctx context.Context, tx *resource.Tx) error {
		require.NoError(t, e.s.WriteBlock(ctx, tx, e.file, snap.ID(), 0, []byte("two")))
		d, err := e.s.findData(ctx, tx, snap.ID(), 0)
		require.NoError(t, err)
		assert.NotEqual(t, first, d.Data().BufferID)
		return nil
	})

	assert.Equal(t, 1, e.mem.Len(models.CollectionFileBuffers))
	assert.Equal(t, 1, e.mem.Len(models.CollectionFileData))
}

func TestReadWriteFile_SpansBlocks(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)
	payload := []byte("0123456789abcdefghijklmnopqrstuvwxyzABCD") // 40 bytes

	e.write(snap, 10, payload)
	assert.Equal(t, int64(50), snap.Data().Size)

	got := e.read(snap, 0, 100)
	require.Len(t, got, 50)
	assert.Equal(t, make([]byte, 10), got[:10])
	assert.Equal(t, payload, got[10:])

	assert.Equal(t, payload[5:25], e.read(snap, 15, 20))
	assert.Empty(t, e.read(snap, 50, 10))
	assert.Empty(t, e.read(snap, 70, 10))
}

func TestReadFile_HugeLengthReadsToEnd(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)
	e.write(snap, 0, []byte("ABCDEFGH"))

	assert.Equal(t, []byte("BCDEFGH"), e.read(snap, 1, math.MaxInt64))
	assert.Equal(t, []byte("ABCDEFGH"), e.read(snap, 0, math.MaxInt64))
	assert.Empty(t, e.read(snap, 8, math.MaxInt64))
}

func TestWriteFile_PositionOverflowFails(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)

	err := e.m.Transact(context.Background(), func(ctx context.Context, tx *resource.Tx) error {
		return e.s.WriteFile(ctx, tx, e.file, snap, math.MaxInt64-2, []byte("XYZW"))
	})
	require.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, app.KindInvalidState, app.KindOf(err))
	assert.Equal(t, int64(0), snap.Data().Size)
	assert.Zero(t, e.mem.Len(models.CollectionFileBuffers))
}

func TestWriteFile_OverlapKeepsUntouchedBytes(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)

	e.write(snap, 0, []byte("AAAA"))
	e.write(snap, 0, []byte("BB"))

	assert.Equal(t, []byte("BBAA"), e.read(snap, 0, 4))
	assert.Equal(t, int64(4), snap.Data().Size)
}

func TestWriteFile_SizeNeverShrinks(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)

	e.write(snap, 0, bytes.Repeat([]byte{1}, 30))
	e.write(snap, 2, []byte{9})
	assert.Equal(t, int64(30), snap.Data().Size)
}

func TestCreateSnapshot_CopyOnWriteIsolation(t *testing.T) {
	e := newEnv(t)
	base := e.snapshot(nil)
	original := bytes.Repeat([]byte("b"), 5*testBlockSize)
	e.write(base, 0, original)
	buffersBefore := e.mem.Len(models.CollectionFileBuffers)

	derived := e.snapshot(base)
	assert.Equal(t, base.ID(), derived.Data().BaseFileSnapshotID)
	assert.Equal(t, base.Data().Size, derived.Data().Size)
	assert.Equal(t, derived.ID(), e.content.Data().LatestSnapshotID)

	// only references were copied
	assert.Equal(t, buffersBefore, e.mem.Len(models.CollectionFileBuffers))
	assert.Equal(t, 10, e.mem.Len(models.CollectionFileData))

	e.write(derived, 3*testBlockSize, bytes.Repeat([]byte("D"), testBlockSize))

	assert.Equal(t, bytes.Repeat([]byte("b"), testBlockSize), e.read(base, 3*testBlockSize, testBlockSize))
	assert.Equal(t, bytes.Repeat([]byte("D"), testBlockSize), e.read(derived, 3*testBlockSize, testBlockSize))
	assert.Equal(t, original, e.read(base, 0, int64(len(original))))
	assert.Equal(t, buffersBefore+1, e.mem.Len(models.CollectionFileBuffers))
}

func TestCreateSnapshot_UsesClock(t *testing.T) {
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := newEnv(t)
	s, err := NewStorage(crypto.NewKeyChain(crypto.Params{Iterations: 1000}), Options{
		BlockSize: testBlockSize,
		Now:       func() time.Time { return stamp },
	})
	require.NoError(t, err)
	e.s = s

	snap := e.snapshot(nil)
	assert.True(t, stamp.Equal(snap.Data().CreatedAt))
}

func TestTruncate(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)
	e.write(snap, 0, bytes.Repeat([]byte("z"), 40))

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		return e.s.Truncate(ctx, tx, e.file, snap, 20)
	})
	assert.Equal(t, int64(20), snap.Data().Size)
	assert.Equal(t, 2, e.mem.Len(models.CollectionFileData))
	assert.Equal(t, 2, e.mem.Len(models.CollectionFileBuffers))

	// growing again exposes zeros, not the old tail
	e.write(snap, 31, []byte{7})
	got := e.read(snap, 0, 32)
	assert.Equal(t, bytes.Repeat([]byte("z"), 20), got[:20])
	assert.Equal(t, make([]byte, 11), got[20:31])
	assert.Equal(t, byte(7), got[31])

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		err := e.s.Truncate(ctx, tx, e.file, snap, 100)
		assert.ErrorIs(t, err, ErrInvalidLength)
		assert.ErrorIs(t, err, app.ErrInvalidState)

		require.NoError(t, e.s.Truncate(ctx, tx, e.file, snap, 0))
		return nil
	})
	assert.Equal(t, int64(0), snap.Data().Size)
	assert.Equal(t, 0, e.mem.Len(models.CollectionFileBuffers))
}

func TestTruncate_SharedBlockStaysInBase(t *testing.T) {
	e := newEnv(t)
	base := e.snapshot(nil)
	e.write(base, 0, bytes.Repeat([]byte("q"), 32))
	derived := e.snapshot(base)

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		return e.s.Truncate(ctx, tx, e.file, derived, 8)
	})

	assert.Equal(t, bytes.Repeat([]byte("q"), 32), e.read(base, 0, 32))
	assert.Equal(t, bytes.Repeat([]byte("q"), 8), e.read(derived, 0, 32))
}

func TestReadBlock_DetectsCorruption(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)
	e.write(snap, 0, []byte("payload"))

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		d, err := e.s.findData(ctx, tx, snap.ID(), 0)
		require.NoError(t, err)
		buf, err := resource.Get[models.FileBuffer](ctx, tx, d.Data().BufferID)
		require.NoError(t, err)
		return buf.Modify(ctx, tx, func(b *models.FileBuffer) { b.Checksum[0] ^= 0xff })
	})

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		_, err := e.s.ReadFile(ctx, tx, e.file, snap, 0, 7)
		assert.ErrorIs(t, err, ErrCorruptBlock)
		assert.ErrorIs(t, err, app.ErrCrypto)

		wrongKey := unlock.File{Resource: e.file.Resource, Key: bytes.Repeat([]byte{1}, crypto.SymmetricKeySize)}
		_, err = e.s.ReadBlock(ctx, tx, wrongKey, snap.ID(), 0)
		assert.ErrorIs(t, err, ErrCorruptBlock)
		return nil
	})
}

func TestDeleteSnapshot_KeepsSharedBuffers(t *testing.T) {
	e := newEnv(t)
	base := e.snapshot(nil)
	e.write(base, 0, bytes.Repeat([]byte("s"), 3*testBlockSize))
	derived := e.snapshot(base)
	e.write(derived, 0, []byte("X"))
	require.Equal(t, 4, e.mem.Len(models.CollectionFileBuffers))

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		return e.s.DeleteSnapshot(ctx, tx, derived)
	})
	assert.Equal(t, 3, e.mem.Len(models.CollectionFileBuffers))
	assert.Equal(t, bytes.Repeat([]byte("s"), 3*testBlockSize), e.read(base, 0, 3*testBlockSize))

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		return e.s.DeleteSnapshot(ctx, tx, base)
	})
	assert.Equal(t, 0, e.mem.Len(models.CollectionFileBuffers))
	assert.Equal(t, 0, e.mem.Len(models.CollectionFileData))
	assert.Equal(t, 0, e.mem.Len(models.CollectionFileSnapshots))
}

func TestSnapshotMismatch(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)
	other := newEnv(t)

	e.run(func(ctx context.Context, tx *resource.Tx) error {
		_, err := e.s.ReadFile(ctx, tx, other.file, snap, 0, 1)
		assert.ErrorIs(t, err, ErrSnapshotMismatch)
		return nil
	})
}

func TestWriteFile_AbortLeavesNothing(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)

	err := e.m.Transact(context.Background(), func(ctx context.Context, tx *resource.Tx) error {
		require.NoError(t, e.s.WriteFile(ctx, tx, e.file, snap, 0, []byte("lost")))
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, int64(0), snap.Data().Size)
	assert.Equal(t, 0, e.mem.Len(models.CollectionFileBuffers))
	assert.Empty(t, e.read(snap, 0, 4))
}

func TestWriteFile_EncryptionFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	snap := e.snapshot(nil)

	ctrl := gomock.NewController(t)
	keys := mock.NewMockKeyChain(ctrl)
	failing, err := NewStorage(keys, Options{BlockSize: testBlockSize, Checksums: true})
	require.NoError(t, err)

	errEncrypt := errors.New("hsm unavailable")
	gomock.InOrder(
		keys.EXPECT().EncryptSymmetric(e.file.Key, gomock.Any()).Return([]byte("sealed"), nil),
		keys.EXPECT().Checksum(gomock.Any()).Return([]byte("sum")),
		keys.EXPECT().EncryptSymmetric(e.file.Key, gomock.Any()).Return(nil, errEncrypt),
	)

	err = e.m.Transact(context.Background(), func(ctx context.Context, tx *resource.Tx) error {
		return failing.WriteFile(ctx, tx, e.file, snap, 0, bytes.Repeat([]byte("w"), 2*testBlockSize))
	})
	require.ErrorIs(t, err, errEncrypt)

	assert.Equal(t, int64(0), snap.Data().Size)
	assert.Equal(t, 0, e.mem.Len(models.CollectionFileBuffers))
	assert.Equal(t, 0, e.mem.Len(models.CollectionFileData))
}
