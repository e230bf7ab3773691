// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package blocks stores file content as fixed-size encrypted blocks grouped
// into immutable snapshots.
//
// A block is addressed by (snapshot, index) through a FileData record that
// points at a FileBuffer. Buffers are never rewritten: every block write
// creates a new buffer, and deriving a snapshot copies only the FileData
// references, so unmodified blocks stay shared with the base snapshot.
package blocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/crypto"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// MinBlockSize is the smallest block size the storage accepts.
const MinBlockSize = 16

// Options configures a [Storage].
type Options struct {
	BlockSize int
	Checksums bool
	// Now stamps new snapshots. Defaults to the UTC wall clock.
	Now func() time.Time
}

// Storage reads and writes snapshot content.
type Storage struct {
	keys      crypto.KeyChain
	blockSize int
	checksums bool
	now       func() time.Time
}

// NewStorage returns a Storage encrypting blocks through keys.
func NewStorage(keys crypto.KeyChain, opts Options) (*Storage, error) {
	if opts.BlockSize < MinBlockSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrInvalidBlockSize, opts.BlockSize, MinBlockSize)
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Storage{keys: keys, blockSize: opts.BlockSize, checksums: opts.Checksums, now: now}, nil
}

// BlockSize returns the configured block size.
func (s *Storage) BlockSize() int {
	return s.blockSize
}

// ReadBlock returns the plaintext of block index of snapshot. Sparse blocks
// read as zeros.
func (s *Storage) ReadBlock(ctx context.Context, tx *resource.Tx, file unlock.File, snapshotID models.ID, index int64) ([]byte, error) {
	data, err := s.findData(ctx, tx, snapshotID, index)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return make([]byte, s.blockSize), nil
	}

	bufID := data.Data().BufferID
	buf, err := resource.Get[models.FileBuffer](ctx, tx, bufID)
	if err != nil {
		return nil, err
	}
	b := buf.Data()

	plain, err := s.keys.DecryptSymmetric(file.Key, b.Data)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*Storage.ReadBlock").Stringer("buffer", bufID).Msg("block does not decrypt")
		return nil, fmt.Errorf("%w: buffer %s: %w", ErrCorruptBlock, bufID, err)
	}
	if s.checksums && len(b.Checksum) > 0 && !bytes.Equal(s.keys.Checksum(plain), b.Checksum) {
		logger.FromContext(ctx).Error().Str("func", "*Storage.ReadBlock").Stringer("buffer", bufID).Msg("block checksum mismatch")
		return nil, fmt.Errorf("%w: buffer %s: checksum mismatch", ErrCorruptBlock, bufID)
	}
	if len(plain) != s.blockSize {
		return nil, fmt.Errorf("%w: buffer %s holds %d bytes", ErrCorruptBlock, bufID, len(plain))
	}
	return plain, nil
}

// WriteBlock stores plaintext as block index of snapshot. Short input is
// zero-padded and long input truncated to one block. The block always goes
// to a new buffer; the previous buffer is deleted once nothing refers to it.
func (s *Storage) WriteBlock(ctx context.Context, tx *resource.Tx, file unlock.File, snapshotID models.ID, index int64, plaintext []byte) error {
	if index < 0 {
		return ErrInvalidLength
	}

	block := make([]byte, s.blockSize)
	copy(block, plaintext)

	sealed, err := s.keys.EncryptSymmetric(file.Key, block)
	if err != nil {
		return err
	}
	buf := models.FileBuffer{FileID: file.ID(), Data: sealed}
	if s.checksums {
		buf.Checksum = s.keys.Checksum(block)
	}
	bufRes, err := resource.New(ctx, tx, buf)
	if err != nil {
		return err
	}

	data, err := s.findData(ctx, tx, snapshotID, index)
	if err != nil {
		return err
	}
	if data == nil {
		_, err = resource.New(ctx, tx, models.FileData{
			FileID:     file.ID(),
			SnapshotID: snapshotID,
			Index:      index,
			BufferID:   bufRes.ID(),
		})
		return err
	}

	previous := data.Data().BufferID
	if err = data.Modify(ctx, tx, func(d *models.FileData) { d.BufferID = bufRes.ID() }); err != nil {
		return err
	}
	return s.releaseBuffer(ctx, tx, previous)
}

// ReadFile returns up to length bytes of snapshot starting at position,
// clamped to the snapshot size.
func (s *Storage) ReadFile(ctx context.Context, tx *resource.Tx, file unlock.File, snapshot *resource.Resource[models.FileSnapshot], position, length int64) ([]byte, error) {
	snap, err := s.snapshotOf(file, snapshot)
	if err != nil {
		return nil, err
	}
	if position < 0 || length < 0 {
		return nil, ErrInvalidLength
	}

	if position >= snap.Size {
		return []byte{}, nil
	}
	length = min(length, snap.Size-position)
	if length == 0 {
		return []byte{}, nil
	}
	end := position + length

	bs := int64(s.blockSize)
	out := make([]byte, 0, length)
	for index := position / bs; index <= (end-1)/bs; index++ {
		block, err := s.ReadBlock(ctx, tx, file, snap.ID, index)
		if err != nil {
			return nil, err
		}
		from := max(position-index*bs, 0)
		to := min(end-index*bs, bs)
		out = append(out, block[from:to]...)
	}
	return out, nil
}

// WriteFile writes data into snapshot at position. Partially covered blocks
// keep their other bytes. The snapshot size grows to cover the write and
// never shrinks.
func (s *Storage) WriteFile(ctx context.Context, tx *resource.Tx, file unlock.File, snapshot *resource.Resource[models.FileSnapshot], position int64, data []byte) error {
	snap, err := s.snapshotOf(file, snapshot)
	if err != nil {
		return err
	}
	if position < 0 {
		return ErrInvalidLength
	}
	if len(data) == 0 {
		return nil
	}
	if position > math.MaxInt64-int64(len(data)) {
		return fmt.Errorf("%w: write of %d bytes at %d", ErrInvalidLength, len(data), position)
	}

	bs := int64(s.blockSize)
	end := position + int64(len(data))
	for index := position / bs; index <= (end-1)/bs; index++ {
		blockStart := index * bs
		from := max(position-blockStart, 0)
		to := min(end-blockStart, bs)
		chunk := data[blockStart+from-position : blockStart+to-position]

		var block []byte
		if from == 0 && to == bs {
			block = chunk
		} else {
			block, err = s.ReadBlock(ctx, tx, file, snap.ID, index)
			if err != nil {
				return err
			}
			copy(block[from:to], chunk)
		}

		if err = s.WriteBlock(ctx, tx, file, snap.ID, index, block); err != nil {
			return err
		}
	}

	if end > snap.Size {
		return snapshot.Modify(ctx, tx, func(fs *models.FileSnapshot) { fs.Size = end })
	}
	return nil
}

// Truncate shrinks snapshot to size: blocks past the end are dropped and the
// tail of the new last block is zeroed. Growing is not allowed.
func (s *Storage) Truncate(ctx context.Context, tx *resource.Tx, file unlock.File, snapshot *resource.Resource[models.FileSnapshot], size int64) error {
	snap, err := s.snapshotOf(file, snapshot)
	if err != nil {
		return err
	}
	if size < 0 || size > snap.Size {
		return fmt.Errorf("%w: truncate to %d, size is %d", ErrInvalidLength, size, snap.Size)
	}
	if size == snap.Size {
		return nil
	}

	bs := int64(s.blockSize)
	keep := (size + bs - 1) / bs

	for data, err := range resource.Query[models.FileData](ctx, tx, store.Filter{models.FieldSnapshotID: snap.ID.String()}) {
		if err != nil {
			return err
		}
		if data.Data().Index < keep {
			continue
		}
		if err = s.dropData(ctx, tx, data); err != nil {
			return err
		}
	}

	if tail := size % bs; tail != 0 {
		last := keep - 1
		existing, err := s.findData(ctx, tx, snap.ID, last)
		if err != nil {
			return err
		}
		if existing != nil {
			block, err := s.ReadBlock(ctx, tx, file, snap.ID, last)
			if err != nil {
				return err
			}
			clear(block[tail:])
			if err = s.WriteBlock(ctx, tx, file, snap.ID, last, block); err != nil {
				return err
			}
		}
	}

	return snapshot.Modify(ctx, tx, func(fs *models.FileSnapshot) { fs.Size = size })
}

// CreateSnapshot derives a new snapshot of content from base, or an empty
// one when base is nil. Block references are copied, not the blocks. The
// content's latest snapshot moves to the new one.
func (s *Storage) CreateSnapshot(ctx context.Context, tx *resource.Tx, content *resource.Resource[models.FileContent], base *resource.Resource[models.FileSnapshot], createdBy models.ID) (*resource.Resource[models.FileSnapshot], error) {
	c := content.Data()
	snap := models.FileSnapshot{
		FileID:          c.FileID,
		ContentID:       c.ID,
		CreatedByUserID: createdBy,
		CreatedAt:       s.now(),
	}

	var baseID models.ID
	if base != nil {
		b := base.Data()
		if b.ContentID != c.ID {
			return nil, ErrSnapshotMismatch
		}
		baseID = b.ID
		snap.BaseFileSnapshotID = b.ID
		snap.Size = b.Size
	}

	snapRes, err := resource.New(ctx, tx, snap)
	if err != nil {
		return nil, err
	}

	if !baseID.IsZero() {
		for data, err := range resource.Query[models.FileData](ctx, tx, store.Filter{models.FieldSnapshotID: baseID.String()}) {
			if err != nil {
				return nil, err
			}
			d := data.Data()
			if _, err = resource.New(ctx, tx, models.FileData{
				FileID:     d.FileID,
				SnapshotID: snapRes.ID(),
				Index:      d.Index,
				BufferID:   d.BufferID,
			}); err != nil {
				return nil, err
			}
		}
	}

	if err = content.Modify(ctx, tx, func(fc *models.FileContent) { fc.LatestSnapshotID = snapRes.ID() }); err != nil {
		return nil, err
	}
	return snapRes, nil
}

// DeleteSnapshot removes snapshot with its block references and every
// buffer no other snapshot refers to.
func (s *Storage) DeleteSnapshot(ctx context.Context, tx *resource.Tx, snapshot *resource.Resource[models.FileSnapshot]) error {
	datas, err := resource.All[models.FileData](ctx, tx, store.Filter{models.FieldSnapshotID: snapshot.ID().String()})
	if err != nil {
		return err
	}
	for _, data := range datas {
		if err = s.dropData(ctx, tx, data); err != nil {
			return err
		}
	}
	return resource.Delete(ctx, tx, snapshot)
}

func (s *Storage) snapshotOf(file unlock.File, snapshot *resource.Resource[models.FileSnapshot]) (models.FileSnapshot, error) {
	snap := snapshot.Data()
	if snap.FileID != file.ID() {
		return models.FileSnapshot{}, fmt.Errorf("%w: snapshot %s, file %s", ErrSnapshotMismatch, snap.ID, file.ID())
	}
	return snap, nil
}

func (s *Storage) findData(ctx context.Context, tx *resource.Tx, snapshotID models.ID, index int64) (*resource.Resource[models.FileData], error) {
	data, err := resource.FindOne[models.FileData](ctx, tx, store.Filter{
		models.FieldSnapshotID: snapshotID.String(),
		models.FieldIndex:      strconv.FormatInt(index, 10),
	})
	if errors.Is(err, resource.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

func (s *Storage) dropData(ctx context.Context, tx *resource.Tx, data *resource.Resource[models.FileData]) error {
	bufID := data.Data().BufferID
	if err := resource.Delete(ctx, tx, data); err != nil {
		return err
	}
	return s.releaseBuffer(ctx, tx, bufID)
}

// releaseBuffer deletes the buffer when no FileData refers to it any more.
func (s *Storage) releaseBuffer(ctx context.Context, tx *resource.Tx, bufID models.ID) error {
	for _, err := range resource.Query[models.FileData](ctx, tx, store.Filter{models.FieldBufferID: bufID.String()}) {
		if err != nil {
			return err
		}
		// still shared
		return nil
	}

	buf, err := resource.Get[models.FileBuffer](ctx, tx, bufID)
	if errors.Is(err, resource.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return resource.Delete(ctx, tx, buf)
}
