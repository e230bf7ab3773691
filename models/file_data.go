// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strconv"

// FileData maps one block index of a snapshot to the buffer holding that
// block. Several FileData records (of different snapshots) may reference the
// same buffer.
type FileData struct {
	ID         ID    `json:"id"`
	FileID     ID    `json:"file_id"`
	SnapshotID ID    `json:"snapshot_id"`
	Index      int64 `json:"index"`
	BufferID   ID    `json:"buffer_id"`
}

func (d *FileData) Collection() string { return CollectionFileData }
func (d *FileData) DocumentID() ID { return d.ID }
func (d *FileData) SetDocumentID(id ID) { d.ID = id }
func (d *FileData) IndexFields() map[string]string {
	return map[string]string{
		FieldFileID:     d.FileID.String(),
		FieldSnapshotID: d.SnapshotID.String(),
		FieldIndex:      strconv.FormatInt(d.Index, 10),
		FieldBufferID:   d.BufferID.String(),
	}
}

// FileBuffer is one encrypted block. Buffers are immutable once written.
type FileBuffer struct {
	ID     ID `json:"id"`
	FileID ID `json:"file_id"`

	// Data is nonce || AES-GCM ciphertext of exactly one block.
	Data []byte `json:"data"`

	// Checksum is the SHA-256 digest of the plaintext block. Empty when the
	// storage runs without checksums.
	Checksum []byte `json:"checksum,omitempty"`
}

func (b *FileBuffer) Collection() string { return CollectionFileBuffers }
func (b *FileBuffer) DocumentID() ID { return b.ID }
func (b *FileBuffer) SetDocumentID(id ID) { b.ID = id }
func (b *FileBuffer) IndexFields() map[string]string {
	return map[string]string{FieldFileID: b.FileID.String()}
}
