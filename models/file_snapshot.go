// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// FileSnapshot is a version of one content slot. A snapshot created from a
// base shares the base's blocks until a write diverges them.
type FileSnapshot struct {
	ID        ID `json:"id"`
	FileID    ID `json:"file_id"`
	ContentID ID `json:"content_id"`

	// BaseFileSnapshotID is the snapshot this one was derived from, or NilID.
	BaseFileSnapshotID ID `json:"base_file_snapshot_id"`

	// Size is the logical length in bytes.
	Size int64 `json:"size"`

	CreatedByUserID ID        `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (s *FileSnapshot) Collection() string { return CollectionFileSnapshots }
func (s *FileSnapshot) DocumentID() ID { return s.ID }
func (s *FileSnapshot) SetDocumentID(id ID) { s.ID = id }
func (s *FileSnapshot) IndexFields() map[string]string {
	return map[string]string{
		FieldFileID:    s.FileID.String(),
		FieldContentID: s.ContentID.String(),
	}
}
