// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strconv"
	"time"
)

// MainContentName is the name of the content slot created with every file.
const MainContentName = "main"

// FileContent is a named content slot of a file. Exactly one slot per file
// is flagged IsMain.
type FileContent struct {
	ID     ID     `json:"id"`
	FileID ID     `json:"file_id"`
	Name   string `json:"name"`
	IsMain bool   `json:"is_main"`

	// LatestSnapshotID is the most recent snapshot written to this slot, or
	// NilID before the first write.
	LatestSnapshotID ID `json:"latest_snapshot_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *FileContent) Collection() string { return CollectionFileContents }
func (c *FileContent) DocumentID() ID { return c.ID }
func (c *FileContent) SetDocumentID(id ID) { c.ID = id }
func (c *FileContent) IndexFields() map[string]string {
	return map[string]string{
		FieldFileID: c.FileID.String(),
		FieldName:   c.Name,
		"is_main":   strconv.FormatBool(c.IsMain),
	}
}
