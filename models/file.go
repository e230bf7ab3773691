// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strconv"
	"time"
)

// File is a node of a user's tree: either a folder or a regular file.
//
// Every file owns a random AES key. The key is stored twice: EncryptedKey
// wraps it under the parent folder's key (or under the owner's RSA public
// key when the file is a root) and AdminEncryptedKey wraps it under the
// admin master public key.
type File struct {
	ID ID `json:"id"`

	Name string `json:"name"`

	// ParentID is [NilID] for roots.
	ParentID    ID `json:"parent_id"`
	OwnerUserID ID `json:"owner_user_id"`

	IsFolder bool `json:"is_folder"`
	Starred  bool `json:"starred"`

	EncryptedKey      []byte `json:"encrypted_key"`
	AdminEncryptedKey []byte `json:"admin_encrypted_key"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// IsRoot reports whether f has no parent.
func (f *File) IsRoot() bool {
	return f.ParentID.IsZero()
}

func (f *File) Collection() string { return CollectionFiles }
func (f *File) DocumentID() ID { return f.ID }
func (f *File) SetDocumentID(id ID) { f.ID = id }
func (f *File) IndexFields() map[string]string {
	return map[string]string{
		FieldParentID: idField(f.ParentID),
		FieldUserID:   f.OwnerUserID.String(),
		FieldName:     f.Name,
		"is_folder":   strconv.FormatBool(f.IsFolder),
	}
}
