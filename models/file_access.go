// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strconv"
	"time"
)

// FileAccess is an explicit share of a file. The file's AES key is wrapped
// under the grantee's RSA public key: a user's, a group's, or nobody's for
// public (anyone-with-link) grants, whose key is stored in the clear.
type FileAccess struct {
	ID     ID `json:"id"`
	FileID ID `json:"file_id"`

	// Exactly one of UserID, GroupID or Public identifies the grantee.
	UserID  ID   `json:"user_id"`
	GroupID ID   `json:"group_id"`
	Public  bool `json:"public"`

	Level AccessLevel `json:"level"`

	EncryptedKey []byte `json:"encrypted_key"`

	GrantedByUserID ID        `json:"granted_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (a *FileAccess) Collection() string { return CollectionFileAccesses }
func (a *FileAccess) DocumentID() ID { return a.ID }
func (a *FileAccess) SetDocumentID(id ID) { a.ID = id }
func (a *FileAccess) IndexFields() map[string]string {
	return map[string]string{
		FieldFileID:  a.FileID.String(),
		FieldUserID:  idField(a.UserID),
		FieldGroupID: idField(a.GroupID),
		FieldPublic:  strconv.FormatBool(a.Public),
	}
}
