// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Collection names. Every document type lives in exactly one collection of
// the backing document store.
const (
	CollectionUsers                 = "users"
	CollectionUserAuthentications   = "user_authentications"
	CollectionFiles                 = "files"
	CollectionFileAccesses          = "file_accesses"
	CollectionFileContents          = "file_contents"
	CollectionFileSnapshots         = "file_snapshots"
	CollectionFileData              = "file_data"
	CollectionFileBuffers           = "file_buffers"
	CollectionAdminKeys             = "admin_keys"
	CollectionAdminAccesses         = "admin_accesses"
	CollectionUserAdminBackdoors    = "user_admin_backdoors"
	CollectionGroups                = "groups"
	CollectionGroupMemberships      = "group_memberships"
	CollectionPasswordResetRequests = "password_reset_requests"
)

// Index field names shared by the document types and the store filters.
const (
	FieldUserID     = "user_id"
	FieldFileID     = "file_id"
	FieldParentID   = "parent_id"
	FieldGroupID    = "group_id"
	FieldContentID  = "content_id"
	FieldSnapshotID = "snapshot_id"
	FieldBufferID   = "buffer_id"
	FieldIndex      = "index"
	FieldLogin      = "login"
	FieldKind       = "kind"
	FieldProvider   = "provider"
	FieldSubject    = "subject"
	FieldName       = "name"
	FieldPublic     = "public"
	FieldState      = "state"
)

// Document is implemented (on pointer receivers) by every persisted entity.
//
// IndexFields returns the scalar fields the document store may filter on.
// Values are compared as strings; identifiers use their hex form.
type Document interface {
	Collection() string
	DocumentID() ID
	SetDocumentID(ID)
	IndexFields() map[string]string
}

// idField renders an optional reference for IndexFields. Zero identifiers
// index as the empty string so "is root" filters can match them.
func idField(id ID) string {
	if id.IsZero() {
		return ""
	}
	return id.String()
}
