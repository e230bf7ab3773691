// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User is an account of the drive. The public key is stored in the clear;
// the matching private key is never stored unwrapped. Each
// [UserAuthentication] holds a copy sealed under that factor's derived key
// and the [UserAdminBackdoor] holds one sealed under the admin master key.
type User struct {
	ID ID `json:"id"`

	// Login is the unique user login identifier.
	Login string `json:"login"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// PublicKey is the PKIX DER encoding of the user's RSA public key.
	PublicKey []byte `json:"public_key"`

	// RootFolderID and TrashFolderID reference the two root folders created
	// together with the account.
	RootFolderID  ID `json:"root_folder_id"`
	TrashFolderID ID `json:"trash_folder_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Collection() string { return CollectionUsers }
func (u *User) DocumentID() ID { return u.ID }
func (u *User) SetDocumentID(id ID) { u.ID = id }
func (u *User) IndexFields() map[string]string {
	return map[string]string{FieldLogin: u.Login}
}
