// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// AdminKey is the system master secret: an RSA key pair whose private half
// is sealed under a key derived from the master password. There is at most
// one AdminKey per deployment.
type AdminKey struct {
	ID ID `json:"id"`

	PublicKey []byte `json:"public_key"`

	Salt                []byte `json:"salt"`
	Iterations          int    `json:"iterations"`
	EncryptedPrivateKey []byte `json:"encrypted_private_key"`

	CreatedAt time.Time `json:"created_at"`
}

func (k *AdminKey) Collection() string { return CollectionAdminKeys }
func (k *AdminKey) DocumentID() ID { return k.ID }
func (k *AdminKey) SetDocumentID(id ID) { k.ID = id }
func (k *AdminKey) IndexFields() map[string]string { return map[string]string{} }

// AdminAccess makes a user an administrator: it holds the master private key
// sealed under that user's public key.
type AdminAccess struct {
	ID           ID        `json:"id"`
	UserID       ID        `json:"user_id"`
	EncryptedKey []byte    `json:"encrypted_key"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *AdminAccess) Collection() string { return CollectionAdminAccesses }
func (a *AdminAccess) DocumentID() ID { return a.ID }
func (a *AdminAccess) SetDocumentID(id ID) { a.ID = id }
func (a *AdminAccess) IndexFields() map[string]string {
	return map[string]string{FieldUserID: a.UserID.String()}
}

// UserAdminBackdoor holds a user's private key sealed under the master
// public key, so the holder of the master password can recover any account.
type UserAdminBackdoor struct {
	ID                  ID     `json:"id"`
	UserID              ID     `json:"user_id"`
	EncryptedPrivateKey []byte `json:"encrypted_private_key"`
}

func (b *UserAdminBackdoor) Collection() string { return CollectionUserAdminBackdoors }
func (b *UserAdminBackdoor) DocumentID() ID { return b.ID }
func (b *UserAdminBackdoor) SetDocumentID(id ID) { b.ID = id }
func (b *UserAdminBackdoor) IndexFields() map[string]string {
	return map[string]string{FieldUserID: b.UserID.String()}
}
