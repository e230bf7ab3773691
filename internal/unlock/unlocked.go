// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package unlock

import (
	"crypto/rsa"

	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// Credential is an authentication factor together with the symmetric key
// derived from its secret.
type Credential struct {
	Authentication *resource.Resource[models.UserAuthentication]
	Key            []byte
}

// User is a user document together with the user's RSA private key.
type User struct {
	Resource   *resource.Resource[models.User]
	PrivateKey *rsa.PrivateKey
}

// ID returns the user identifier.
func (u User) ID() models.ID {
	return u.Resource.ID()
}

// File is a file document together with its AES content key.
type File struct {
	Resource *resource.Resource[models.File]
	Key      []byte
}

// ID returns the file identifier.
func (f File) ID() models.ID {
	return f.Resource.ID()
}

// AdminKey is the unlocked master secret. Resource is nil when the key was
// injected directly.
type AdminKey struct {
	Resource   *resource.Resource[models.AdminKey]
	PrivateKey *rsa.PrivateKey
}

// Public returns the master public key.
func (a AdminKey) Public() *rsa.PublicKey {
	return &a.PrivateKey.PublicKey
}

// Group is a group document together with the group's RSA private key.
type Group struct {
	Resource   *resource.Resource[models.Group]
	PrivateKey *rsa.PrivateKey
}

// ID returns the group identifier.
func (g Group) ID() models.ID {
	return g.Resource.ID()
}

// FileAccess is a grant together with the file key it carries.
type FileAccess struct {
	Resource *resource.Resource[models.FileAccess]
	Key      []byte
}
