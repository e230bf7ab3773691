// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package unlock

import (
	"crypto/rsa"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-drive-keeper/internal/crypto"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// Unlocker provides typed unlock and wrap operations over the edges of the
// key graph.
type Unlocker struct {
	keys crypto.KeyChain
}

// NewUnlocker returns an Unlocker performing all cryptography through keys.
func NewUnlocker(keys crypto.KeyChain) *Unlocker {
	return &Unlocker{keys: keys}
}

// KeyChain returns the underlying primitives.
func (u *Unlocker) KeyChain() crypto.KeyChain {
	return u.keys
}

// Edge returns the edge of the given kind.
func (u *Unlocker) Edge(kind EdgeKind) Edge {
	return Edge{Kind: kind, keys: u.keys}
}

// DeriveCredential derives the factor key from secret. It does not verify
// the secret: a wrong one surfaces when the user is unlocked.
func (u *Unlocker) DeriveCredential(auth *resource.Resource[models.UserAuthentication], secret string) Credential {
	a := auth.Data()
	return Credential{
		Authentication: auth,
		Key:            u.keys.DeriveKey(secret, a.Salt, a.Iterations),
	}
}

// UnlockUser opens the user private key with a credential factor.
func (u *Unlocker) UnlockUser(cred Credential, user *resource.Resource[models.User]) (User, error) {
	a := cred.Authentication.Data()
	usr := user.Data()
	if a.UserID != usr.ID {
		return User{}, fmt.Errorf("%w: factor %s belongs to another user", ErrWrongParent, a.ID)
	}

	k, err := u.Edge(EdgeCredentialToUser).Unwrap(SymmetricKey(cred.Key), a.EncryptedPrivateKey)
	if err != nil {
		return User{}, err
	}
	if err = u.matchPublic(k.Private, usr.PublicKey); err != nil {
		return User{}, err
	}
	return User{Resource: user, PrivateKey: k.Private}, nil
}

// UnlockRootFile opens a root file key with its owner's private key.
func (u *Unlocker) UnlockRootFile(user User, file *resource.Resource[models.File]) (File, error) {
	f := file.Data()
	if !f.IsRoot() || f.OwnerUserID != user.ID() {
		return File{}, fmt.Errorf("%w: %s is not a root owned by %s", ErrWrongParent, f.ID, user.ID())
	}

	k, err := u.Edge(EdgeUserToRootFile).Unwrap(PrivateKey(user.PrivateKey), f.EncryptedKey)
	if err != nil {
		return File{}, err
	}
	return File{Resource: file, Key: k.Symmetric}, nil
}

// UnlockChildFile opens a child file key with its parent folder key.
func (u *Unlocker) UnlockChildFile(parent File, child *resource.Resource[models.File]) (File, error) {
	c := child.Data()
	if c.ParentID != parent.ID() {
		return File{}, fmt.Errorf("%w: %s is not a child of %s", ErrWrongParent, c.ID, parent.ID())
	}

	k, err := u.Edge(EdgeParentToChild).Unwrap(SymmetricKey(parent.Key), c.EncryptedKey)
	if err != nil {
		return File{}, err
	}
	return File{Resource: child, Key: k.Symmetric}, nil
}

// UnlockUserAsAdmin opens any user private key through the user's backdoor
// record.
func (u *Unlocker) UnlockUserAsAdmin(admin AdminKey, user *resource.Resource[models.User], backdoor *resource.Resource[models.UserAdminBackdoor]) (User, error) {
	usr := user.Data()
	b := backdoor.Data()
	if b.UserID != usr.ID {
		return User{}, fmt.Errorf("%w: backdoor %s belongs to another user", ErrWrongParent, b.ID)
	}

	k, err := u.Edge(EdgeAdminToUser).Unwrap(PrivateKey(admin.PrivateKey), b.EncryptedPrivateKey)
	if err != nil {
		return User{}, err
	}
	if err = u.matchPublic(k.Private, usr.PublicKey); err != nil {
		return User{}, err
	}
	return User{Resource: user, PrivateKey: k.Private}, nil
}

// UnlockFileAsAdmin opens any file key from its admin-wrapped copy.
func (u *Unlocker) UnlockFileAsAdmin(admin AdminKey, file *resource.Resource[models.File]) (File, error) {
	k, err := u.Edge(EdgeAdminToFile).Unwrap(PrivateKey(admin.PrivateKey), file.Data().AdminEncryptedKey)
	if err != nil {
		return File{}, err
	}
	return File{Resource: file, Key: k.Symmetric}, nil
}

// UnlockFileAccess opens a grant addressed to user, or a public grant.
func (u *Unlocker) UnlockFileAccess(user User, grant *resource.Resource[models.FileAccess]) (FileAccess, error) {
	g := grant.Data()
	if g.Public {
		return u.UnlockPublicFileAccess(grant)
	}
	if g.UserID != user.ID() {
		return FileAccess{}, fmt.Errorf("%w: grant %s is not addressed to %s", ErrWrongParent, g.ID, user.ID())
	}

	k, err := u.Edge(EdgeUserToFileAccess).Unwrap(PrivateKey(user.PrivateKey), g.EncryptedKey)
	if err != nil {
		return FileAccess{}, err
	}
	return FileAccess{Resource: grant, Key: k.Symmetric}, nil
}

// UnlockPublicFileAccess returns the clear key of an anyone-with-link grant.
func (u *Unlocker) UnlockPublicFileAccess(grant *resource.Resource[models.FileAccess]) (FileAccess, error) {
	g := grant.Data()
	if !g.Public {
		return FileAccess{}, fmt.Errorf("%w: grant %s is not public", ErrWrongParent, g.ID)
	}
	if len(g.EncryptedKey) != crypto.SymmetricKeySize {
		return FileAccess{}, fmt.Errorf("%w: public grant %s", ErrMissingKey, g.ID)
	}
	return FileAccess{Resource: grant, Key: slices.Clone(g.EncryptedKey)}, nil
}

// UnlockGroupFileAccess opens a grant addressed to group.
func (u *Unlocker) UnlockGroupFileAccess(group Group, grant *resource.Resource[models.FileAccess]) (FileAccess, error) {
	g := grant.Data()
	if g.GroupID != group.ID() {
		return FileAccess{}, fmt.Errorf("%w: grant %s is not addressed to group %s", ErrWrongParent, g.ID, group.ID())
	}

	k, err := u.Edge(EdgeGroupToFileAccess).Unwrap(PrivateKey(group.PrivateKey), g.EncryptedKey)
	if err != nil {
		return FileAccess{}, err
	}
	return FileAccess{Resource: grant, Key: k.Symmetric}, nil
}

// UnlockGroup opens the group private key through user's membership.
func (u *Unlocker) UnlockGroup(user User, group *resource.Resource[models.Group], membership *resource.Resource[models.GroupMembership]) (Group, error) {
	m := membership.Data()
	grp := group.Data()
	if m.UserID != user.ID() || m.GroupID != grp.ID {
		return Group{}, fmt.Errorf("%w: membership %s does not link %s to %s", ErrWrongParent, m.ID, user.ID(), grp.ID)
	}

	k, err := u.Edge(EdgeUserToGroup).Unwrap(PrivateKey(user.PrivateKey), m.EncryptedPrivateKey)
	if err != nil {
		return Group{}, err
	}
	if err = u.matchPublic(k.Private, grp.PublicKey); err != nil {
		return Group{}, err
	}
	return Group{Resource: group, PrivateKey: k.Private}, nil
}

// UnlockAdminAccess opens the master key through an administrator's
// AdminAccess record.
func (u *Unlocker) UnlockAdminAccess(user User, access *resource.Resource[models.AdminAccess], key *resource.Resource[models.AdminKey]) (AdminKey, error) {
	a := access.Data()
	if a.UserID != user.ID() {
		return AdminKey{}, fmt.Errorf("%w: admin access %s belongs to another user", ErrWrongParent, a.ID)
	}

	k, err := u.Edge(EdgeUserToAdmin).Unwrap(PrivateKey(user.PrivateKey), a.EncryptedKey)
	if err != nil {
		return AdminKey{}, err
	}
	if err = u.matchPublic(k.Private, key.Data().PublicKey); err != nil {
		return AdminKey{}, err
	}
	return AdminKey{Resource: key, PrivateKey: k.Private}, nil
}

// UnlockAdminKey opens the master key with the master password.
func (u *Unlocker) UnlockAdminKey(key *resource.Resource[models.AdminKey], password string) (AdminKey, error) {
	ak := key.Data()
	derived := u.keys.DeriveKey(password, ak.Salt, ak.Iterations)

	k, err := u.Edge(EdgePasswordToAdmin).Unwrap(SymmetricKey(derived), ak.EncryptedPrivateKey)
	if err != nil {
		return AdminKey{}, err
	}
	if err = u.matchPublic(k.Private, ak.PublicKey); err != nil {
		return AdminKey{}, err
	}
	return AdminKey{Resource: key, PrivateKey: k.Private}, nil
}

// FileFromAccess turns an unlocked grant into the unlocked file it targets.
func (u *Unlocker) FileFromAccess(grant FileAccess, file *resource.Resource[models.File]) (File, error) {
	if g := grant.Resource.Data(); g.FileID != file.ID() {
		return File{}, fmt.Errorf("%w: grant %s targets %s", ErrWrongParent, g.ID, g.FileID)
	}
	return File{Resource: file, Key: grant.Key}, nil
}

// WrapRootFile wraps a root file key for its owner.
func (u *Unlocker) WrapRootFile(owner *rsa.PublicKey, fileKey []byte) ([]byte, error) {
	return u.Edge(EdgeUserToRootFile).Wrap(PublicKey(owner), SymmetricKey(fileKey))
}

// WrapChildFile wraps a child file key under its parent folder key.
func (u *Unlocker) WrapChildFile(parent File, childKey []byte) ([]byte, error) {
	return u.Edge(EdgeParentToChild).Wrap(SymmetricKey(parent.Key), SymmetricKey(childKey))
}

// WrapForAdmin produces the admin-wrapped copy of a file key.
func (u *Unlocker) WrapForAdmin(admin *rsa.PublicKey, fileKey []byte) ([]byte, error) {
	return u.Edge(EdgeAdminToFile).Wrap(PublicKey(admin), SymmetricKey(fileKey))
}

// WrapFileAccess wraps a file key for a grantee user.
func (u *Unlocker) WrapFileAccess(grantee *rsa.PublicKey, fileKey []byte) ([]byte, error) {
	return u.Edge(EdgeUserToFileAccess).Wrap(PublicKey(grantee), SymmetricKey(fileKey))
}

// WrapGroupFileAccess wraps a file key for a grantee group.
func (u *Unlocker) WrapGroupFileAccess(group *rsa.PublicKey, fileKey []byte) ([]byte, error) {
	return u.Edge(EdgeGroupToFileAccess).Wrap(PublicKey(group), SymmetricKey(fileKey))
}

// WrapPublicFileAccess returns the key stored on an anyone-with-link grant,
// which is the file key itself.
func (u *Unlocker) WrapPublicFileAccess(fileKey []byte) []byte {
	return slices.Clone(fileKey)
}

// WrapBackdoor seals a user private key under the master public key.
func (u *Unlocker) WrapBackdoor(admin *rsa.PublicKey, user *rsa.PrivateKey) ([]byte, error) {
	return u.Edge(EdgeAdminToUser).Wrap(PublicKey(admin), PrivateKey(user))
}

// WrapGroupMembership seals a group private key for one member.
func (u *Unlocker) WrapGroupMembership(member *rsa.PublicKey, group Group) ([]byte, error) {
	return u.Edge(EdgeUserToGroup).Wrap(PublicKey(member), PrivateKey(group.PrivateKey))
}

// WrapAdminAccess seals the master private key for a new administrator.
func (u *Unlocker) WrapAdminAccess(admin *rsa.PublicKey, key AdminKey) ([]byte, error) {
	return u.Edge(EdgeUserToAdmin).Wrap(PublicKey(admin), PrivateKey(key.PrivateKey))
}

// WrapCredential encrypts a user private key under a factor key.
func (u *Unlocker) WrapCredential(factorKey []byte, user *rsa.PrivateKey) ([]byte, error) {
	return u.Edge(EdgeCredentialToUser).Wrap(SymmetricKey(factorKey), PrivateKey(user))
}

// WrapAdminKey encrypts the master private key under the master password's
// derived key.
func (u *Unlocker) WrapAdminKey(passwordKey []byte, key *rsa.PrivateKey) ([]byte, error) {
	return u.Edge(EdgePasswordToAdmin).Wrap(SymmetricKey(passwordKey), PrivateKey(key))
}

func (u *Unlocker) matchPublic(priv *rsa.PrivateKey, der []byte) error {
	pub, err := u.keys.ParsePublicKey(der)
	if err != nil {
		return err
	}
	if !priv.PublicKey.Equal(pub) {
		return ErrKeyMismatch
	}
	return nil
}
