// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package access

import (
	"context"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/MKhiriev/go-drive-keeper/internal/crypto"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
	"github.com/stretchr/testify/require"
)

var (
	testKeys = crypto.NewKeyChain(crypto.Params{Iterations: 1000})

	rsaOnce sync.Once
	rsaPool []*rsa.PrivateKey
)

func rsaKey(i int) *rsa.PrivateKey {
	rsaOnce.Do(func() {
		for range 5 {
			k, err := testKeys.GenerateKeyPair()
			if err != nil {
				panic(err)
			}
			rsaPool = append(rsaPool, k)
		}
	})
	return rsaPool[i]
}

// world is a small drive populated directly through the unlock primitives.
type world struct {
	t     *testing.T
	m     *resource.Manager
	u     *unlock.Unlocker
	r     *Resolver
	admin unlock.AdminKey
}

func newWorld(t *testing.T) *world {
	t.Helper()
	m, err := resource.NewManager(store.NewMemoryStore())
	require.NoError(t, err)
	u := unlock.NewUnlocker(testKeys)

	w := &world{t: t, m: m, u: u, r: NewResolver(u)}

	master := rsaKey(4)
	der, err := testKeys.MarshalPublicKey(&master.PublicKey)
	require.NoError(t, err)
	salt, err := testKeys.GenerateSalt()
	require.NoError(t, err)
	sealed, err := u.WrapAdminKey(testKeys.DeriveKey("master", salt, 1000), master)
	require.NoError(t, err)
	keyDoc := create(w, models.AdminKey{PublicKey: der, Salt: salt, Iterations: 1000, EncryptedPrivateKey: sealed})
	w.admin = unlock.AdminKey{Resource: keyDoc, PrivateKey: master}
	return w
}

func create[T any, P resource.DocumentPtr[T]](w *world, data T) *resource.Resource[T] {
	w.t.Helper()
	var r *resource.Resource[T]
	err := w.m.Transact(context.Background(), func(ctx context.Context, tx *resource.Tx) error {
		var err error
		r, err = resource.New[T, P](ctx, tx, data)
		return err
	})
	require.NoError(w.t, err)
	return r
}

func (w *world) user(login string, key int) unlock.User {
	w.t.Helper()
	priv := rsaKey(key)
	der, err := testKeys.MarshalPublicKey(&priv.PublicKey)
	require.NoError(w.t, err)
	res := create(w, models.User{Login: login, PublicKey: der})
	return unlock.User{Resource: res, PrivateKey: priv}
}

func (w *world) adminOf(user unlock.User) {
	w.t.Helper()
	wrapped, err := w.u.WrapAdminAccess(&user.PrivateKey.PublicKey, w.admin)
	require.NoError(w.t, err)
	create(w, models.AdminAccess{UserID: user.ID(), EncryptedKey: wrapped})
}

func (w *world) root(owner unlock.User, name string) unlock.File {
	w.t.Helper()
	key, err := testKeys.GenerateSymmetricKey()
	require.NoError(w.t, err)
	wrapped, err := w.u.WrapRootFile(&owner.PrivateKey.PublicKey, key)
	require.NoError(w.t, err)
	adminCopy, err := w.u.WrapForAdmin(w.admin.Public(), key)
	require.NoError(w.t, err)

	res := create(w, models.File{Name: name, IsFolder: true, OwnerUserID: owner.ID(), EncryptedKey: wrapped, AdminEncryptedKey: adminCopy})
	return unlock.File{Resource: res, Key: key}
}

func (w *world) child(parent unlock.File, name string, folder bool) unlock.File {
	w.t.Helper()
	key, err := testKeys.GenerateSymmetricKey()
	require.NoError(w.t, err)
	wrapped, err := w.u.WrapChildFile(parent, key)
	require.NoError(w.t, err)
	adminCopy, err := w.u.WrapForAdmin(w.admin.Public(), key)
	require.NoError(w.t, err)

	p := parent.Resource.Data()
	res := create(w, models.File{Name: name, IsFolder: folder, ParentID: p.ID, OwnerUserID: p.OwnerUserID, EncryptedKey: wrapped, AdminEncryptedKey: adminCopy})
	return unlock.File{Resource: res, Key: key}
}

func (w *world) grant(file unlock.File, to unlock.User, level models.AccessLevel) *resource.Resource[models.FileAccess] {
	w.t.Helper()
	wrapped, err := w.u.WrapFileAccess(&to.PrivateKey.PublicKey, file.Key)
	require.NoError(w.t, err)
	return create(w, models.FileAccess{FileID: file.ID(), UserID: to.ID(), Level: level, EncryptedKey: wrapped})
}

func (w *world) publicGrant(file unlock.File, level models.AccessLevel) *resource.Resource[models.FileAccess] {
	w.t.Helper()
	return create(w, models.FileAccess{FileID: file.ID(), Public: true, Level: level, EncryptedKey: w.u.WrapPublicFileAccess(file.Key)})
}

func (w *world) group(owner unlock.User, name string, key int, members ...unlock.User) unlock.Group {
	w.t.Helper()
	priv := rsaKey(key)
	der, err := testKeys.MarshalPublicKey(&priv.PublicKey)
	require.NoError(w.t, err)
	g := unlock.Group{Resource: create(w, models.Group{Name: name, OwnerUserID: owner.ID(), PublicKey: der}), PrivateKey: priv}

	for _, member := range members {
		sealed, err := w.u.WrapGroupMembership(&member.PrivateKey.PublicKey, g)
		require.NoError(w.t, err)
		create(w, models.GroupMembership{GroupID: g.ID(), UserID: member.ID(), EncryptedPrivateKey: sealed})
	}
	return g
}

func (w *world) groupGrant(file unlock.File, to unlock.Group, level models.AccessLevel) *resource.Resource[models.FileAccess] {
	w.t.Helper()
	wrapped, err := w.u.WrapGroupFileAccess(&to.PrivateKey.PublicKey, file.Key)
	require.NoError(w.t, err)
	return create(w, models.FileAccess{FileID: file.ID(), GroupID: to.ID(), Level: level, EncryptedKey: wrapped})
}

// find resolves in a fresh scope and transaction.
func (w *world) find(user unlock.User, file unlock.File, min models.AccessLevel) (*Result, error) {
	w.t.Helper()
	var (
		res    *Result
		resErr error
	)
	err := w.m.Transact(context.Background(), func(ctx context.Context, tx *resource.Tx) error {
		res, resErr = w.r.NewScope(user, nil).FindAccess(ctx, tx, file.ID(), min)
		return nil
	})
	require.NoError(w.t, err)
	return res, resErr
}
