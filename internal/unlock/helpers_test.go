// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package unlock

import (
	"context"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/MKhiriev/go-drive-keeper/internal/crypto"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/stretchr/testify/require"
)

var (
	testKeys = crypto.NewKeyChain(crypto.Params{Iterations: 1000})

	rsaOnce sync.Once
	rsaPool []*rsa.PrivateKey
)

// rsaKey returns one of a few pre-generated key pairs; generating RSA keys
// per test is slow.
func rsaKey(t *testing.T, i int) *rsa.PrivateKey {
	t.Helper()
	rsaOnce.Do(func() {
		for range 4 {
			k, err := testKeys.GenerateKeyPair()
			if err != nil {
				panic(err)
			}
			rsaPool = append(rsaPool, k)
		}
	})
	return rsaPool[i]
}

func publicDER(t *testing.T, k *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := testKeys.MarshalPublicKey(&k.PublicKey)
	require.NoError(t, err)
	return der
}

func symmetricKey(t *testing.T) []byte {
	t.Helper()
	k, err := testKeys.GenerateSymmetricKey()
	require.NoError(t, err)
	return k
}

func newManager(t *testing.T) *resource.Manager {
	t.Helper()
	m, err := resource.NewManager(store.NewMemoryStore())
	require.NoError(t, err)
	return m
}

// create persists data in its own transaction and returns the resource.
func create[T any, P resource.DocumentPtr[T]](t *testing.T, m *resource.Manager, data T) *resource.Resource[T] {
	t.Helper()
	var r *resource.Resource[T]
	err := m.Transact(context.Background(), func(ctx context.Context, tx *resource.Tx) error {
		var err error
		r, err = resource.New[T, P](ctx, tx, data)
		return err
	})
	require.NoError(t, err)
	return r
}
