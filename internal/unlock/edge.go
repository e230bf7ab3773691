// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package unlock

import (
	"crypto/rsa"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/crypto"
)

// EdgeKind names one kind of wrapping relation in the key graph.
type EdgeKind int

const (
	// EdgeCredentialToUser: a factor's derived key wraps the user private key.
	EdgeCredentialToUser EdgeKind = iota + 1
	// EdgeUserToRootFile: the owner's RSA key wraps a root file key.
	EdgeUserToRootFile
	// EdgeParentToChild: a folder key wraps each child file key.
	EdgeParentToChild
	// EdgeAdminToUser: the master key wraps every user private key (backdoor).
	EdgeAdminToUser
	// EdgeAdminToFile: the master key wraps every file key.
	EdgeAdminToFile
	// EdgeUserToFileAccess: a grantee user's RSA key wraps a shared file key.
	EdgeUserToFileAccess
	// EdgeGroupToFileAccess: a grantee group's RSA key wraps a shared file key.
	EdgeGroupToFileAccess
	// EdgeUserToGroup: a member's RSA key wraps the group private key.
	EdgeUserToGroup
	// EdgeUserToAdmin: an administrator's RSA key wraps the master private key.
	EdgeUserToAdmin
	// EdgePasswordToAdmin: the master password's derived key wraps the master
	// private key.
	EdgePasswordToAdmin
)

type edgeShape struct {
	// parentAsymmetric is set when the parent is an RSA key pair rather than
	// a symmetric key.
	parentAsymmetric bool
	// childAsymmetric is set when the wrapped child is an RSA private key
	// rather than a symmetric key.
	childAsymmetric bool
}

var edgeShapes = map[EdgeKind]edgeShape{
	EdgeCredentialToUser:  {parentAsymmetric: false, childAsymmetric: true},
	EdgeUserToRootFile:    {parentAsymmetric: true, childAsymmetric: false},
	EdgeParentToChild:     {parentAsymmetric: false, childAsymmetric: false},
	EdgeAdminToUser:       {parentAsymmetric: true, childAsymmetric: true},
	EdgeAdminToFile:       {parentAsymmetric: true, childAsymmetric: false},
	EdgeUserToFileAccess:  {parentAsymmetric: true, childAsymmetric: false},
	EdgeGroupToFileAccess: {parentAsymmetric: true, childAsymmetric: false},
	EdgeUserToGroup:       {parentAsymmetric: true, childAsymmetric: true},
	EdgeUserToAdmin:       {parentAsymmetric: true, childAsymmetric: true},
	EdgePasswordToAdmin:   {parentAsymmetric: false, childAsymmetric: true},
}

// String implements fmt.Stringer.
func (k EdgeKind) String() string {
	switch k {
	case EdgeCredentialToUser:
		return "credential->user"
	case EdgeUserToRootFile:
		return "user->root_file"
	case EdgeParentToChild:
		return "parent->child"
	case EdgeAdminToUser:
		return "admin->user"
	case EdgeAdminToFile:
		return "admin->file"
	case EdgeUserToFileAccess:
		return "user->file_access"
	case EdgeGroupToFileAccess:
		return "group->file_access"
	case EdgeUserToGroup:
		return "user->group"
	case EdgeUserToAdmin:
		return "user->admin"
	case EdgePasswordToAdmin:
		return "password->admin"
	default:
		return fmt.Sprintf("edge(%d)", int(k))
	}
}

// Key is decrypted or public key material on one side of an edge. Symmetric
// keys are held in Symmetric; RSA parents use Private for unwrapping and
// Public (or Private.PublicKey) for wrapping.
type Key struct {
	Symmetric []byte
	Private   *rsa.PrivateKey
	Public    *rsa.PublicKey
}

// SymmetricKey wraps an AES key.
func SymmetricKey(k []byte) Key {
	return Key{Symmetric: k}
}

// PrivateKey wraps an RSA private key.
func PrivateKey(k *rsa.PrivateKey) Key {
	return Key{Private: k}
}

// PublicKey wraps an RSA public key; such a Key can only wrap.
func PublicKey(k *rsa.PublicKey) Key {
	return Key{Public: k}
}

func (k Key) public() *rsa.PublicKey {
	if k.Public != nil {
		return k.Public
	}
	if k.Private != nil {
		return &k.Private.PublicKey
	}
	return nil
}

// Edge is one typed hop of the key graph bound to a [crypto.KeyChain].
type Edge struct {
	Kind EdgeKind
	keys crypto.KeyChain
}

// Wrap encrypts child under parent according to the edge kind.
func (e Edge) Wrap(parent, child Key) ([]byte, error) {
	shape, ok := edgeShapes[e.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEdge, e.Kind)
	}

	var plaintext []byte
	if shape.childAsymmetric {
		if child.Private == nil {
			return nil, fmt.Errorf("%w: %s needs a private child key", ErrMissingKey, e.Kind)
		}
		der, err := e.keys.MarshalPrivateKey(child.Private)
		if err != nil {
			return nil, err
		}
		plaintext = der
	} else {
		if len(child.Symmetric) == 0 {
			return nil, fmt.Errorf("%w: %s needs a symmetric child key", ErrMissingKey, e.Kind)
		}
		plaintext = child.Symmetric
	}

	if !shape.parentAsymmetric {
		if len(parent.Symmetric) == 0 {
			return nil, fmt.Errorf("%w: %s needs a symmetric parent key", ErrMissingKey, e.Kind)
		}
		return e.keys.EncryptSymmetric(parent.Symmetric, plaintext)
	}

	pub := parent.public()
	if pub == nil {
		return nil, fmt.Errorf("%w: %s needs a public parent key", ErrMissingKey, e.Kind)
	}
	if shape.childAsymmetric {
		// private keys exceed what OAEP can carry
		return e.keys.Seal(pub, plaintext)
	}
	return e.keys.EncryptAsymmetric(pub, plaintext)
}

// Unwrap decrypts wrapped with parent according to the edge kind.
func (e Edge) Unwrap(parent Key, wrapped []byte) (Key, error) {
	shape, ok := edgeShapes[e.Kind]
	if !ok {
		return Key{}, fmt.Errorf("%w: %s", ErrUnknownEdge, e.Kind)
	}

	var (
		plaintext []byte
		err       error
	)
	switch {
	case !shape.parentAsymmetric:
		if len(parent.Symmetric) == 0 {
			return Key{}, fmt.Errorf("%w: %s needs a symmetric parent key", ErrMissingKey, e.Kind)
		}
		plaintext, err = e.keys.DecryptSymmetric(parent.Symmetric, wrapped)
	case parent.Private == nil:
		return Key{}, fmt.Errorf("%w: %s needs a private parent key", ErrMissingKey, e.Kind)
	case shape.childAsymmetric:
		plaintext, err = e.keys.Open(parent.Private, wrapped)
	default:
		plaintext, err = e.keys.DecryptAsymmetric(parent.Private, wrapped)
	}
	if err != nil {
		return Key{}, fmt.Errorf("unwrapping %s: %w", e.Kind, err)
	}

	if !shape.childAsymmetric {
		return SymmetricKey(plaintext), nil
	}
	priv, err := e.keys.ParsePrivateKey(plaintext)
	if err != nil {
		return Key{}, fmt.Errorf("unwrapping %s: %w", e.Kind, err)
	}
	return PrivateKey(priv), nil
}
