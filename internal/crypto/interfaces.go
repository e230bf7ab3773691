// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "crypto/rsa"

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_mock.go -package=mock

// KeyChain holds every cryptographic primitive the drive's key-wrapping
// hierarchy is built from. It knows nothing about documents, users or the
// store: it only derives, generates, wraps and unwraps keys.
//
// Wrapping scheme:
//
//	secret key  = DeriveKey(password, salt, iterations)       PBKDF2-HMAC-SHA256
//	file key    = GenerateSymmetricKey()                      AES-256
//	child key   = EncryptSymmetric(parentKey, childKey)       AES-256-GCM
//	root key    = EncryptAsymmetric(ownerPublic, fileKey)     RSA-OAEP-SHA512
//	private key = Seal(publicKey, MarshalPrivateKey(priv))    RSA-OAEP + AES-GCM
//
// Every decryption failure is returned as an error matching app.ErrCrypto.
type KeyChain interface {
	// DeriveKey stretches secret into a 32-byte symmetric key. The result is
	// deterministic for equal inputs.
	DeriveKey(secret string, salt []byte, iterations int) []byte

	// Iterations is the configured default PBKDF2 iteration count used for
	// newly created credential factors.
	Iterations() int

	// GenerateSalt returns a fresh random salt.
	GenerateSalt() ([]byte, error)

	// GenerateSymmetricKey returns a fresh random 32-byte AES key.
	GenerateSymmetricKey() ([]byte, error)

	// EncryptSymmetric encrypts plaintext with AES-256-GCM under key and
	// returns nonce || ciphertext.
	EncryptSymmetric(key, plaintext []byte) ([]byte, error)

	// DecryptSymmetric reverses EncryptSymmetric. A wrong key, tampered blob
	// or blob shorter than the nonce fails.
	DecryptSymmetric(key, blob []byte) ([]byte, error)

	// EncryptAsymmetric encrypts a short plaintext (a symmetric key) with
	// RSA-OAEP-SHA512.
	EncryptAsymmetric(pub *rsa.PublicKey, plaintext []byte) ([]byte, error)

	// DecryptAsymmetric reverses EncryptAsymmetric.
	DecryptAsymmetric(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error)

	// Seal encrypts a plaintext of any length for pub: a one-time AES key is
	// wrapped with RSA-OAEP and the payload encrypted with AES-GCM.
	Seal(pub *rsa.PublicKey, plaintext []byte) ([]byte, error)

	// Open reverses Seal.
	Open(priv *rsa.PrivateKey, sealed []byte) ([]byte, error)

	// GenerateKeyPair returns a fresh RSA key pair of the configured size.
	GenerateKeyPair() (*rsa.PrivateKey, error)

	MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error)
	ParsePublicKey(der []byte) (*rsa.PublicKey, error)
	MarshalPrivateKey(priv *rsa.PrivateKey) ([]byte, error)
	ParsePrivateKey(der []byte) (*rsa.PrivateKey, error)

	// Checksum returns the SHA-256 digest of data.
	Checksum(data []byte) []byte
}
