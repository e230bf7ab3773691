// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SymmetricKeySize is the size of every AES key in bytes (AES-256).
	SymmetricKeySize = 32

	// DefaultRSABits is the default RSA modulus size.
	DefaultRSABits = 2048

	// DefaultIterations is the default PBKDF2 iteration count.
	DefaultIterations = 600_000

	// DefaultSaltSize is the default salt size in bytes.
	DefaultSaltSize = 16

	// sealHeaderSize is the length prefix of the wrapped key inside a Seal
	// envelope.
	sealHeaderSize = 2
)

// Params tunes the [KeyChain] returned by [NewKeyChain]. Zero fields fall
// back to the defaults.
type Params struct {
	RSABits    int
	Iterations int
	SaltSize   int
}

// keyChain is the private implementation of [KeyChain].
type keyChain struct {
	rsaBits    int
	iterations int
	saltSize   int
}

// NewKeyChain constructs a [KeyChain] with the given parameters.
func NewKeyChain(p Params) KeyChain {
	k := &keyChain{
		rsaBits:    p.RSABits,
		iterations: p.Iterations,
		saltSize:   p.SaltSize,
	}
	if k.rsaBits <= 0 {
		k.rsaBits = DefaultRSABits
	}
	if k.iterations <= 0 {
		k.iterations = DefaultIterations
	}
	if k.saltSize <= 0 {
		k.saltSize = DefaultSaltSize
	}
	return k
}

// DeriveKey implements [KeyChain] with PBKDF2-HMAC-SHA256.
func (k *keyChain) DeriveKey(secret string, salt []byte, iterations int) []byte {
	if iterations <= 0 {
		iterations = k.iterations
	}
	return pbkdf2.Key([]byte(secret), salt, iterations, SymmetricKeySize, sha256.New)
}

func (k *keyChain) Iterations() int {
	return k.iterations
}

// GenerateSalt implements [KeyChain].
func (k *keyChain) GenerateSalt() ([]byte, error) {
	return randomBytes(k.saltSize)
}

// GenerateSymmetricKey implements [KeyChain].
func (k *keyChain) GenerateSymmetricKey() ([]byte, error) {
	return randomBytes(SymmetricKeySize)
}

// EncryptSymmetric implements [KeyChain]. A random 12-byte nonce is
// prepended to the ciphertext: blob = nonce || ciphertext.
func (k *keyChain) EncryptSymmetric(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize(), gcm.NonceSize()+len(plaintext)+gcm.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptSymmetric implements [KeyChain].
func (k *keyChain) DecryptSymmetric(key, blob []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// EncryptAsymmetric implements [KeyChain].
func (k *keyChain) EncryptAsymmetric(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	if pub == nil {
		return nil, ErrInvalidKey
	}
	ciphertext, err := rsa.EncryptOAEP(sha512.New(), rand.Reader, pub, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return ciphertext, nil
}

// DecryptAsymmetric implements [KeyChain].
func (k *keyChain) DecryptAsymmetric(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	if priv == nil {
		return nil, ErrInvalidKey
	}
	plaintext, err := rsa.DecryptOAEP(sha512.New(), nil, priv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// Seal implements [KeyChain]. Envelope layout:
//
//	uint16 len(wrapped) || wrapped one-time key || nonce || ciphertext
func (k *keyChain) Seal(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	oneTime, err := k.GenerateSymmetricKey()
	if err != nil {
		return nil, err
	}

	wrapped, err := k.EncryptAsymmetric(pub, oneTime)
	if err != nil {
		return nil, err
	}

	payload, err := k.EncryptSymmetric(oneTime, plaintext)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, sealHeaderSize, sealHeaderSize+len(wrapped)+len(payload))
	binary.BigEndian.PutUint16(sealed, uint16(len(wrapped)))
	sealed = append(sealed, wrapped...)
	return append(sealed, payload...), nil
}

// Open implements [KeyChain].
func (k *keyChain) Open(priv *rsa.PrivateKey, sealed []byte) ([]byte, error) {
	if len(sealed) < sealHeaderSize {
		return nil, ErrCiphertextTooShort
	}
	n := int(binary.BigEndian.Uint16(sealed))
	if len(sealed) < sealHeaderSize+n {
		return nil, ErrCiphertextTooShort
	}

	oneTime, err := k.DecryptAsymmetric(priv, sealed[sealHeaderSize:sealHeaderSize+n])
	if err != nil {
		return nil, err
	}

	return k.DecryptSymmetric(oneTime, sealed[sealHeaderSize+n:])
}

// GenerateKeyPair implements [KeyChain].
func (k *keyChain) GenerateKeyPair() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, k.rsaBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	return priv, nil
}

// MarshalPublicKey encodes pub as PKIX DER.
func (k *keyChain) MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return der, nil
}

// ParsePublicKey decodes a PKIX DER RSA public key.
func (k *keyChain) ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", ErrInvalidKey)
	}
	return pub, nil
}

// MarshalPrivateKey encodes priv as PKCS#8 DER.
func (k *keyChain) MarshalPrivateKey(priv *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return der, nil
}

// ParsePrivateKey decodes a PKCS#8 DER RSA private key.
func (k *keyChain) ParsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", ErrInvalidKey)
	}
	return priv, nil
}

// Checksum implements [KeyChain].
func (k *keyChain) Checksum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return gcm, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	return b, nil
}
