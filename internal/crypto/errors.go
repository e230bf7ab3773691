// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
)

var (
	// ErrCiphertextTooShort is returned when a blob is shorter than its
	// nonce or envelope header.
	ErrCiphertextTooShort = fmt.Errorf("%w: ciphertext too short", app.ErrCrypto)

	// ErrDecryptionFailed is returned when authenticated decryption fails:
	// wrong key or tampered ciphertext.
	ErrDecryptionFailed = fmt.Errorf("%w: decryption failed", app.ErrCrypto)

	// ErrInvalidKey is returned when key material cannot be used or parsed.
	ErrInvalidKey = fmt.Errorf("%w: invalid key", app.ErrCrypto)

	// ErrRandomSource is returned when the OS CSPRNG cannot be read.
	ErrRandomSource = fmt.Errorf("%w: random source failure", app.ErrCrypto)
)
