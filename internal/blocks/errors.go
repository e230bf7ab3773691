// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package blocks

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
)

var (
	// ErrCorruptBlock is returned when a stored block fails decryption or its
	// checksum does not match.
	ErrCorruptBlock = fmt.Errorf("%w: corrupt block", app.ErrCrypto)

	// ErrInvalidLength is returned for negative offsets and lengths, and for
	// truncation above the current size.
	ErrInvalidLength = fmt.Errorf("%w: invalid offset or length", app.ErrInvalidState)

	// ErrSnapshotMismatch is returned when a snapshot does not belong to the
	// file it is used with.
	ErrSnapshotMismatch = fmt.Errorf("%w: snapshot belongs to another file", app.ErrInvalidState)

	ErrInvalidBlockSize = errors.New("invalid block size")
)
