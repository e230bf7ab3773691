// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package stream

import (
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
)

var (
	// ErrStreamNotFound is returned for unknown, closed and idle-expired
	// handles.
	ErrStreamNotFound = fmt.Errorf("%w: stream", app.ErrNotFound)

	// ErrCancelled answers requests whose context ended before they ran.
	ErrCancelled = fmt.Errorf("%w: stream request", app.ErrCancelled)

	// ErrReadOnly is returned for mutations on a stream opened for reading.
	ErrReadOnly = fmt.Errorf("%w: stream is read-only", app.ErrInvalidState)

	// ErrSeekOutOfRange is returned when seeking outside [0, length].
	ErrSeekOutOfRange = fmt.Errorf("%w: seek position out of range", app.ErrInvalidState)

	// ErrExtendNotAllowed is returned when SetLength asks for more than the
	// current length.
	ErrExtendNotAllowed = fmt.Errorf("%w: set length cannot extend", app.ErrInvalidState)
)
