// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package access

import (
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
)

var (
	// ErrAccessDenied is returned when no unlock path grants the requested
	// level.
	ErrAccessDenied = fmt.Errorf("%w: no access path to file", app.ErrAccessDenied)

	// ErrNotPublic is returned by AuthorizeLink for grants that are not
	// anyone-with-link grants.
	ErrNotPublic = fmt.Errorf("%w: grant is not public", app.ErrAccessDenied)

	// ErrCycle is returned when walking parents revisits a file.
	ErrCycle = fmt.Errorf("%w: file tree contains a cycle", app.ErrInvalidState)
)
