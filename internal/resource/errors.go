// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
)

var (
	// ErrNotFound is returned by Get and FindOne when no document matches.
	ErrNotFound = fmt.Errorf("%w: resource", app.ErrNotFound)

	// ErrDeleted is returned when a deleted resource is saved or deleted
	// again.
	ErrDeleted = fmt.Errorf("%w: resource was deleted", app.ErrInvalidState)

	// ErrEncoding is returned when a document body cannot be encoded or
	// decoded.
	ErrEncoding = errors.New("document encoding failed")
)
