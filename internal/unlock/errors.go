// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package unlock

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
)

var (
	// ErrWrongParent is returned when the document was not wrapped by the
	// given parent, e.g. a child file unlocked with a sibling folder key.
	ErrWrongParent = fmt.Errorf("%w: document is not wrapped by this parent", app.ErrCrypto)

	// ErrKeyMismatch is returned when an unwrapped private key does not match
	// the public key stored on its document.
	ErrKeyMismatch = fmt.Errorf("%w: unwrapped key does not match public key", app.ErrCrypto)

	// ErrMissingKey is returned when an edge is given a parent or child Key
	// without the material its kind needs.
	ErrMissingKey = fmt.Errorf("%w: key material missing", app.ErrCrypto)

	ErrUnknownEdge = errors.New("unknown unlock edge")
)
