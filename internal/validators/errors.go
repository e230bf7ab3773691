// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidLogin    = errors.New("invalid login")
	ErrInvalidName     = errors.New("invalid name")
	ErrEmptySecret     = errors.New("secret is required")
	ErrSecretTooLong   = errors.New("secret is too long")
	ErrEmptyProvider   = errors.New("provider is required")
	ErrEmptySubject    = errors.New("subject is required")
	ErrEmptyToken      = errors.New("token is required")
	ErrInvalidKind     = errors.New("invalid credential kind")
	ErrInvalidFileName = errors.New("invalid file name")
)
