// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an unknown driver or an out-of-range block size).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, missing session sign key).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidStreamConfigs indicates invalid stream settings.
	ErrInvalidStreamConfigs = errors.New("invalid stream configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero cleanup interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
