// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks caller-supplied input before a service opens a
// transaction: logins, display names, credential material, file, content
// slot and group names.
//
// Validation is scoped by field. Passing field names to Validate checks only
// those fields; passing none checks the type's default set. Services report
// any failure as invalid data without touching the store.
package validators

import "context"

// Validator validates one value, optionally restricted to named fields.
// Unknown types fail with ErrUnsupportedType and unknown fields with
// ErrUnknownField.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
