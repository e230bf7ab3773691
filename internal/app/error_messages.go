// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the application-wide error taxonomy of the drive and
// the human-readable messages attached to each error kind.
//
// Every failure surfaced by the service layer is an [*Error] carrying one of
// the [Kind] values below. Lower layers return (possibly wrapped) sentinel
// errors; [KindOf] maps any error onto the taxonomy.
package app

const (
	// MsgCrypto is returned when a decryption, authentication tag or
	// checksum check fails.
	MsgCrypto = "cryptographic verification failed"

	// MsgAuthFailed is returned when no credential factor matches the
	// presented credential.
	MsgAuthFailed = "invalid credentials"

	// MsgAccessDenied is returned when no unlock path grants the requested
	// access level on a file.
	MsgAccessDenied = "access denied"

	// MsgNotFound is returned when a referenced document or stream does not
	// exist.
	MsgNotFound = "not found"

	// MsgConflict is returned when a name or login is already taken.
	MsgConflict = "already exists"

	// MsgInvalidState is returned when an operation is not allowed in the
	// current state (e.g. removing the last credential factor).
	MsgInvalidState = "operation not allowed in current state"

	// MsgCancelled is returned when the caller cancelled the request.
	MsgCancelled = "request cancelled"

	// MsgInternal is returned for store or infrastructure failures the caller
	// cannot resolve.
	MsgInternal = "internal error"
)
