// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
)

var (
	ErrInvalidDataProvided = fmt.Errorf("%w: invalid data provided", app.ErrInvalidState)
	ErrWrongCredentials    = fmt.Errorf("%w: wrong credentials", app.ErrAuth)
	ErrTokenIsExpired      = fmt.Errorf("%w: session is expired", app.ErrAuth)

	ErrLoginTaken            = fmt.Errorf("%w: login is already taken", app.ErrConflict)
	ErrLastAuthentication    = fmt.Errorf("%w: the last authentication factor cannot be removed", app.ErrInvalidState)
	ErrForeignAuthentication = fmt.Errorf("%w: authentication factor belongs to another user", app.ErrAccessDenied)
	ErrAdminKeyMissing       = fmt.Errorf("%w: admin key is not initialised", app.ErrInvalidState)
	ErrAdminKeyExists        = fmt.Errorf("%w: admin key is already initialised", app.ErrConflict)
	ErrNotAdmin              = fmt.Errorf("%w: user is not an administrator", app.ErrAccessDenied)
	ErrAlreadyAdmin          = fmt.Errorf("%w: user is already an administrator", app.ErrConflict)
	ErrNameConflict          = fmt.Errorf("%w: name is already used in this folder", app.ErrConflict)
	ErrNotAFolder            = fmt.Errorf("%w: not a folder", app.ErrInvalidState)
	ErrIsAFolder             = fmt.Errorf("%w: folders have no content", app.ErrInvalidState)
	ErrRootFile              = fmt.Errorf("%w: operation is not allowed on a root folder", app.ErrInvalidState)
	ErrMoveIntoDescendant    = fmt.Errorf("%w: a folder cannot be moved into itself", app.ErrInvalidState)
	ErrCrossOwnerMove        = fmt.Errorf("%w: files cannot be moved between owners", app.ErrInvalidState)
	ErrContentMismatch       = fmt.Errorf("%w: content does not belong to the file", app.ErrInvalidState)
	ErrGrantMismatch         = fmt.Errorf("%w: grant does not belong to the file", app.ErrInvalidState)
	ErrNoSnapshot            = fmt.Errorf("%w: content has no snapshot yet", app.ErrNotFound)
	ErrAlreadyMember         = fmt.Errorf("%w: user is already a group member", app.ErrConflict)
	ErrNotGroupOwner         = fmt.Errorf("%w: only the group owner can add members", app.ErrAccessDenied)
	ErrResetPending          = fmt.Errorf("%w: a password reset is already pending", app.ErrConflict)
	ErrResetNotPending       = fmt.Errorf("%w: password reset request is already resolved", app.ErrInvalidState)
	ErrVersionIsNotSpecified = errors.New("application version is not specified")
)
