// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// Session is an authenticated caller: the unlocked user and the factor used
// to unlock it.
type Session struct {
	User       unlock.User
	Credential unlock.Credential
}

// UserID returns the identifier of the authenticated user.
func (s *Session) UserID() models.ID {
	return s.User.ID()
}

// RegisterRequest describes a new account.
type RegisterRequest struct {
	Login    string
	Name     string
	Password string
}

// CreateFileRequest describes a new file or folder.
type CreateFileRequest struct {
	Name     string
	IsFolder bool
}

// GrantRequest describes an explicit grant. Exactly one of UserID and
// GroupID must be set.
type GrantRequest struct {
	UserID  models.ID
	GroupID models.ID
	Level   models.AccessLevel
}
