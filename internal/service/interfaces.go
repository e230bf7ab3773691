// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-drive-keeper/internal/access"
	"github.com/MKhiriev/go-drive-keeper/internal/stream"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// AuthService manages accounts and their authentication factors.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (models.User, error)
	Authenticate(ctx context.Context, cred models.Credential) (*Session, error)
	IssueSessionToken(ctx context.Context, session *Session) (models.SessionToken, error)

	AddPasswordAuthentication(ctx context.Context, session *Session, password string) (models.UserAuthentication, error)
	AddFederatedAuthentication(ctx context.Context, session *Session, provider, subject, secret string) (models.UserAuthentication, error)
	RemoveAuthentication(ctx context.Context, session *Session, authenticationID models.ID) error

	// CleanupExpiredSessions deletes expired session factors and returns how
	// many were removed.
	CleanupExpiredSessions(ctx context.Context) (int, error)
}

// DriveService operates on the file tree. Every operation except the two
// Authorize calls takes a result of a previous authorization and re-checks
// the level it needs.
type DriveService interface {
	Authorize(ctx context.Context, session *Session, fileID models.ID, min models.AccessLevel) (*access.Result, error)
	AuthorizeLink(ctx context.Context, accessID, fileID models.ID, min models.AccessLevel) (*access.Result, error)

	CreateFile(ctx context.Context, parent *access.Result, req CreateFileRequest) (unlock.File, error)
	CreateFolder(ctx context.Context, parent *access.Result, name string) (unlock.File, error)
	MoveFile(ctx context.Context, file, newParent *access.Result) error
	RenameFile(ctx context.Context, file *access.Result, name string) error
	StarFile(ctx context.Context, file *access.Result, starred bool) error
	ListChildren(ctx context.Context, folder *access.Result) ([]models.File, error)
	Delete(ctx context.Context, file *access.Result) error

	CreateFileAccess(ctx context.Context, file *access.Result, req GrantRequest) (models.FileAccess, error)
	CreatePublicFileAccess(ctx context.Context, file *access.Result, level models.AccessLevel) (models.FileAccess, error)
	RevokeFileAccess(ctx context.Context, file *access.Result, accessID models.ID) error

	CreateFileContent(ctx context.Context, file *access.Result, name string) (models.FileContent, error)
	CreateFileSnapshot(ctx context.Context, file *access.Result, contentID, baseSnapshotID models.ID) (models.FileSnapshot, error)
}

// StreamService opens and drives byte streams over file snapshots.
type StreamService interface {
	OpenStream(ctx context.Context, file *access.Result, contentID, snapshotID models.ID, forWriting bool) (stream.ID, error)

	Read(ctx context.Context, id stream.ID, length int64) ([]byte, error)
	Write(ctx context.Context, id stream.ID, data []byte) error
	Seek(ctx context.Context, id stream.ID, position int64) error
	Length(ctx context.Context, id stream.ID) (int64, error)
	SetLength(ctx context.Context, id stream.ID, length int64) error
	Close(ctx context.Context, id stream.ID) error
}

// AdminService manages the admin master key and administrator rights.
type AdminService interface {
	InitAdminKey(ctx context.Context, masterPassword string) (unlock.AdminKey, error)
	UnlockAdminKey(ctx context.Context, masterPassword string) (unlock.AdminKey, error)
	AdminFromSession(ctx context.Context, session *Session) (unlock.AdminKey, error)
	GrantAdmin(ctx context.Context, admin unlock.AdminKey, userID models.ID) (models.AdminAccess, error)
	RecoverUserKey(ctx context.Context, admin unlock.AdminKey, userID models.ID) (unlock.User, error)
}

// GroupService manages user groups.
type GroupService interface {
	CreateGroup(ctx context.Context, session *Session, name string) (models.Group, error)
	AddGroupMember(ctx context.Context, session *Session, groupID, userID models.ID) (models.GroupMembership, error)
}

// PasswordResetService handles administrator-approved password resets.
type PasswordResetService interface {
	RequestPasswordReset(ctx context.Context, login string) (models.PasswordResetRequest, error)
	ApprovePasswordReset(ctx context.Context, session *Session, requestID models.ID, newPassword string) error
	RejectPasswordReset(ctx context.Context, session *Session, requestID models.ID) error
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}
