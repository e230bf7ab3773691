// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/access"
	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// driveService is the concrete implementation of DriveService.
type driveService struct {
	*Core

	logger *logger.Logger
}

func NewDriveService(core *Core, logger *logger.Logger) DriveService {
	return &driveService{Core: core, logger: logger}
}

// Authorize resolves the session user's access to fileID. The result keeps
// the unlocked file key and can be passed to the other operations.
func (d *driveService) Authorize(ctx context.Context, session *Session, fileID models.ID, min models.AccessLevel) (*access.Result, error) {
	log := logger.FromContext(ctx)

	var result *access.Result
	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		var err error
		result, err = d.resolver.NewScope(session.User, d.injectedAdmin()).FindAccess(ctx, tx, fileID, min)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*driveService.Authorize").
			Stringer("user", session.UserID()).
			Stringer("file", fileID).
			Stringer("level", min).
			Msg("authorization failed")
		return nil, app.Wrap(err)
	}
	return result, nil
}

// AuthorizeLink resolves access to fileID through a public grant.
func (d *driveService) AuthorizeLink(ctx context.Context, accessID, fileID models.ID, min models.AccessLevel) (*access.Result, error) {
	log := logger.FromContext(ctx)

	var result *access.Result
	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		var err error
		result, err = d.resolver.AuthorizeLink(ctx, tx, accessID, fileID, min)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*driveService.AuthorizeLink").Stringer("access", accessID).Stringer("file", fileID).Msg("link authorization failed")
		return nil, app.Wrap(err)
	}
	return result, nil
}

// CreateFile creates a file or folder in the folder parent. Files get their
// main content slot.
func (d *driveService) CreateFile(ctx context.Context, parent *access.Result, req CreateFileRequest) (unlock.File, error) {
	log := logger.FromContext(ctx)

	if err := d.validate(ctx, models.File{Name: req.Name}); err != nil {
		return unlock.File{}, app.Wrap(err)
	}
	if err := requireLevel(parent, models.AccessReadWrite); err != nil {
		return unlock.File{}, app.Wrap(err)
	}

	var created unlock.File
	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		parentRes, err := resource.Get[models.File](ctx, tx, parent.File.ID())
		if err != nil {
			return err
		}
		p := parentRes.Data()
		if !p.IsFolder {
			return ErrNotAFolder
		}
		if err = d.checkName(ctx, tx, p.ID, req.Name, models.NilID); err != nil {
			return err
		}

		key, err := d.keys.GenerateSymmetricKey()
		if err != nil {
			return err
		}
		encrypted, err := d.unlocker.WrapChildFile(parent.File, key)
		if err != nil {
			return err
		}
		adminPub, err := d.adminPublicKey(ctx, tx)
		if err != nil {
			return err
		}
		adminEncrypted, err := d.unlocker.WrapForAdmin(adminPub, key)
		if err != nil {
			return err
		}

		now := d.now()
		fileRes, err := resource.New(ctx, tx, models.File{
			Name:              req.Name,
			ParentID:          p.ID,
			OwnerUserID:       p.OwnerUserID,
			IsFolder:          req.IsFolder,
			EncryptedKey:      encrypted,
			AdminEncryptedKey: adminEncrypted,
			CreatedAt:         now,
			ModifiedAt:        now,
		})
		if err != nil {
			return err
		}

		if !req.IsFolder {
			if _, err = resource.New(ctx, tx, models.FileContent{
				FileID:    fileRes.ID(),
				Name:      models.MainContentName,
				IsMain:    true,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}

		created = unlock.File{Resource: fileRes, Key: key}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*driveService.CreateFile").Stringer("parent", parent.File.ID()).Str("name", req.Name).Msg("error creating file")
		return unlock.File{}, app.Wrap(err)
	}
	return created, nil
}

func (d *driveService) CreateFolder(ctx context.Context, parent *access.Result, name string) (unlock.File, error) {
	return d.CreateFile(ctx, parent, CreateFileRequest{Name: name, IsFolder: true})
}

// MoveFile moves file into newParent and re-wraps its key under the new
// parent's key. Both must belong to the same owner's tree.
func (d *driveService) MoveFile(ctx context.Context, file, newParent *access.Result) error {
	log := logger.FromContext(ctx)

	if err := requireLevel(file, models.AccessManage); err != nil {
		return app.Wrap(err)
	}
	if err := requireLevel(newParent, models.AccessReadWrite); err != nil {
		return app.Wrap(err)
	}

	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		fileRes, err := resource.Get[models.File](ctx, tx, file.File.ID())
		if err != nil {
			return err
		}
		parentRes, err := resource.Get[models.File](ctx, tx, newParent.File.ID())
		if err != nil {
			return err
		}
		f, p := fileRes.Data(), parentRes.Data()

		switch {
		case f.IsRoot():
			return ErrRootFile
		case !p.IsFolder:
			return ErrNotAFolder
		case f.OwnerUserID != p.OwnerUserID:
			return ErrCrossOwnerMove
		case f.ParentID == p.ID:
			return nil
		}

		if err = d.checkNotDescendant(ctx, tx, f.ID, p); err != nil {
			return err
		}
		if err = d.checkName(ctx, tx, p.ID, f.Name, f.ID); err != nil {
			return err
		}

		encrypted, err := d.unlocker.WrapChildFile(newParent.File, file.File.Key)
		if err != nil {
			return err
		}
		return fileRes.Modify(ctx, tx, func(m *models.File) {
			m.ParentID = p.ID
			m.EncryptedKey = encrypted
			m.ModifiedAt = d.now()
		})
	})
	if err != nil {
		log.Err(err).Str("func", "*driveService.MoveFile").Stringer("file", file.File.ID()).Stringer("parent", newParent.File.ID()).Msg("error moving file")
		return app.Wrap(err)
	}
	return nil
}

// checkNotDescendant walks up from folder and fails when it meets fileID.
func (d *driveService) checkNotDescendant(ctx context.Context, tx *resource.Tx, fileID models.ID, folder models.File) error {
	seen := make(map[models.ID]bool)
	for current := folder; ; {
		if current.ID == fileID {
			return ErrMoveIntoDescendant
		}
		if current.IsRoot() {
			return nil
		}
		if seen[current.ID] {
			return access.ErrCycle
		}
		seen[current.ID] = true

		next, err := resource.Get[models.File](ctx, tx, current.ParentID)
		if err != nil {
			return err
		}
		current = next.Data()
	}
}

// checkName fails with ErrNameConflict when a child of parentID other than
// self is called name.
func (d *driveService) checkName(ctx context.Context, tx *resource.Tx, parentID models.ID, name string, self models.ID) error {
	for sibling, err := range resource.Query[models.File](ctx, tx, store.Filter{
		models.FieldParentID: parentID.String(),
		models.FieldName:     name,
	}) {
		if err != nil {
			return err
		}
		if sibling.ID() != self {
			return fmt.Errorf("%w: %q", ErrNameConflict, name)
		}
	}
	return nil
}

func (d *driveService) RenameFile(ctx context.Context, file *access.Result, name string) error {
	log := logger.FromContext(ctx)

	if err := d.validate(ctx, models.File{Name: name}); err != nil {
		return app.Wrap(err)
	}
	if err := requireLevel(file, models.AccessReadWrite); err != nil {
		return app.Wrap(err)
	}

	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		fileRes, err := resource.Get[models.File](ctx, tx, file.File.ID())
		if err != nil {
			return err
		}
		f := fileRes.Data()
		if f.IsRoot() {
			return ErrRootFile
		}
		if err = d.checkName(ctx, tx, f.ParentID, name, f.ID); err != nil {
			return err
		}
		return fileRes.Modify(ctx, tx, func(m *models.File) {
			m.Name = name
			m.ModifiedAt = d.now()
		})
	})
	if err != nil {
		log.Err(err).Str("func", "*driveService.RenameFile").Stringer("file", file.File.ID()).Msg("error renaming file")
		return app.Wrap(err)
	}
	return nil
}

func (d *driveService) StarFile(ctx context.Context, file *access.Result, starred bool) error {
	if err := requireLevel(file, models.AccessRead); err != nil {
		return app.Wrap(err)
	}

	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		fileRes, err := resource.Get[models.File](ctx, tx, file.File.ID())
		if err != nil {
			return err
		}
		return fileRes.Modify(ctx, tx, func(m *models.File) { m.Starred = starred })
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*driveService.StarFile").Stringer("file", file.File.ID()).Msg("error starring file")
		return app.Wrap(err)
	}
	return nil
}

// ListChildren returns the children of folder ordered by identifier.
func (d *driveService) ListChildren(ctx context.Context, folder *access.Result) ([]models.File, error) {
	if err := requireLevel(folder, models.AccessRead); err != nil {
		return nil, app.Wrap(err)
	}

	var children []models.File
	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		children = nil
		folderRes, err := resource.Get[models.File](ctx, tx, folder.File.ID())
		if err != nil {
			return err
		}
		if f := folderRes.Data(); !f.IsFolder {
			return ErrNotAFolder
		}

		for child, err := range resource.Query[models.File](ctx, tx, store.Filter{models.FieldParentID: folder.File.ID().String()}) {
			if err != nil {
				return err
			}
			children = append(children, child.Data())
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*driveService.ListChildren").Stringer("folder", folder.File.ID()).Msg("error listing children")
		return nil, app.Wrap(err)
	}
	return children, nil
}

// Delete removes file with its whole subtree, contents, snapshots, blocks
// and grants. Root folders cannot be deleted.
func (d *driveService) Delete(ctx context.Context, file *access.Result) error {
	log := logger.FromContext(ctx)

	if err := requireLevel(file, models.AccessManage); err != nil {
		return app.Wrap(err)
	}

	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		fileRes, err := resource.Get[models.File](ctx, tx, file.File.ID())
		if err != nil {
			return err
		}
		if f := fileRes.Data(); f.IsRoot() {
			return ErrRootFile
		}
		return d.deleteTree(ctx, tx, fileRes)
	})
	if err != nil {
		log.Err(err).Str("func", "*driveService.Delete").Stringer("file", file.File.ID()).Msg("error deleting file")
		return app.Wrap(err)
	}
	return nil
}

func (d *driveService) deleteTree(ctx context.Context, tx *resource.Tx, fileRes *resource.Resource[models.File]) error {
	byFile := store.Filter{models.FieldFileID: fileRes.ID().String()}

	children, err := resource.All[models.File](ctx, tx, store.Filter{models.FieldParentID: fileRes.ID().String()})
	if err != nil {
		return err
	}
	for _, child := range children {
		if err = d.deleteTree(ctx, tx, child); err != nil {
			return err
		}
	}

	contents, err := resource.All[models.FileContent](ctx, tx, byFile)
	if err != nil {
		return err
	}
	for _, content := range contents {
		snapshots, err := resource.All[models.FileSnapshot](ctx, tx, store.Filter{models.FieldContentID: content.ID().String()})
		if err != nil {
			return err
		}
		for _, snapshot := range snapshots {
			if err = d.blocks.DeleteSnapshot(ctx, tx, snapshot); err != nil {
				return err
			}
		}
		if err = resource.Delete(ctx, tx, content); err != nil {
			return err
		}
	}

	grants, err := resource.All[models.FileAccess](ctx, tx, byFile)
	if err != nil {
		return err
	}
	for _, grant := range grants {
		if err = resource.Delete(ctx, tx, grant); err != nil {
			return err
		}
	}

	return resource.Delete(ctx, tx, fileRes)
}

// CreateFileAccess grants a user or a group access to file. The granted
// level cannot exceed the caller's own.
func (d *driveService) CreateFileAccess(ctx context.Context, file *access.Result, req GrantRequest) (models.FileAccess, error) {
	log := logger.FromContext(ctx)

	if req.UserID.IsZero() == req.GroupID.IsZero() {
		return models.FileAccess{}, app.Wrap(fmt.Errorf("%w: exactly one grantee is required", ErrInvalidDataProvided))
	}
	if err := checkGrantLevel(file, req.Level); err != nil {
		return models.FileAccess{}, app.Wrap(err)
	}

	var created models.FileAccess
	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		grant := models.FileAccess{
			FileID:          file.File.ID(),
			UserID:          req.UserID,
			GroupID:         req.GroupID,
			Level:           req.Level,
			GrantedByUserID: grantor(file),
			CreatedAt:       d.now(),
		}

		var publicDER []byte
		if !req.UserID.IsZero() {
			userRes, err := resource.Get[models.User](ctx, tx, req.UserID)
			if err != nil {
				return err
			}
			publicDER = userRes.Data().PublicKey
		} else {
			groupRes, err := resource.Get[models.Group](ctx, tx, req.GroupID)
			if err != nil {
				return err
			}
			publicDER = groupRes.Data().PublicKey
		}

		pub, err := d.keys.ParsePublicKey(publicDER)
		if err != nil {
			return err
		}
		if !req.UserID.IsZero() {
			grant.EncryptedKey, err = d.unlocker.WrapFileAccess(pub, file.File.Key)
		} else {
			grant.EncryptedKey, err = d.unlocker.WrapGroupFileAccess(pub, file.File.Key)
		}
		if err != nil {
			return err
		}

		res, err := resource.New(ctx, tx, grant)
		if err != nil {
			return err
		}
		created = res.Data()
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*driveService.CreateFileAccess").Stringer("file", file.File.ID()).Msg("error granting access")
		return models.FileAccess{}, app.Wrap(err)
	}
	return created, nil
}

// CreatePublicFileAccess creates an anyone-with-link grant. The file key is
// stored in the clear on the grant.
func (d *driveService) CreatePublicFileAccess(ctx context.Context, file *access.Result, level models.AccessLevel) (models.FileAccess, error) {
	if err := checkGrantLevel(file, level); err != nil {
		return models.FileAccess{}, app.Wrap(err)
	}

	var created models.FileAccess
	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		res, err := resource.New(ctx, tx, models.FileAccess{
			FileID:          file.File.ID(),
			Public:          true,
			Level:           level,
			EncryptedKey:    d.unlocker.WrapPublicFileAccess(file.File.Key),
			GrantedByUserID: grantor(file),
			CreatedAt:       d.now(),
		})
		if err != nil {
			return err
		}
		created = res.Data()
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*driveService.CreatePublicFileAccess").Stringer("file", file.File.ID()).Msg("error creating link")
		return models.FileAccess{}, app.Wrap(err)
	}
	return created, nil
}

func (d *driveService) RevokeFileAccess(ctx context.Context, file *access.Result, accessID models.ID) error {
	if err := requireLevel(file, models.AccessManage); err != nil {
		return app.Wrap(err)
	}

	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		grant, err := resource.Get[models.FileAccess](ctx, tx, accessID)
		if err != nil {
			return err
		}
		if grant.Data().FileID != file.File.ID() {
			return ErrGrantMismatch
		}
		return resource.Delete(ctx, tx, grant)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*driveService.RevokeFileAccess").Stringer("access", accessID).Msg("error revoking access")
		return app.Wrap(err)
	}
	return nil
}

// CreateFileContent adds a named content slot to a file.
func (d *driveService) CreateFileContent(ctx context.Context, file *access.Result, name string) (models.FileContent, error) {
	if err := d.validate(ctx, models.FileContent{Name: name}); err != nil {
		return models.FileContent{}, app.Wrap(err)
	}
	if err := requireLevel(file, models.AccessReadWrite); err != nil {
		return models.FileContent{}, app.Wrap(err)
	}

	var created models.FileContent
	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		fileRes, err := resource.Get[models.File](ctx, tx, file.File.ID())
		if err != nil {
			return err
		}
		if f := fileRes.Data(); f.IsFolder {
			return ErrIsAFolder
		}

		_, err = resource.FindOne[models.FileContent](ctx, tx, store.Filter{
			models.FieldFileID: fileRes.ID().String(),
			models.FieldName:   name,
		})
		switch {
		case err == nil:
			return fmt.Errorf("%w: content %q", ErrNameConflict, name)
		case !errors.Is(err, resource.ErrNotFound):
			return err
		}

		res, err := resource.New(ctx, tx, models.FileContent{FileID: fileRes.ID(), Name: name, CreatedAt: d.now()})
		if err != nil {
			return err
		}
		created = res.Data()
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*driveService.CreateFileContent").Stringer("file", file.File.ID()).Msg("error creating content")
		return models.FileContent{}, app.Wrap(err)
	}
	return created, nil
}

// CreateFileSnapshot derives a snapshot of content from baseSnapshotID, or
// an empty one when it is zero.
func (d *driveService) CreateFileSnapshot(ctx context.Context, file *access.Result, contentID, baseSnapshotID models.ID) (models.FileSnapshot, error) {
	if err := requireLevel(file, models.AccessReadWrite); err != nil {
		return models.FileSnapshot{}, app.Wrap(err)
	}

	var created models.FileSnapshot
	err := d.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		snap, err := d.snapshotFrom(ctx, tx, file, contentID, baseSnapshotID)
		if err != nil {
			return err
		}
		created = snap.Data()
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*driveService.CreateFileSnapshot").Stringer("content", contentID).Msg("error creating snapshot")
		return models.FileSnapshot{}, app.Wrap(err)
	}
	return created, nil
}

// content loads contentID of file, or its main content when contentID is
// zero.
func (c *Core) content(ctx context.Context, tx *resource.Tx, file unlock.File, contentID models.ID) (*resource.Resource[models.FileContent], error) {
	if contentID.IsZero() {
		return resource.FindOne[models.FileContent](ctx, tx, store.Filter{
			models.FieldFileID: file.ID().String(),
			"is_main":          "true",
		})
	}

	res, err := resource.Get[models.FileContent](ctx, tx, contentID)
	if err != nil {
		return nil, err
	}
	if res.Data().FileID != file.ID() {
		return nil, ErrContentMismatch
	}
	return res, nil
}

// snapshotFrom creates a snapshot of contentID derived from baseID, or an
// empty one when baseID is zero.
func (c *Core) snapshotFrom(ctx context.Context, tx *resource.Tx, file *access.Result, contentID, baseID models.ID) (*resource.Resource[models.FileSnapshot], error) {
	content, err := c.content(ctx, tx, file.File, contentID)
	if err != nil {
		return nil, err
	}

	var base *resource.Resource[models.FileSnapshot]
	if !baseID.IsZero() {
		if base, err = resource.Get[models.FileSnapshot](ctx, tx, baseID); err != nil {
			return nil, err
		}
	}
	return c.blocks.CreateSnapshot(ctx, tx, content, base, grantor(file))
}

// requireLevel fails unless result grants at least min.
func requireLevel(result *access.Result, min models.AccessLevel) error {
	if result.Allows(min) {
		return nil
	}
	have := models.AccessNone
	if result != nil {
		have = result.Level
	}
	return fmt.Errorf("%w: %s required, have %s", access.ErrAccessDenied, min, have)
}

// checkGrantLevel validates a level the holder of result wants to hand out.
func checkGrantLevel(result *access.Result, level models.AccessLevel) error {
	if !level.Valid() || level == models.AccessNone {
		return fmt.Errorf("%w: level %s", ErrInvalidDataProvided, level)
	}
	if err := requireLevel(result, models.AccessManage); err != nil {
		return err
	}
	return requireLevel(result, level)
}

// grantor is the user acting through result; zero for link access.
func grantor(result *access.Result) models.ID {
	if result.User.Resource == nil {
		return models.NilID
	}
	return result.User.ID()
}
