// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-drive-keeper/internal/access"
	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_WriteReadAndShare(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	v := f.register("v", "Passw0rd!2")

	file := f.createFile(f.root(u), "a.txt")
	owned := f.authorize(u, file.ID(), models.AccessFull)
	f.write(owned, []byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, f.read(owned))

	_, err := f.svc.DriveService.CreateFileAccess(f.ctx, owned, GrantRequest{UserID: v.UserID(), Level: models.AccessRead})
	require.NoError(t, err)

	_, err = f.svc.DriveService.Authorize(f.ctx, v, file.ID(), models.AccessReadWrite)
	require.Error(t, err)
	assert.Equal(t, app.KindAccessDenied, app.KindOf(err))

	shared := f.authorize(v, file.ID(), models.AccessRead)
	assert.Equal(t, access.ViaGrant, shared.Via)
	assert.Equal(t, []byte{1, 2, 3}, f.read(shared))

	_, err = f.svc.StreamService.OpenStream(f.ctx, shared, models.NilID, models.NilID, true)
	assert.Equal(t, app.KindAccessDenied, app.KindOf(err))
}

func TestCreateFile(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	root := f.root(u)

	file := f.createFile(root, "a.txt")
	data := file.Resource.Data()
	assert.Equal(t, root.File.ID(), data.ParentID)
	assert.Equal(t, u.UserID(), data.OwnerUserID)
	assert.NotEmpty(t, data.AdminEncryptedKey)
	assert.Equal(t, 1, f.mem.Len(models.CollectionFileContents))

	folder, err := f.svc.DriveService.CreateFolder(f.ctx, root, "docs")
	require.NoError(t, err)
	assert.True(t, folder.Resource.Data().IsFolder)
	assert.Equal(t, 1, f.mem.Len(models.CollectionFileContents))

	t.Run("name conflict", func(t *testing.T) {
		_, err := f.svc.DriveService.CreateFile(f.ctx, root, CreateFileRequest{Name: "a.txt"})
		assert.ErrorIs(t, err, ErrNameConflict)
		assert.Equal(t, app.KindConflict, app.KindOf(err))
	})

	t.Run("parent is not a folder", func(t *testing.T) {
		parent := f.authorize(u, file.ID(), models.AccessFull)
		_, err := f.svc.DriveService.CreateFile(f.ctx, parent, CreateFileRequest{Name: "b.txt"})
		assert.ErrorIs(t, err, ErrNotAFolder)
	})

	t.Run("invalid name", func(t *testing.T) {
		for _, name := range []string{"", "..", "a/b"} {
			_, err := f.svc.DriveService.CreateFile(f.ctx, root, CreateFileRequest{Name: name})
			assert.ErrorIs(t, err, ErrInvalidDataProvided, name)
			assert.Equal(t, app.KindInvalidState, app.KindOf(err), name)
		}
	})

	t.Run("read access is not enough", func(t *testing.T) {
		readOnly := *root
		readOnly.Level = models.AccessRead
		_, err := f.svc.DriveService.CreateFile(f.ctx, &readOnly, CreateFileRequest{Name: "c.txt"})
		assert.Equal(t, app.KindAccessDenied, app.KindOf(err))
	})
}

func TestCreateFile_InsideCallerTransactionRollsBack(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	root := f.root(u)
	before := f.mem.Len(models.CollectionFiles)

	boom := errors.New("boom")
	err := f.svc.core.manager.Transact(f.ctx, func(ctx context.Context, tx *resource.Tx) error {
		file, err := f.svc.DriveService.CreateFile(ctx, root, CreateFileRequest{Name: "a.txt"})
		require.NoError(t, err)
		assert.False(t, file.Resource.Deleted())
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, before, f.mem.Len(models.CollectionFiles))
	assert.Equal(t, 0, f.mem.Len(models.CollectionFileContents))

	children, err := f.svc.DriveService.ListChildren(f.ctx, root)
	require.NoError(t, err)
	assert.Empty(t, children)

	f.createFile(root, "a.txt")
}

func TestMoveFile(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	root := f.root(u)

	docs, err := f.svc.DriveService.CreateFolder(f.ctx, root, "docs")
	require.NoError(t, err)
	file := f.createFile(root, "a.txt")
	f.write(f.authorize(u, file.ID(), models.AccessFull), []byte("hello"))

	err = f.svc.DriveService.MoveFile(f.ctx, f.authorize(u, file.ID(), models.AccessFull), f.authorize(u, docs.ID(), models.AccessFull))
	require.NoError(t, err)

	moved := f.authorize(u, file.ID(), models.AccessFull)
	assert.Equal(t, access.ViaInherited, moved.Via)
	assert.Equal(t, docs.ID(), moved.File.Resource.Data().ParentID)
	assert.Equal(t, []byte("hello"), f.read(moved))

	t.Run("into its own subtree", func(t *testing.T) {
		inner, err := f.svc.DriveService.CreateFolder(f.ctx, f.authorize(u, docs.ID(), models.AccessFull), "inner")
		require.NoError(t, err)

		err = f.svc.DriveService.MoveFile(f.ctx, f.authorize(u, docs.ID(), models.AccessFull), f.authorize(u, inner.ID(), models.AccessFull))
		assert.ErrorIs(t, err, ErrMoveIntoDescendant)
		assert.Equal(t, app.KindInvalidState, app.KindOf(err))
	})

	t.Run("root folder", func(t *testing.T) {
		err := f.svc.DriveService.MoveFile(f.ctx, root, f.authorize(u, docs.ID(), models.AccessFull))
		assert.ErrorIs(t, err, ErrRootFile)
	})

	t.Run("name conflict at destination", func(t *testing.T) {
		f.createFile(root, "a.txt")
		again := f.authorize(u, file.ID(), models.AccessFull)
		err := f.svc.DriveService.MoveFile(f.ctx, again, root)
		assert.ErrorIs(t, err, ErrNameConflict)
	})
}

func TestMoveFile_BetweenOwnersFails(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	v := f.register("v", "Passw0rd!2")

	file := f.createFile(f.root(u), "a.txt")
	vRoot := f.root(v)
	_, err := f.svc.DriveService.CreateFileAccess(f.ctx, vRoot, GrantRequest{UserID: u.UserID(), Level: models.AccessReadWrite})
	require.NoError(t, err)

	err = f.svc.DriveService.MoveFile(f.ctx, f.authorize(u, file.ID(), models.AccessFull), f.authorize(u, vRoot.File.ID(), models.AccessReadWrite))
	assert.ErrorIs(t, err, ErrCrossOwnerMove)
}

func TestRenameStarAndList(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	root := f.root(u)

	a := f.createFile(root, "a.txt")
	f.createFile(root, "b.txt")

	require.NoError(t, f.svc.DriveService.RenameFile(f.ctx, f.authorize(u, a.ID(), models.AccessFull), "c.txt"))
	require.NoError(t, f.svc.DriveService.StarFile(f.ctx, f.authorize(u, a.ID(), models.AccessFull), true))

	children, err := f.svc.DriveService.ListChildren(f.ctx, root)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "c.txt", children[0].Name)
	assert.True(t, children[0].Starred)
	assert.Equal(t, "b.txt", children[1].Name)

	err = f.svc.DriveService.RenameFile(f.ctx, f.authorize(u, a.ID(), models.AccessFull), "b.txt")
	assert.ErrorIs(t, err, ErrNameConflict)

	err = f.svc.DriveService.RenameFile(f.ctx, root, "elsewhere")
	assert.ErrorIs(t, err, ErrRootFile)

	_, err = f.svc.DriveService.ListChildren(f.ctx, f.authorize(u, a.ID(), models.AccessRead))
	assert.ErrorIs(t, err, ErrNotAFolder)
}

func TestDelete_Cascades(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	v := f.register("v", "Passw0rd!2")
	root := f.root(u)

	docs, err := f.svc.DriveService.CreateFolder(f.ctx, root, "docs")
	require.NoError(t, err)
	docsRes := f.authorize(u, docs.ID(), models.AccessFull)
	file := f.createFile(docsRes, "a.txt")
	owned := f.authorize(u, file.ID(), models.AccessFull)
	f.write(owned, []byte("0123456789abcdefXYZ"))
	f.write(owned, []byte("second"))
	_, err = f.svc.DriveService.CreateFileAccess(f.ctx, owned, GrantRequest{UserID: v.UserID(), Level: models.AccessRead})
	require.NoError(t, err)

	require.NotZero(t, f.mem.Len(models.CollectionFileBuffers))
	require.NoError(t, f.svc.DriveService.Delete(f.ctx, docsRes))

	assert.Equal(t, 4, f.mem.Len(models.CollectionFiles))
	for _, c := range []string{
		models.CollectionFileContents,
		models.CollectionFileSnapshots,
		models.CollectionFileData,
		models.CollectionFileBuffers,
		models.CollectionFileAccesses,
	} {
		assert.Zero(t, f.mem.Len(c), c)
	}

	_, err = f.svc.DriveService.Authorize(f.ctx, u, file.ID(), models.AccessRead)
	assert.Equal(t, app.KindNotFound, app.KindOf(err))

	err = f.svc.DriveService.Delete(f.ctx, root)
	assert.ErrorIs(t, err, ErrRootFile)
}

func TestCreateFileAccess_Levels(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	v := f.register("v", "Passw0rd!2")
	w := f.register("w", "Passw0rd!3")

	file := f.createFile(f.root(u), "a.txt")
	owned := f.authorize(u, file.ID(), models.AccessFull)

	_, err := f.svc.DriveService.CreateFileAccess(f.ctx, owned, GrantRequest{UserID: v.UserID(), Level: models.AccessManage})
	require.NoError(t, err)
	managed := f.authorize(v, file.ID(), models.AccessManage)

	t.Run("cannot exceed own level", func(t *testing.T) {
		_, err := f.svc.DriveService.CreateFileAccess(f.ctx, managed, GrantRequest{UserID: w.UserID(), Level: models.AccessFull})
		assert.Equal(t, app.KindAccessDenied, app.KindOf(err))
	})

	t.Run("can hand out up to own level", func(t *testing.T) {
		_, err := f.svc.DriveService.CreateFileAccess(f.ctx, managed, GrantRequest{UserID: w.UserID(), Level: models.AccessRead})
		require.NoError(t, err)
		r := f.authorize(w, file.ID(), models.AccessRead)
		assert.Equal(t, models.AccessRead, r.Level)
	})

	t.Run("needs exactly one grantee", func(t *testing.T) {
		_, err := f.svc.DriveService.CreateFileAccess(f.ctx, owned, GrantRequest{Level: models.AccessRead})
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	})

	t.Run("none is not a grant", func(t *testing.T) {
		_, err := f.svc.DriveService.CreateFileAccess(f.ctx, owned, GrantRequest{UserID: w.UserID(), Level: models.AccessNone})
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	})

	t.Run("read holders cannot share", func(t *testing.T) {
		reader := f.authorize(w, file.ID(), models.AccessRead)
		_, err := f.svc.DriveService.CreateFileAccess(f.ctx, reader, GrantRequest{UserID: u.UserID(), Level: models.AccessRead})
		assert.Equal(t, app.KindAccessDenied, app.KindOf(err))
	})
}

func TestRevokeFileAccess(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	v := f.register("v", "Passw0rd!2")

	file := f.createFile(f.root(u), "a.txt")
	owned := f.authorize(u, file.ID(), models.AccessFull)
	grant, err := f.svc.DriveService.CreateFileAccess(f.ctx, owned, GrantRequest{UserID: v.UserID(), Level: models.AccessRead})
	require.NoError(t, err)
	f.authorize(v, file.ID(), models.AccessRead)

	other := f.createFile(f.root(u), "b.txt")
	err = f.svc.DriveService.RevokeFileAccess(f.ctx, f.authorize(u, other.ID(), models.AccessFull), grant.ID)
	assert.ErrorIs(t, err, ErrGrantMismatch)

	require.NoError(t, f.svc.DriveService.RevokeFileAccess(f.ctx, owned, grant.ID))
	_, err = f.svc.DriveService.Authorize(f.ctx, v, file.ID(), models.AccessRead)
	assert.Equal(t, app.KindAccessDenied, app.KindOf(err))
}

func TestPublicLink(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")

	folder, err := f.svc.DriveService.CreateFolder(f.ctx, f.root(u), "shared")
	require.NoError(t, err)
	folderRes := f.authorize(u, folder.ID(), models.AccessFull)
	file := f.createFile(folderRes, "a.txt")
	f.write(f.authorize(u, file.ID(), models.AccessFull), []byte("public"))

	link, err := f.svc.DriveService.CreatePublicFileAccess(f.ctx, folderRes, models.AccessRead)
	require.NoError(t, err)
	assert.True(t, link.Public)

	viaLink, err := f.svc.DriveService.AuthorizeLink(f.ctx, link.ID, file.ID(), models.AccessRead)
	require.NoError(t, err)
	assert.Equal(t, access.ViaLink, viaLink.Via)
	assert.Equal(t, []byte("public"), f.read(viaLink))

	_, err = f.svc.DriveService.AuthorizeLink(f.ctx, link.ID, file.ID(), models.AccessReadWrite)
	assert.Equal(t, app.KindAccessDenied, app.KindOf(err))

	require.NoError(t, f.svc.DriveService.RevokeFileAccess(f.ctx, folderRes, link.ID))
	_, err = f.svc.DriveService.AuthorizeLink(f.ctx, link.ID, models.NilID, models.AccessRead)
	assert.Equal(t, app.KindNotFound, app.KindOf(err))
}

func TestCreateFileContentAndSnapshot(t *testing.T) {
	f := newFixture(t)
	u := f.register("u", "Passw0rd!1")
	file := f.createFile(f.root(u), "a.txt")
	owned := f.authorize(u, file.ID(), models.AccessFull)

	thumb, err := f.svc.DriveService.CreateFileContent(f.ctx, owned, "thumbnail")
	require.NoError(t, err)
	assert.False(t, thumb.IsMain)

	_, err = f.svc.DriveService.CreateFileContent(f.ctx, owned, "thumbnail")
	assert.ErrorIs(t, err, ErrNameConflict)

	first, err := f.svc.DriveService.CreateFileSnapshot(f.ctx, owned, thumb.ID, models.NilID)
	require.NoError(t, err)
	assert.Equal(t, thumb.ID, first.ContentID)
	assert.Zero(t, first.Size)

	second, err := f.svc.DriveService.CreateFileSnapshot(f.ctx, owned, thumb.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.BaseFileSnapshotID)
	assert.Equal(t, u.UserID(), second.CreatedByUserID)

	other := f.createFile(f.root(u), "b.txt")
	_, err = f.svc.DriveService.CreateFileSnapshot(f.ctx, f.authorize(u, other.ID(), models.AccessFull), thumb.ID, models.NilID)
	assert.ErrorIs(t, err, ErrContentMismatch)

	folder, err := f.svc.DriveService.CreateFolder(f.ctx, f.root(u), "docs")
	require.NoError(t, err)
	_, err = f.svc.DriveService.CreateFileContent(f.ctx, f.authorize(u, folder.ID(), models.AccessFull), "x")
	assert.ErrorIs(t, err, ErrIsAFolder)
}
