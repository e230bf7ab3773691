// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/access"
	"github.com/MKhiriev/go-drive-keeper/internal/config"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
	"github.com/stretchr/testify/require"
)

const masterPassword = "master-password"

func testConfig() config.StructuredConfig {
	return config.StructuredConfig{
		App: config.App{
			SessionSignKey:  "test-sign-key",
			SessionIssuer:   "go-drive-keeper-test",
			SessionDuration: time.Hour,
			KDFIterations:   1000,
			RSABits:         2048,
			Version:         "test",
		},
		Storage: config.Storage{
			DB:     config.DB{Driver: config.DriverMemory},
			Blocks: config.Blocks{BlockSize: 16},
		},
		Streams: config.Streams{IdleTimeout: time.Minute},
	}
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	svc   *Services
	mem   *store.MemoryStore
	admin unlock.AdminKey
}

// newBareFixture builds services without an admin key.
func newBareFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	svc, err := NewServices(mem, testConfig(), models.AppBuildInfo{}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(svc.Shutdown)
	return &fixture{t: t, ctx: context.Background(), svc: svc, mem: mem}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := newBareFixture(t)
	admin, err := f.svc.AdminService.InitAdminKey(f.ctx, masterPassword)
	require.NoError(t, err)
	f.admin = admin
	return f
}

// setNow freezes the service clock.
func (f *fixture) setNow(now time.Time) {
	f.svc.core.now = func() time.Time { return now }
}

func (f *fixture) register(login, password string) *Session {
	f.t.Helper()
	_, err := f.svc.AuthService.Register(f.ctx, RegisterRequest{Login: login, Name: login, Password: password})
	require.NoError(f.t, err)
	return f.login(login, password)
}

func (f *fixture) login(login, password string) *Session {
	f.t.Helper()
	s, err := f.svc.AuthService.Authenticate(f.ctx, models.Credential{
		Kind:   models.AuthenticationPassword,
		Login:  login,
		Secret: password,
	})
	require.NoError(f.t, err)
	return s
}

func (f *fixture) authorize(s *Session, fileID models.ID, min models.AccessLevel) *access.Result {
	f.t.Helper()
	r, err := f.svc.DriveService.Authorize(f.ctx, s, fileID, min)
	require.NoError(f.t, err)
	return r
}

func (f *fixture) root(s *Session) *access.Result {
	f.t.Helper()
	return f.authorize(s, s.User.Resource.Data().RootFolderID, models.AccessFull)
}

func (f *fixture) createFile(parent *access.Result, name string) unlock.File {
	f.t.Helper()
	file, err := f.svc.DriveService.CreateFile(f.ctx, parent, CreateFileRequest{Name: name})
	require.NoError(f.t, err)
	return file
}

// write replaces the main content of file with data in a new snapshot.
func (f *fixture) write(file *access.Result, data []byte) {
	f.t.Helper()
	id, err := f.svc.StreamService.OpenStream(f.ctx, file, models.NilID, models.NilID, true)
	require.NoError(f.t, err)
	require.NoError(f.t, f.svc.StreamService.Write(f.ctx, id, data))
	require.NoError(f.t, f.svc.StreamService.Close(f.ctx, id))
}

// read returns the latest snapshot of the main content of file.
func (f *fixture) read(file *access.Result) []byte {
	f.t.Helper()
	id, err := f.svc.StreamService.OpenStream(f.ctx, file, models.NilID, models.NilID, false)
	require.NoError(f.t, err)
	defer func() { require.NoError(f.t, f.svc.StreamService.Close(f.ctx, id)) }()

	n, err := f.svc.StreamService.Length(f.ctx, id)
	require.NoError(f.t, err)
	data, err := f.svc.StreamService.Read(f.ctx, id, n)
	require.NoError(f.t, err)
	return data
}
