// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/access"
	"github.com/MKhiriev/go-drive-keeper/internal/blocks"
	"github.com/MKhiriev/go-drive-keeper/internal/config"
	"github.com/MKhiriev/go-drive-keeper/internal/crypto"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/stream"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/internal/validators"
	"github.com/MKhiriev/go-drive-keeper/models"
)

type Services struct {
	AuthService          AuthService
	DriveService         DriveService
	StreamService        StreamService
	AdminService         AdminService
	GroupService         GroupService
	PasswordResetService PasswordResetService
	AppInfoService       AppInfoService

	core *Core
}

// NewServices wires every service over the document store s.
func NewServices(s store.Store, cfg config.StructuredConfig, build models.AppBuildInfo, logger *logger.Logger) (*Services, error) {
	core, err := NewCore(s, cfg)
	if err != nil {
		return nil, err
	}

	appInfo, err := NewAppInfoService(cfg.App, build, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		AuthService:          NewAuthService(core, cfg.App, logger),
		DriveService:         NewDriveService(core, logger),
		StreamService:        NewStreamService(core, logger),
		AdminService:         NewAdminService(core, logger),
		GroupService:         NewGroupService(core, logger),
		PasswordResetService: NewPasswordResetService(core, logger),
		AppInfoService:       appInfo,
		core:                 core,
	}, nil
}

// UseAdminKey injects the unlocked master key. Access resolution then
// grants admin override to every holder of an AdminAccess record without
// unlocking it from their own record.
func (s *Services) UseAdminKey(key unlock.AdminKey) {
	s.core.admin.Store(&key)
}

// Shutdown closes every open stream.
func (s *Services) Shutdown() {
	s.core.streams.Shutdown()
}

// Core bundles the collaborators shared by every service.
type Core struct {
	manager   *resource.Manager
	keys      crypto.KeyChain
	unlocker  *unlock.Unlocker
	resolver  *access.Resolver
	blocks    *blocks.Storage
	streams   *stream.Registry
	validator validators.Validator

	admin atomic.Pointer[unlock.AdminKey]
	now   func() time.Time
}

// NewCore builds the shared collaborators from cfg.
func NewCore(s store.Store, cfg config.StructuredConfig) (*Core, error) {
	keys := crypto.NewKeyChain(crypto.Params{
		RSABits:    cfg.App.RSABits,
		Iterations: cfg.App.KDFIterations,
	})

	manager, err := resource.NewManager(s)
	if err != nil {
		return nil, err
	}

	core := &Core{
		manager:   manager,
		keys:      keys,
		validator: validators.NewDriveValidator(),
		now:       func() time.Time { return time.Now().UTC() },
	}

	storage, err := blocks.NewStorage(keys, blocks.Options{
		BlockSize: cfg.Storage.Blocks.BlockSize,
		Checksums: !cfg.Storage.Blocks.SkipChecksums,
		Now:       func() time.Time { return core.now() },
	})
	if err != nil {
		return nil, err
	}

	core.unlocker = unlock.NewUnlocker(keys)
	core.resolver = access.NewResolver(core.unlocker)
	core.blocks = storage
	core.streams = stream.NewRegistry(manager, storage, stream.WithIdleTimeout(cfg.Streams.IdleTimeout))
	return core, nil
}

// validate checks caller input, reporting failures as
// ErrInvalidDataProvided.
func (c *Core) validate(ctx context.Context, obj any, fields ...string) error {
	if err := c.validator.Validate(ctx, obj, fields...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return nil
}

// injectedAdmin returns the key set with [Services.UseAdminKey], or nil.
func (c *Core) injectedAdmin() *unlock.AdminKey {
	return c.admin.Load()
}

// adminPublicKey returns the public half of the master key every file key
// and every user key is additionally wrapped for.
func (c *Core) adminPublicKey(ctx context.Context, tx *resource.Tx) (*rsa.PublicKey, error) {
	if key := c.injectedAdmin(); key != nil {
		return key.Public(), nil
	}
	keyRes, err := resource.FindOne[models.AdminKey](ctx, tx, store.Filter{})
	if errors.Is(err, resource.ErrNotFound) {
		return nil, ErrAdminKeyMissing
	}
	if err != nil {
		return nil, err
	}
	return c.keys.ParsePublicKey(keyRes.Data().PublicKey)
}

// newFactor creates an authentication factor whose secret unlocks user.
func (c *Core) newFactor(ctx context.Context, tx *resource.Tx, user unlock.User, factor models.UserAuthentication, secret string) (*resource.Resource[models.UserAuthentication], error) {
	salt, err := c.keys.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if factor.Iterations <= 0 {
		factor.Iterations = c.keys.Iterations()
	}

	wrapped, err := c.unlocker.WrapCredential(c.keys.DeriveKey(secret, salt, factor.Iterations), user.PrivateKey)
	if err != nil {
		return nil, err
	}

	factor.UserID = user.ID()
	factor.Salt = salt
	factor.EncryptedPrivateKey = wrapped
	factor.CreatedAt = c.now()
	return resource.New(ctx, tx, factor)
}

// liveFactors returns the user's factors that have not expired.
func (c *Core) liveFactors(ctx context.Context, tx *resource.Tx, userID models.ID) ([]*resource.Resource[models.UserAuthentication], error) {
	var live []*resource.Resource[models.UserAuthentication]
	now := c.now()
	for f, err := range resource.Query[models.UserAuthentication](ctx, tx, store.Filter{models.FieldUserID: userID.String()}) {
		if err != nil {
			return nil, err
		}
		if data := f.Data(); !data.Expired(now) {
			live = append(live, f)
		}
	}
	return live, nil
}
