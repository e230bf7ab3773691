// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// adminService is the concrete implementation of AdminService.
//
// There is one admin master key per deployment. Its private half is stored
// encrypted under the master password and, for every administrator, under
// that administrator's public key.
type adminService struct {
	*Core

	logger *logger.Logger
}

func NewAdminService(core *Core, logger *logger.Logger) AdminService {
	return &adminService{Core: core, logger: logger}
}

// InitAdminKey generates the admin master key. It fails with
// ErrAdminKeyExists when a key was initialised before.
func (a *adminService) InitAdminKey(ctx context.Context, masterPassword string) (unlock.AdminKey, error) {
	log := logger.FromContext(ctx)

	if masterPassword == "" {
		return unlock.AdminKey{}, app.Wrap(ErrInvalidDataProvided)
	}

	priv, err := a.keys.GenerateKeyPair()
	if err != nil {
		return unlock.AdminKey{}, app.Wrap(err)
	}
	pubDER, err := a.keys.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return unlock.AdminKey{}, app.Wrap(err)
	}

	var key unlock.AdminKey
	err = a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		_, err := resource.FindOne[models.AdminKey](ctx, tx, store.Filter{})
		switch {
		case err == nil:
			return ErrAdminKeyExists
		case !errors.Is(err, resource.ErrNotFound):
			return err
		}

		salt, err := a.keys.GenerateSalt()
		if err != nil {
			return err
		}
		iterations := a.keys.Iterations()
		wrapped, err := a.unlocker.WrapAdminKey(a.keys.DeriveKey(masterPassword, salt, iterations), priv)
		if err != nil {
			return err
		}

		res, err := resource.New(ctx, tx, models.AdminKey{
			PublicKey:           pubDER,
			Salt:                salt,
			Iterations:          iterations,
			EncryptedPrivateKey: wrapped,
			CreatedAt:           a.now(),
		})
		if err != nil {
			return err
		}
		key = unlock.AdminKey{Resource: res, PrivateKey: priv}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*adminService.InitAdminKey").Msg("error initialising admin key")
		return unlock.AdminKey{}, app.Wrap(err)
	}

	log.Info().Str("func", "*adminService.InitAdminKey").Stringer("key", key.Resource.ID()).Msg("admin key initialised")
	return key, nil
}

// UnlockAdminKey unlocks the admin master key with the master password.
func (a *adminService) UnlockAdminKey(ctx context.Context, masterPassword string) (unlock.AdminKey, error) {
	log := logger.FromContext(ctx)

	var key unlock.AdminKey
	err := a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		keyRes, err := resource.FindOne[models.AdminKey](ctx, tx, store.Filter{})
		if errors.Is(err, resource.ErrNotFound) {
			return ErrAdminKeyMissing
		}
		if err != nil {
			return err
		}

		key, err = a.unlocker.UnlockAdminKey(keyRes, masterPassword)
		if errors.Is(err, app.ErrCrypto) {
			return fmt.Errorf("%w: master password", ErrWrongCredentials)
		}
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*adminService.UnlockAdminKey").Msg("error unlocking admin key")
		return unlock.AdminKey{}, app.Wrap(err)
	}
	return key, nil
}

// AdminFromSession unlocks the admin master key through the session user's
// AdminAccess record.
func (a *adminService) AdminFromSession(ctx context.Context, session *Session) (unlock.AdminKey, error) {
	var key unlock.AdminKey
	err := a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		var err error
		key, err = a.adminFor(ctx, tx, session.User)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*adminService.AdminFromSession").Stringer("user", session.UserID()).Msg("error unlocking admin key")
		return unlock.AdminKey{}, app.Wrap(err)
	}
	return key, nil
}

// GrantAdmin makes userID an administrator by wrapping the master key for
// the user.
func (a *adminService) GrantAdmin(ctx context.Context, admin unlock.AdminKey, userID models.ID) (models.AdminAccess, error) {
	log := logger.FromContext(ctx)

	var created models.AdminAccess
	err := a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		userRes, err := resource.Get[models.User](ctx, tx, userID)
		if err != nil {
			return err
		}

		_, err = resource.FindOne[models.AdminAccess](ctx, tx, store.Filter{models.FieldUserID: userID.String()})
		switch {
		case err == nil:
			return ErrAlreadyAdmin
		case !errors.Is(err, resource.ErrNotFound):
			return err
		}

		pub, err := a.keys.ParsePublicKey(userRes.Data().PublicKey)
		if err != nil {
			return err
		}
		wrapped, err := a.unlocker.WrapAdminAccess(pub, admin)
		if err != nil {
			return err
		}

		res, err := resource.New(ctx, tx, models.AdminAccess{UserID: userID, EncryptedKey: wrapped, CreatedAt: a.now()})
		if err != nil {
			return err
		}
		created = res.Data()
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*adminService.GrantAdmin").Stringer("user", userID).Msg("error granting admin access")
		return models.AdminAccess{}, app.Wrap(err)
	}

	log.Info().Str("func", "*adminService.GrantAdmin").Stringer("user", userID).Msg("admin access granted")
	return created, nil
}

// RecoverUserKey unlocks userID's private key through the admin backdoor.
func (a *adminService) RecoverUserKey(ctx context.Context, admin unlock.AdminKey, userID models.ID) (unlock.User, error) {
	var user unlock.User
	err := a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		var err error
		user, err = a.recoverUser(ctx, tx, admin, userID)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*adminService.RecoverUserKey").Stringer("user", userID).Msg("error recovering user key")
		return unlock.User{}, app.Wrap(err)
	}
	return user, nil
}

// adminFor returns the master key for user, who must hold an AdminAccess
// record. The injected key is preferred over unlocking the record.
func (c *Core) adminFor(ctx context.Context, tx *resource.Tx, user unlock.User) (unlock.AdminKey, error) {
	accessRes, err := resource.FindOne[models.AdminAccess](ctx, tx, store.Filter{models.FieldUserID: user.ID().String()})
	if errors.Is(err, resource.ErrNotFound) {
		return unlock.AdminKey{}, ErrNotAdmin
	}
	if err != nil {
		return unlock.AdminKey{}, err
	}

	if key := c.injectedAdmin(); key != nil {
		return *key, nil
	}

	keyRes, err := resource.FindOne[models.AdminKey](ctx, tx, store.Filter{})
	if errors.Is(err, resource.ErrNotFound) {
		return unlock.AdminKey{}, ErrAdminKeyMissing
	}
	if err != nil {
		return unlock.AdminKey{}, err
	}
	return c.unlocker.UnlockAdminAccess(user, accessRes, keyRes)
}

func (c *Core) recoverUser(ctx context.Context, tx *resource.Tx, admin unlock.AdminKey, userID models.ID) (unlock.User, error) {
	userRes, err := resource.Get[models.User](ctx, tx, userID)
	if err != nil {
		return unlock.User{}, err
	}
	backdoor, err := resource.FindOne[models.UserAdminBackdoor](ctx, tx, store.Filter{models.FieldUserID: userID.String()})
	if err != nil {
		return unlock.User{}, err
	}
	return c.unlocker.UnlockUserAsAdmin(admin, userRes, backdoor)
}
