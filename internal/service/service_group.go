// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
)

type groupService struct {
	*Core

	logger *logger.Logger
}

func NewGroupService(core *Core, logger *logger.Logger) GroupService {
	return &groupService{Core: core, logger: logger}
}

// CreateGroup creates a group owned by the session user, who becomes its
// first member.
func (g *groupService) CreateGroup(ctx context.Context, session *Session, name string) (models.Group, error) {
	log := logger.FromContext(ctx)

	if err := g.validate(ctx, models.Group{Name: name}); err != nil {
		return models.Group{}, app.Wrap(err)
	}

	priv, err := g.keys.GenerateKeyPair()
	if err != nil {
		return models.Group{}, app.Wrap(err)
	}
	pubDER, err := g.keys.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return models.Group{}, app.Wrap(err)
	}

	var created models.Group
	err = g.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		now := g.now()
		groupRes, err := resource.New(ctx, tx, models.Group{
			Name:        name,
			OwnerUserID: session.UserID(),
			PublicKey:   pubDER,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}

		wrapped, err := g.unlocker.WrapGroupMembership(&session.User.PrivateKey.PublicKey, unlock.Group{Resource: groupRes, PrivateKey: priv})
		if err != nil {
			return err
		}
		if _, err = resource.New(ctx, tx, models.GroupMembership{
			GroupID:             groupRes.ID(),
			UserID:              session.UserID(),
			EncryptedPrivateKey: wrapped,
			CreatedAt:           now,
		}); err != nil {
			return err
		}

		created = groupRes.Data()
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*groupService.CreateGroup").Str("name", name).Msg("error creating group")
		return models.Group{}, app.Wrap(err)
	}
	return created, nil
}

// AddGroupMember wraps the group key for userID. Only the group owner can
// add members.
func (g *groupService) AddGroupMember(ctx context.Context, session *Session, groupID, userID models.ID) (models.GroupMembership, error) {
	log := logger.FromContext(ctx)

	var created models.GroupMembership
	err := g.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		groupRes, err := resource.Get[models.Group](ctx, tx, groupID)
		if err != nil {
			return err
		}
		if groupRes.Data().OwnerUserID != session.UserID() {
			return ErrNotGroupOwner
		}

		_, err = resource.FindOne[models.GroupMembership](ctx, tx, membershipFilter(groupID, userID))
		switch {
		case err == nil:
			return ErrAlreadyMember
		case !errors.Is(err, resource.ErrNotFound):
			return err
		}

		own, err := resource.FindOne[models.GroupMembership](ctx, tx, membershipFilter(groupID, session.UserID()))
		if err != nil {
			return err
		}
		group, err := g.unlocker.UnlockGroup(session.User, groupRes, own)
		if err != nil {
			return err
		}

		userRes, err := resource.Get[models.User](ctx, tx, userID)
		if err != nil {
			return err
		}
		pub, err := g.keys.ParsePublicKey(userRes.Data().PublicKey)
		if err != nil {
			return err
		}
		wrapped, err := g.unlocker.WrapGroupMembership(pub, group)
		if err != nil {
			return err
		}

		res, err := resource.New(ctx, tx, models.GroupMembership{
			GroupID:             groupID,
			UserID:              userID,
			EncryptedPrivateKey: wrapped,
			CreatedAt:           g.now(),
		})
		if err != nil {
			return err
		}
		created = res.Data()
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*groupService.AddGroupMember").Stringer("group", groupID).Stringer("user", userID).Msg("error adding group member")
		return models.GroupMembership{}, app.Wrap(err)
	}
	return created, nil
}

func membershipFilter(groupID, userID models.ID) store.Filter {
	return store.Filter{
		models.FieldGroupID: groupID.String(),
		models.FieldUserID:  userID.String(),
	}
}
