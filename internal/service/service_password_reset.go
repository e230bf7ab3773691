// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/validators"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// passwordResetService lets users who lost every factor regain access.
// An administrator approves the request; the user's private key is then
// recovered through the admin backdoor and wrapped under the new password.
type passwordResetService struct {
	*Core

	logger *logger.Logger
}

func NewPasswordResetService(core *Core, logger *logger.Logger) PasswordResetService {
	return &passwordResetService{Core: core, logger: logger}
}

// RequestPasswordReset files a pending request for login. One pending
// request per user.
func (p *passwordResetService) RequestPasswordReset(ctx context.Context, login string) (models.PasswordResetRequest, error) {
	log := logger.FromContext(ctx)

	if err := p.validate(ctx, models.User{Login: login}); err != nil {
		return models.PasswordResetRequest{}, app.Wrap(err)
	}

	var created models.PasswordResetRequest
	err := p.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		userRes, err := resource.FindOne[models.User](ctx, tx, store.Filter{models.FieldLogin: login})
		if err != nil {
			return err
		}

		_, err = resource.FindOne[models.PasswordResetRequest](ctx, tx, store.Filter{
			models.FieldUserID: userRes.ID().String(),
			models.FieldState:  strconv.Itoa(int(models.ResetPending)),
		})
		switch {
		case err == nil:
			return ErrResetPending
		case !errors.Is(err, resource.ErrNotFound):
			return err
		}

		res, err := resource.New(ctx, tx, models.PasswordResetRequest{
			UserID:    userRes.ID(),
			State:     models.ResetPending,
			CreatedAt: p.now(),
		})
		if err != nil {
			return err
		}
		created = res.Data()
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*passwordResetService.RequestPasswordReset").Str("login", login).Msg("error requesting password reset")
		return models.PasswordResetRequest{}, app.Wrap(err)
	}
	return created, nil
}

// ApprovePasswordReset replaces every password factor of the requesting
// user with one for newPassword. The session user must be an administrator.
func (p *passwordResetService) ApprovePasswordReset(ctx context.Context, session *Session, requestID models.ID, newPassword string) error {
	log := logger.FromContext(ctx)

	if err := p.validate(ctx, models.Credential{Kind: models.AuthenticationPassword, Secret: newPassword}, validators.FieldSecret); err != nil {
		return app.Wrap(err)
	}

	err := p.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		admin, err := p.adminFor(ctx, tx, session.User)
		if err != nil {
			return err
		}
		reqRes, err := p.pending(ctx, tx, requestID)
		if err != nil {
			return err
		}
		req := reqRes.Data()

		user, err := p.recoverUser(ctx, tx, admin, req.UserID)
		if err != nil {
			return err
		}

		passwords, err := resource.All[models.UserAuthentication](ctx, tx, store.Filter{
			models.FieldUserID: req.UserID.String(),
			models.FieldKind:   strconv.Itoa(int(models.AuthenticationPassword)),
		})
		if err != nil {
			return err
		}
		for _, f := range passwords {
			if err = resource.Delete(ctx, tx, f); err != nil {
				return err
			}
		}
		if _, err = p.newFactor(ctx, tx, user, models.UserAuthentication{Kind: models.AuthenticationPassword}, newPassword); err != nil {
			return err
		}

		return p.resolve(ctx, tx, reqRes, models.ResetApproved, session.UserID())
	})
	if err != nil {
		log.Err(err).Str("func", "*passwordResetService.ApprovePasswordReset").Stringer("request", requestID).Msg("error approving password reset")
		return app.Wrap(err)
	}

	log.Info().Str("func", "*passwordResetService.ApprovePasswordReset").Stringer("request", requestID).Msg("password reset approved")
	return nil
}

// RejectPasswordReset closes a pending request without touching the user.
func (p *passwordResetService) RejectPasswordReset(ctx context.Context, session *Session, requestID models.ID) error {
	err := p.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		if _, err := p.adminFor(ctx, tx, session.User); err != nil {
			return err
		}
		reqRes, err := p.pending(ctx, tx, requestID)
		if err != nil {
			return err
		}
		return p.resolve(ctx, tx, reqRes, models.ResetRejected, session.UserID())
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*passwordResetService.RejectPasswordReset").Stringer("request", requestID).Msg("error rejecting password reset")
		return app.Wrap(err)
	}
	return nil
}

func (p *passwordResetService) pending(ctx context.Context, tx *resource.Tx, requestID models.ID) (*resource.Resource[models.PasswordResetRequest], error) {
	reqRes, err := resource.Get[models.PasswordResetRequest](ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if req := reqRes.Data(); req.Resolved() {
		return nil, ErrResetNotPending
	}
	return reqRes, nil
}

func (p *passwordResetService) resolve(ctx context.Context, tx *resource.Tx, reqRes *resource.Resource[models.PasswordResetRequest], state models.ResetState, by models.ID) error {
	return reqRes.Modify(ctx, tx, func(r *models.PasswordResetRequest) {
		r.State = state
		r.ResolvedAt = p.now()
		r.ResolvedByUserID = by
	})
}
