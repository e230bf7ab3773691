// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/config"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/internal/utils"
	"github.com/MKhiriev/go-drive-keeper/internal/validators"
	"github.com/MKhiriev/go-drive-keeper/models"
)

const (
	rootFolderName  = "My Drive"
	trashFolderName = "Trash"

	// sessionIterations is the PBKDF2 cost of session factors. Their
	// secrets are random 256-bit values, so stretching adds nothing.
	sessionIterations = 1
)

// authService is the concrete implementation of AuthService.
// Every factor of a user wraps the same RSA private key under a key derived
// from the factor's secret; authenticating means unwrapping it.
type authService struct {
	*Core

	// sessionSignKey is the HMAC secret used to sign and verify session
	// tokens.
	sessionSignKey string

	// sessionIssuer is the "iss" claim embedded in every session token.
	// Tokens whose issuer does not match this value are rejected.
	sessionIssuer string

	// sessionDuration controls how long a session factor and its token
	// remain valid.
	sessionDuration time.Duration

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService populated with session
// parameters from cfg.
func NewAuthService(core *Core, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		Core:            core,
		sessionSignKey:  cfg.SessionSignKey,
		sessionIssuer:   cfg.SessionIssuer,
		sessionDuration: cfg.SessionDuration,
		logger:          logger,
	}
}

// Register creates a new account.
//
// The user gets a fresh RSA key pair, a password factor, an admin backdoor
// and two root folders (drive and trash). The admin key must already be
// initialised, because the backdoor and the folder keys are wrapped for it.
//
// Returns the persisted user or:
//   - ErrInvalidDataProvided if Login or Password is empty.
//   - ErrLoginTaken if another account uses the login.
//   - ErrAdminKeyMissing if no admin key exists yet.
func (a *authService) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validate(ctx, models.User{Login: req.Login, Name: req.Name}, validators.FieldLogin, validators.FieldName); err != nil {
		log.Err(err).Str("func", "*authService.Register").Str("login", req.Login).Msg("invalid user data provided")
		return models.User{}, app.Wrap(err)
	}
	if err := a.validate(ctx, models.Credential{Kind: models.AuthenticationPassword, Secret: req.Password}, validators.FieldSecret); err != nil {
		log.Err(err).Str("func", "*authService.Register").Str("login", req.Login).Msg("invalid password provided")
		return models.User{}, app.Wrap(err)
	}

	priv, err := a.keys.GenerateKeyPair()
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Msg("key pair generation failed")
		return models.User{}, app.Wrap(err)
	}
	pubDER, err := a.keys.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return models.User{}, app.Wrap(err)
	}

	var registered models.User
	err = a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		_, err := resource.FindOne[models.User](ctx, tx, store.Filter{models.FieldLogin: req.Login})
		switch {
		case err == nil:
			return ErrLoginTaken
		case !errors.Is(err, resource.ErrNotFound):
			return err
		}

		adminPub, err := a.adminPublicKey(ctx, tx)
		if err != nil {
			return err
		}

		userRes, err := resource.New(ctx, tx, models.User{
			Login:     req.Login,
			Name:      req.Name,
			PublicKey: pubDER,
			CreatedAt: a.now(),
		})
		if err != nil {
			return err
		}
		user := unlock.User{Resource: userRes, PrivateKey: priv}

		if _, err = a.newFactor(ctx, tx, user, models.UserAuthentication{Kind: models.AuthenticationPassword}, req.Password); err != nil {
			return err
		}

		backdoor, err := a.unlocker.WrapBackdoor(adminPub, priv)
		if err != nil {
			return err
		}
		if _, err = resource.New(ctx, tx, models.UserAdminBackdoor{UserID: userRes.ID(), EncryptedPrivateKey: backdoor}); err != nil {
			return err
		}

		root, err := a.newRootFolder(ctx, tx, user, adminPub, rootFolderName)
		if err != nil {
			return err
		}
		trash, err := a.newRootFolder(ctx, tx, user, adminPub, trashFolderName)
		if err != nil {
			return err
		}

		if err = userRes.Modify(ctx, tx, func(u *models.User) {
			u.RootFolderID = root.ID()
			u.TrashFolderID = trash.ID()
		}); err != nil {
			return err
		}

		registered = userRes.Data()
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Str("login", req.Login).Msg("user registration ended with error")
		return models.User{}, app.Wrap(err)
	}

	log.Info().Str("func", "*authService.Register").Stringer("user", registered.ID).Msg("user registered")
	return registered, nil
}

func (a *authService) newRootFolder(ctx context.Context, tx *resource.Tx, owner unlock.User, adminPub *rsa.PublicKey, name string) (*resource.Resource[models.File], error) {
	key, err := a.keys.GenerateSymmetricKey()
	if err != nil {
		return nil, err
	}
	encrypted, err := a.unlocker.WrapRootFile(&owner.PrivateKey.PublicKey, key)
	if err != nil {
		return nil, err
	}
	adminEncrypted, err := a.unlocker.WrapForAdmin(adminPub, key)
	if err != nil {
		return nil, err
	}

	now := a.now()
	return resource.New(ctx, tx, models.File{
		Name:              name,
		OwnerUserID:       owner.ID(),
		IsFolder:          true,
		EncryptedKey:      encrypted,
		AdminEncryptedKey: adminEncrypted,
		CreatedAt:         now,
		ModifiedAt:        now,
	})
}

// Authenticate unlocks the user behind cred.
//
// Password credentials try every password factor of the login. Federated
// credentials try every factor linked to the provider account; more than
// one user may have linked it, and the secret decides which one matches.
// Session credentials carry a signed token naming the factor.
//
// Returns the session or ErrWrongCredentials when nothing unlocks.
func (a *authService) Authenticate(ctx context.Context, cred models.Credential) (*Session, error) {
	log := logger.FromContext(ctx)

	if err := a.validate(ctx, cred); err != nil {
		log.Err(err).Str("func", "*authService.Authenticate").Stringer("kind", cred.Kind).Msg("invalid credential provided")
		return nil, app.Wrap(err)
	}

	var session *Session
	err := a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		var err error
		switch cred.Kind {
		case models.AuthenticationPassword:
			session, err = a.authenticatePassword(ctx, tx, cred)
		case models.AuthenticationFederated:
			session, err = a.authenticateFederated(ctx, tx, cred)
		case models.AuthenticationSession:
			session, err = a.authenticateSession(ctx, tx, cred)
		default:
			err = fmt.Errorf("%w: unknown credential kind %s", ErrInvalidDataProvided, cred.Kind)
		}
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.Authenticate").Stringer("kind", cred.Kind).Msg("authentication failed")
		return nil, app.Wrap(err)
	}

	return session, nil
}

func (a *authService) authenticatePassword(ctx context.Context, tx *resource.Tx, cred models.Credential) (*Session, error) {
	userRes, err := resource.FindOne[models.User](ctx, tx, store.Filter{models.FieldLogin: cred.Login})
	if errors.Is(err, resource.ErrNotFound) {
		return nil, ErrWrongCredentials
	}
	if err != nil {
		return nil, err
	}

	factors, err := resource.All[models.UserAuthentication](ctx, tx, store.Filter{
		models.FieldUserID: userRes.ID().String(),
		models.FieldKind:   strconv.Itoa(int(models.AuthenticationPassword)),
	})
	if err != nil {
		return nil, err
	}
	return a.probe(ctx, tx, factors, cred.Secret)
}

func (a *authService) authenticateFederated(ctx context.Context, tx *resource.Tx, cred models.Credential) (*Session, error) {
	candidates, err := resource.All[models.UserAuthentication](ctx, tx, store.Filter{
		models.FieldKind:     strconv.Itoa(int(models.AuthenticationFederated)),
		models.FieldProvider: cred.Provider,
		models.FieldSubject:  cred.Subject,
	})
	if err != nil {
		return nil, err
	}
	return a.probe(ctx, tx, candidates, cred.Secret)
}

func (a *authService) authenticateSession(ctx context.Context, tx *resource.Tx, cred models.Credential) (*Session, error) {
	token, err := utils.ValidateAndParseSessionToken(cred.Token, a.sessionSignKey, a.sessionIssuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrongCredentials, err)
	}

	factor, err := resource.Get[models.UserAuthentication](ctx, tx, token.AuthenticationID)
	if errors.Is(err, resource.ErrNotFound) {
		return nil, ErrWrongCredentials
	}
	if err != nil {
		return nil, err
	}

	data := factor.Data()
	if data.Kind != models.AuthenticationSession || data.UserID != token.UserID {
		return nil, ErrWrongCredentials
	}
	if data.Expired(a.now()) {
		return nil, ErrTokenIsExpired
	}
	return a.probe(ctx, tx, []*resource.Resource[models.UserAuthentication]{factor}, token.Secret)
}

// probe returns the session of the first factor secret unlocks. Crypto
// failures move on to the next factor; store failures abort.
func (a *authService) probe(ctx context.Context, tx *resource.Tx, factors []*resource.Resource[models.UserAuthentication], secret string) (*Session, error) {
	now := a.now()
	for _, factor := range factors {
		data := factor.Data()
		if data.Expired(now) {
			continue
		}

		userRes, err := resource.Get[models.User](ctx, tx, data.UserID)
		if err != nil {
			return nil, err
		}

		cred := a.unlocker.DeriveCredential(factor, secret)
		user, err := a.unlocker.UnlockUser(cred, userRes)
		if errors.Is(err, app.ErrCrypto) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &Session{User: user, Credential: cred}, nil
	}
	return nil, ErrWrongCredentials
}

// IssueSessionToken creates a short-lived session factor with a random
// secret and returns a signed token carrying it.
func (a *authService) IssueSessionToken(ctx context.Context, session *Session) (models.SessionToken, error) {
	log := logger.FromContext(ctx)

	raw, err := a.keys.GenerateSymmetricKey()
	if err != nil {
		return models.SessionToken{}, app.Wrap(err)
	}
	secret := hex.EncodeToString(raw)

	var token models.SessionToken
	err = a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		factor, err := a.newFactor(ctx, tx, session.User, models.UserAuthentication{
			Kind:       models.AuthenticationSession,
			Iterations: sessionIterations,
			ExpiresAt:  a.now().Add(a.sessionDuration),
		}, secret)
		if err != nil {
			return err
		}

		token, err = utils.GenerateSessionToken(a.sessionIssuer, session.UserID(), factor.ID(), secret, a.sessionDuration, a.sessionSignKey)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.IssueSessionToken").Stringer("user", session.UserID()).Msg("error issuing session token")
		return models.SessionToken{}, app.Wrap(err)
	}

	return token, nil
}

// AddPasswordAuthentication adds another password factor to the session's
// user.
func (a *authService) AddPasswordAuthentication(ctx context.Context, session *Session, password string) (models.UserAuthentication, error) {
	if err := a.validate(ctx, models.Credential{Kind: models.AuthenticationPassword, Secret: password}, validators.FieldSecret); err != nil {
		return models.UserAuthentication{}, app.Wrap(err)
	}
	return a.addFactor(ctx, session, models.UserAuthentication{Kind: models.AuthenticationPassword}, password)
}

// AddFederatedAuthentication links an external identity provider account to
// the session's user.
func (a *authService) AddFederatedAuthentication(ctx context.Context, session *Session, provider, subject, secret string) (models.UserAuthentication, error) {
	cred := models.Credential{Kind: models.AuthenticationFederated, Provider: provider, Subject: subject, Secret: secret}
	if err := a.validate(ctx, cred); err != nil {
		return models.UserAuthentication{}, app.Wrap(err)
	}
	return a.addFactor(ctx, session, models.UserAuthentication{
		Kind:     models.AuthenticationFederated,
		Provider: provider,
		Subject:  subject,
	}, secret)
}

func (a *authService) addFactor(ctx context.Context, session *Session, factor models.UserAuthentication, secret string) (models.UserAuthentication, error) {
	log := logger.FromContext(ctx)

	var created models.UserAuthentication
	err := a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		res, err := a.newFactor(ctx, tx, session.User, factor, secret)
		if err != nil {
			return err
		}
		created = res.Data()
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.addFactor").Stringer("kind", factor.Kind).Msg("error adding authentication factor")
		return models.UserAuthentication{}, app.Wrap(err)
	}
	return created, nil
}

// RemoveAuthentication deletes one of the session user's factors.
//
// Returns ErrLastAuthentication when no other live factor would remain, or
// when the last password or federated factor would go while only session
// factors are left.
func (a *authService) RemoveAuthentication(ctx context.Context, session *Session, authenticationID models.ID) error {
	log := logger.FromContext(ctx)

	err := a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		factor, err := resource.Get[models.UserAuthentication](ctx, tx, authenticationID)
		if err != nil {
			return err
		}
		if factor.Data().UserID != session.UserID() {
			return ErrForeignAuthentication
		}

		live, err := a.liveFactors(ctx, tx, session.UserID())
		if err != nil {
			return err
		}
		remaining, durable := 0, 0
		for _, f := range live {
			if f.ID() == authenticationID {
				continue
			}
			remaining++
			if f.Data().Kind != models.AuthenticationSession {
				durable++
			}
		}
		if remaining == 0 || (factor.Data().Kind != models.AuthenticationSession && durable == 0) {
			return ErrLastAuthentication
		}

		return resource.Delete(ctx, tx, factor)
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.RemoveAuthentication").Stringer("authentication", authenticationID).Msg("error removing authentication factor")
		return app.Wrap(err)
	}
	return nil
}

// CleanupExpiredSessions deletes expired session factors. A user whose only
// factors are expired sessions keeps the most recent one.
func (a *authService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	removed := 0
	err := a.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		removed = 0
		now := a.now()

		var order []models.ID
		expired := make(map[models.ID][]*resource.Resource[models.UserAuthentication])
		for f, err := range resource.Query[models.UserAuthentication](ctx, tx, store.Filter{
			models.FieldKind: strconv.Itoa(int(models.AuthenticationSession)),
		}) {
			if err != nil {
				return err
			}
			data := f.Data()
			if !data.Expired(now) {
				continue
			}
			if _, ok := expired[data.UserID]; !ok {
				order = append(order, data.UserID)
			}
			expired[data.UserID] = append(expired[data.UserID], f)
		}

		for _, userID := range order {
			victims := expired[userID]
			live, err := a.liveFactors(ctx, tx, userID)
			if err != nil {
				return err
			}
			if len(live) == 0 {
				victims = withoutLatest(victims)
			}
			for _, f := range victims {
				if err = resource.Delete(ctx, tx, f); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*authService.CleanupExpiredSessions").Msg("error cleaning up expired sessions")
		return 0, app.Wrap(err)
	}

	if removed > 0 {
		log.Info().Str("func", "*authService.CleanupExpiredSessions").Int("removed", removed).Msg("expired sessions removed")
	}
	return removed, nil
}

// withoutLatest drops the factor with the latest expiry from factors.
func withoutLatest(factors []*resource.Resource[models.UserAuthentication]) []*resource.Resource[models.UserAuthentication] {
	latest := 0
	for i, f := range factors {
		if f.Data().ExpiresAt.After(factors[latest].Data().ExpiresAt) {
			latest = i
		}
	}
	out := make([]*resource.Resource[models.UserAuthentication], 0, len(factors)-1)
	out = append(out, factors[:latest]...)
	return append(out, factors[latest+1:]...)
}
