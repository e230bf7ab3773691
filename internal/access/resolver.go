// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package access resolves the strongest access a user has to a file and
// unlocks the file key along the way.
package access

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// Resolver builds resolution scopes.
type Resolver struct {
	unlocker *unlock.Unlocker
}

// NewResolver returns a Resolver unlocking keys through u.
func NewResolver(u *unlock.Unlocker) *Resolver {
	return &Resolver{unlocker: u}
}

// NewScope starts a resolution scope for user. admin is the injected master
// key, or nil to unlock it from the user's AdminAccess record when needed.
// A scope memoizes results and must not outlive the transaction it is used
// with.
func (r *Resolver) NewScope(user unlock.User, admin *unlock.AdminKey) *Scope {
	return &Scope{
		resolver: r,
		user:     user,
		admin:    admin,
		memo:     make(map[memoKey]memoEntry),
		visiting: make(map[models.ID]bool),
	}
}

// AuthorizeLink resolves access through an anyone-with-link grant. fileID
// may name the granted file itself or any of its descendants; a zero fileID
// means the granted file.
func (r *Resolver) AuthorizeLink(ctx context.Context, tx *resource.Tx, accessID, fileID models.ID, min models.AccessLevel) (*Result, error) {
	grantRes, err := resource.Get[models.FileAccess](ctx, tx, accessID)
	if err != nil {
		return nil, err
	}
	grant := grantRes.Data()
	if !grant.Public {
		return nil, ErrNotPublic
	}
	if grant.Level == models.AccessNone || !grant.Level.AtLeast(min) {
		return nil, fmt.Errorf("%w: link grants %s, %s required", ErrAccessDenied, grant.Level, min)
	}

	fa, err := r.unlocker.UnlockPublicFileAccess(grantRes)
	if err != nil {
		return nil, err
	}
	target, err := resource.Get[models.File](ctx, tx, grant.FileID)
	if err != nil {
		return nil, err
	}
	base, err := r.unlocker.FileFromAccess(fa, target)
	if err != nil {
		return nil, err
	}

	if fileID.IsZero() {
		fileID = grant.FileID
	}

	file, err := r.descend(ctx, tx, base, fileID, make(map[models.ID]bool))
	if err != nil {
		return nil, err
	}
	return &Result{File: file, Level: grant.Level, Via: ViaLink, Grant: grantRes}, nil
}

// descend unlocks fileID from base, which must be fileID or one of its
// ancestors.
func (r *Resolver) descend(ctx context.Context, tx *resource.Tx, base unlock.File, fileID models.ID, seen map[models.ID]bool) (unlock.File, error) {
	if fileID == base.ID() {
		return base, nil
	}
	if seen[fileID] {
		return unlock.File{}, ErrCycle
	}
	seen[fileID] = true

	fileRes, err := resource.Get[models.File](ctx, tx, fileID)
	if err != nil {
		return unlock.File{}, err
	}
	f := fileRes.Data()
	if f.IsRoot() {
		return unlock.File{}, fmt.Errorf("%w: %s is outside the shared tree", ErrAccessDenied, fileID)
	}

	parent, err := r.descend(ctx, tx, base, f.ParentID, seen)
	if err != nil {
		return unlock.File{}, err
	}
	return r.unlocker.UnlockChildFile(parent, fileRes)
}

type memoKey struct {
	file models.ID
	min  models.AccessLevel
}

type memoEntry struct {
	result *Result
	err    error
}

// Scope resolves access for one user and remembers every answer.
type Scope struct {
	resolver *Resolver
	user     unlock.User
	admin    *unlock.AdminKey

	adminLoaded bool
	groups      []unlock.Group
	groupsReady bool

	memo     map[memoKey]memoEntry
	visiting map[models.ID]bool
}

// User returns the user the scope resolves for.
func (s *Scope) User() unlock.User {
	return s.user
}

// FindAccess returns the strongest access of the scope user to fileID that
// is at least min, in this order: ownership of a root, administrator
// override, an explicit grant to the user or one of the user's groups, and
// inheritance from the parent. Failure is [ErrAccessDenied].
func (s *Scope) FindAccess(ctx context.Context, tx *resource.Tx, fileID models.ID, min models.AccessLevel) (*Result, error) {
	k := memoKey{fileID, min}
	if e, ok := s.memo[k]; ok {
		return e.result, e.err
	}
	if s.visiting[fileID] {
		return nil, ErrCycle
	}
	s.visiting[fileID] = true
	defer delete(s.visiting, fileID)

	res, err := s.findAccess(ctx, tx, fileID, min)
	if err != nil && !errors.Is(err, app.ErrAccessDenied) {
		// store failures are not remembered
		return nil, err
	}
	s.memo[k] = memoEntry{result: res, err: err}
	return res, err
}

func (s *Scope) findAccess(ctx context.Context, tx *resource.Tx, fileID models.ID, min models.AccessLevel) (*Result, error) {
	log := logger.FromContext(ctx)
	u := s.resolver.unlocker

	fileRes, err := resource.Get[models.File](ctx, tx, fileID)
	if err != nil {
		return nil, err
	}
	f := fileRes.Data()

	if f.IsRoot() && f.OwnerUserID == s.user.ID() {
		file, err := u.UnlockRootFile(s.user, fileRes)
		if err != nil {
			return nil, err
		}
		return &Result{File: file, Level: models.AccessFull, Via: ViaOwner, User: s.user}, nil
	}

	admin, err := s.adminKey(ctx, tx)
	if err != nil {
		return nil, err
	}
	if admin != nil {
		file, err := u.UnlockFileAsAdmin(*admin, fileRes)
		if err == nil {
			return &Result{File: file, Level: models.AccessFull, Via: ViaAdmin, User: s.user}, nil
		}
		log.Warn().Err(err).Str("func", "*Scope.findAccess").Stringer("file", fileID).Msg("admin copy of file key does not open")
	}

	if res, err := s.findGrant(ctx, tx, fileRes, min); err != nil || res != nil {
		return res, err
	}

	if f.IsRoot() {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, fileID)
	}

	parent, err := s.FindAccess(ctx, tx, f.ParentID, min)
	if err != nil {
		return nil, err
	}
	file, err := u.UnlockChildFile(parent.File, fileRes)
	if err != nil {
		return nil, err
	}
	return &Result{File: file, Level: parent.Level, Via: ViaInherited, User: s.user, Grant: parent.Grant}, nil
}

type candidate struct {
	grant *resource.Resource[models.FileAccess]
	group *unlock.Group
	level models.AccessLevel
}

// findGrant tries the grants on exactly this file, strongest first. A grant
// that fails to unlock is skipped.
func (s *Scope) findGrant(ctx context.Context, tx *resource.Tx, fileRes *resource.Resource[models.File], min models.AccessLevel) (*Result, error) {
	log := logger.FromContext(ctx)
	u := s.resolver.unlocker

	groups, err := s.userGroups(ctx, tx)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	for grantRes, err := range resource.Query[models.FileAccess](ctx, tx, store.Filter{models.FieldFileID: fileRes.ID().String()}) {
		if err != nil {
			return nil, err
		}
		g := grantRes.Data()
		if g.Public || g.Level == models.AccessNone || !g.Level.AtLeast(min) {
			continue
		}
		if g.UserID == s.user.ID() {
			candidates = append(candidates, candidate{grant: grantRes, level: g.Level})
			continue
		}
		for i := range groups {
			if !g.GroupID.IsZero() && g.GroupID == groups[i].ID() {
				candidates = append(candidates, candidate{grant: grantRes, group: &groups[i], level: g.Level})
			}
		}
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.level, a.level)
	})

	for _, c := range candidates {
		var (
			fa  unlock.FileAccess
			err error
		)
		if c.group != nil {
			fa, err = u.UnlockGroupFileAccess(*c.group, c.grant)
		} else {
			fa, err = u.UnlockFileAccess(s.user, c.grant)
		}
		if err == nil {
			var file unlock.File
			file, err = u.FileFromAccess(fa, fileRes)
			if err == nil {
				return &Result{File: file, Level: c.level, Via: ViaGrant, User: s.user, Grant: c.grant}, nil
			}
		}
		log.Debug().Err(err).Str("func", "*Scope.findGrant").Stringer("grant", c.grant.ID()).Msg("skipping grant that does not unlock")
	}
	return nil, nil
}

// adminKey returns the master key if the scope user is an administrator.
func (s *Scope) adminKey(ctx context.Context, tx *resource.Tx) (*unlock.AdminKey, error) {
	if s.adminLoaded {
		return s.admin, nil
	}

	accessRes, err := resource.FindOne[models.AdminAccess](ctx, tx, store.Filter{models.FieldUserID: s.user.ID().String()})
	if errors.Is(err, resource.ErrNotFound) {
		s.admin = nil
		s.adminLoaded = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.admin == nil {
		keyRes, err := resource.FindOne[models.AdminKey](ctx, tx, nil)
		if err != nil {
			return nil, err
		}
		admin, err := s.resolver.unlocker.UnlockAdminAccess(s.user, accessRes, keyRes)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("func", "*Scope.adminKey").Msg("admin access does not unlock")
			s.adminLoaded = true
			return nil, nil
		}
		s.admin = &admin
	}
	s.adminLoaded = true
	return s.admin, nil
}

// userGroups unlocks every group the scope user is a member of.
func (s *Scope) userGroups(ctx context.Context, tx *resource.Tx) ([]unlock.Group, error) {
	if s.groupsReady {
		return s.groups, nil
	}

	u := s.resolver.unlocker
	for membership, err := range resource.Query[models.GroupMembership](ctx, tx, store.Filter{models.FieldUserID: s.user.ID().String()}) {
		if err != nil {
			return nil, err
		}
		groupRes, err := resource.Get[models.Group](ctx, tx, membership.Data().GroupID)
		if errors.Is(err, resource.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		g, err := u.UnlockGroup(s.user, groupRes, membership)
		if err != nil {
			logger.FromContext(ctx).Debug().Err(err).Str("func", "*Scope.userGroups").Stringer("group", groupRes.ID()).Msg("skipping membership that does not unlock")
			continue
		}
		s.groups = append(s.groups, g)
	}
	s.groupsReady = true
	return s.groups, nil
}
