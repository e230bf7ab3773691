// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package access

import (
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// Via tells how an access result was obtained.
type Via int

const (
	ViaOwner Via = iota + 1
	ViaAdmin
	ViaGrant
	ViaInherited
	ViaLink
)

// String implements fmt.Stringer.
func (v Via) String() string {
	switch v {
	case ViaOwner:
		return "owner"
	case ViaAdmin:
		return "admin"
	case ViaGrant:
		return "grant"
	case ViaInherited:
		return "inherited"
	case ViaLink:
		return "link"
	default:
		return "unknown"
	}
}

// Result is a successful access resolution: the unlocked file, the
// effective level and the path that produced it.
type Result struct {
	File  unlock.File
	Level models.AccessLevel
	Via   Via

	// User is the resolving user. It is zero for link access.
	User unlock.User

	// Grant is the explicit grant the level comes from, directly or through
	// inheritance. It is nil for owner and admin access.
	Grant *resource.Resource[models.FileAccess]
}

// Allows reports whether the result grants at least min.
func (r *Result) Allows(min models.AccessLevel) bool {
	return r != nil && r.Level.AtLeast(min)
}
