// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strconv"
	"time"
)

// AuthenticationKind identifies the credential factor a [UserAuthentication]
// belongs to.
type AuthenticationKind int

const (
	// AuthenticationPassword is a login/password factor.
	AuthenticationPassword AuthenticationKind = iota + 1

	// AuthenticationFederated is a factor linked to an external identity
	// provider account (provider + subject).
	AuthenticationFederated

	// AuthenticationSession is a short-lived factor backing a session token.
	AuthenticationSession
)

// String implements fmt.Stringer.
func (k AuthenticationKind) String() string {
	switch k {
	case AuthenticationPassword:
		return "password"
	case AuthenticationFederated:
		return "federated"
	case AuthenticationSession:
		return "session"
	default:
		return "unknown"
	}
}

// UserAuthentication is one credential factor of a user. It carries the KDF
// parameters for the factor's secret and the user's RSA private key sealed
// under the derived key.
type UserAuthentication struct {
	ID     ID                 `json:"id"`
	UserID ID                 `json:"user_id"`
	Kind   AuthenticationKind `json:"kind"`

	// Provider and Subject identify the external account of a federated factor.
	Provider string `json:"provider,omitempty"`
	Subject  string `json:"subject,omitempty"`

	Salt       []byte `json:"salt"`
	Iterations int    `json:"iterations"`

	// EncryptedPrivateKey is the user's PKCS#8 private key encrypted under
	// DeriveKey(secret, Salt, Iterations).
	EncryptedPrivateKey []byte `json:"encrypted_private_key"`

	// ExpiresAt is set for session factors only.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether a session factor has passed its expiry time.
func (a *UserAuthentication) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && now.After(a.ExpiresAt)
}

func (a *UserAuthentication) Collection() string { return CollectionUserAuthentications }
func (a *UserAuthentication) DocumentID() ID { return a.ID }
func (a *UserAuthentication) SetDocumentID(id ID) { a.ID = id }
func (a *UserAuthentication) IndexFields() map[string]string {
	return map[string]string{
		FieldUserID:   a.UserID.String(),
		FieldKind:     strconv.Itoa(int(a.Kind)),
		FieldProvider: a.Provider,
		FieldSubject:  a.Subject,
	}
}
