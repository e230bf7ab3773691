// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set of a session token.
//
// Subject carries the user ID and ID (jti) the session factor's
// [UserAuthentication] ID. Secret is the factor secret itself: the server
// stores only the salt and the wrapped private key, so whoever holds the
// token can unlock the account until the factor expires or is removed.
type SessionClaims struct {
	jwt.RegisteredClaims

	Secret string `json:"sec"`
}

// SessionToken is an issued or parsed session token.
type SessionToken struct {
	// SignedString is the compact JWS form handed to the client.
	SignedString string `json:"-"`

	UserID           ID        `json:"user_id"`
	AuthenticationID ID        `json:"authentication_id"`
	Secret           string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// String returns the compact JWS form of the token.
func (t SessionToken) String() string {
	return t.SignedString
}
