// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-drive-keeper/models"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateSessionToken creates a signed HMAC-SHA256 session token.
//
// The token includes the following claims:
//   - Issuer    (iss): identifies the service that issued the token
//   - Subject   (sub): the user ID
//   - ID        (jti): the session factor (UserAuthentication) ID
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus tokenDuration
//   - sec:             the session factor secret
//
// All parameters are required. Returns an error if any of them are empty or zero.
//
// Example usage:
//
//	token, err := utils.GenerateSessionToken("drive", userID, authID, secret, time.Hour, "sign-key")
func GenerateSessionToken(issuer string, userID, authID models.ID, secret string, tokenDuration time.Duration, signKey string) (models.SessionToken, error) {
	if issuer == "" || tokenDuration == 0 || signKey == "" || secret == "" || userID.IsZero() || authID.IsZero() {
		return models.SessionToken{}, errors.New("invalid params for generating session token")
	}

	now := time.Now()
	expiresAt := now.Add(tokenDuration)
	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			ID:        authID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Secret: secret,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.SessionToken{}, fmt.Errorf("error occurred during signing session token: %w", err)
	}

	return models.SessionToken{
		SignedString:     tokenString,
		UserID:           userID,
		AuthenticationID: authID,
		Secret:           secret,
		ExpiresAt:        claims.ExpiresAt.Time,
	}, nil
}

// ValidateAndParseSessionToken validates the given session token string and
// extracts its claims.
//
// Validation includes:
//   - Signature verification using the provided sign key (HS256 only)
//   - Issuer (iss) claim check against the provided tokenIssuer
//   - Expiration (exp) claim check
//   - Subject (sub) and ID (jti) claims parse as document IDs
//   - a non-empty session secret
//
// Example usage:
//
//	token, err := utils.ValidateAndParseSessionToken(raw, "sign-key", "drive")
//	if err != nil {
//	    // handle invalid or expired token
//	}
func ValidateAndParseSessionToken(tokenString, tokenSignKey, tokenIssuer string) (models.SessionToken, error) {
	claims := &models.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.SessionToken{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	userID, err := models.ParseID(claims.Subject)
	if err != nil {
		return models.SessionToken{}, fmt.Errorf("error occurred during parsing subject: %w", err)
	}
	authID, err := models.ParseID(claims.ID)
	if err != nil {
		return models.SessionToken{}, fmt.Errorf("error occurred during parsing token id: %w", err)
	}
	if claims.Secret == "" {
		return models.SessionToken{}, errors.New("empty session secret")
	}

	return models.SessionToken{
		SignedString:     tokenString,
		UserID:           userID,
		AuthenticationID: authID,
		Secret:           claims.Secret,
		ExpiresAt:        claims.ExpiresAt.Time,
	}, nil
}
