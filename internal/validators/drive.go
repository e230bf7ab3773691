// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MKhiriev/go-drive-keeper/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a subset
// of fields (field-level scoping).
const (
	// FieldLogin targets the unique login of a user or password credential.
	FieldLogin = "login"

	// FieldName targets the display name of a user, or the name of a file,
	// content slot or group.
	FieldName = "name"

	// FieldKind targets the credential kind.
	FieldKind = "kind"

	// FieldSecret targets the password or provider-issued secret.
	FieldSecret = "secret"

	// FieldProvider and FieldSubject target the federated identity.
	FieldProvider = "provider"
	FieldSubject  = "subject"

	// FieldToken targets a signed session token.
	FieldToken = "token"
)

const (
	maxLoginLength  = 64
	maxNameLength   = 255
	maxSecretLength = 1024
)

// DriveValidator implements the Validator interface for the caller-supplied
// parts of users, credentials, files, content slots and groups.
//
// It supports both value and pointer forms of every model type and allows
// optional field-level scoping via variadic field name arguments.
type DriveValidator struct {
}

func NewDriveValidator() Validator {
	return &DriveValidator{}
}

// Validate dispatches validation to the appropriate type-specific method
// based on the dynamic type of obj.
//
// Supported types:
//   - models.User / *models.User
//   - models.Credential / *models.Credential
//   - models.File / *models.File
//   - models.FileContent / *models.FileContent
//   - models.Group / *models.Group
//
// Returns ErrUnsupportedType if obj does not match any known model.
func (v *DriveValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.User:
		return v.validateUser(ctx, value, fields...)
	case *models.User:
		return v.validateUser(ctx, *value, fields...)

	case models.Credential:
		return v.validateCredential(ctx, value, fields...)
	case *models.Credential:
		return v.validateCredential(ctx, *value, fields...)

	case models.File:
		return v.validateNamed(value.Name, ErrInvalidFileName, isValidFileName, fields...)
	case *models.File:
		return v.validateNamed(value.Name, ErrInvalidFileName, isValidFileName, fields...)

	case models.FileContent:
		return v.validateNamed(value.Name, ErrInvalidName, isValidName, fields...)
	case *models.FileContent:
		return v.validateNamed(value.Name, ErrInvalidName, isValidName, fields...)

	case models.Group:
		return v.validateNamed(value.Name, ErrInvalidName, isValidName, fields...)
	case *models.Group:
		return v.validateNamed(value.Name, ErrInvalidName, isValidName, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateUser validates the caller-chosen parts of a user.
//
// Default validated fields: Login. The display name is optional but, when
// FieldName is requested and the name is set, it must be printable.
func (v *DriveValidator) validateUser(_ context.Context, user models.User, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin}
	}

	for _, f := range fields {
		switch f {
		case FieldLogin:
			if !isValidLogin(user.Login) {
				return ErrInvalidLogin
			}
		case FieldName:
			if user.Name != "" && !isValidName(user.Name) {
				return ErrInvalidName
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateCredential validates the material presented for one credential
// kind. Default fields depend on Kind:
//   - password:  Login, Secret;
//   - federated: Provider, Subject, Secret;
//   - session:   Token.
func (v *DriveValidator) validateCredential(_ context.Context, cred models.Credential, fields ...string) error {
	if len(fields) == 0 {
		switch cred.Kind {
		case models.AuthenticationPassword:
			fields = []string{FieldLogin, FieldSecret}
		case models.AuthenticationFederated:
			fields = []string{FieldProvider, FieldSubject, FieldSecret}
		case models.AuthenticationSession:
			fields = []string{FieldToken}
		default:
			return ErrInvalidKind
		}
	}

	for _, f := range fields {
		switch f {
		case FieldKind:
			if cred.Kind != models.AuthenticationPassword &&
				cred.Kind != models.AuthenticationFederated &&
				cred.Kind != models.AuthenticationSession {
				return ErrInvalidKind
			}
		case FieldLogin:
			if !isValidLogin(cred.Login) {
				return ErrInvalidLogin
			}
		case FieldSecret:
			if cred.Secret == "" {
				return ErrEmptySecret
			}
			if len(cred.Secret) > maxSecretLength {
				return ErrSecretTooLong
			}
		case FieldProvider:
			if strings.TrimSpace(cred.Provider) == "" {
				return ErrEmptyProvider
			}
		case FieldSubject:
			if strings.TrimSpace(cred.Subject) == "" {
				return ErrEmptySubject
			}
		case FieldToken:
			if cred.Token == "" {
				return ErrEmptyToken
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateNamed validates documents whose only caller-supplied field is a
// name. Default validated fields: Name.
func (v *DriveValidator) validateNamed(name string, invalid error, valid func(string) bool, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldName}
	}

	for _, f := range fields {
		switch f {
		case FieldName:
			if !valid(name) {
				return invalid
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// isValidLogin reports whether login is non-empty, at most maxLoginLength
// bytes and free of whitespace and control characters.
func isValidLogin(login string) bool {
	if login == "" || len(login) > maxLoginLength || !utf8.ValidString(login) {
		return false
	}
	for _, r := range login {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// isValidName reports whether name is non-blank UTF-8 of at most
// maxNameLength bytes without control characters.
func isValidName(name string) bool {
	if strings.TrimSpace(name) == "" || len(name) > maxNameLength || !utf8.ValidString(name) {
		return false
	}
	return strings.IndexFunc(name, unicode.IsControl) < 0
}

// isValidFileName additionally rejects path separators and the "." and ".."
// entries.
func isValidFileName(name string) bool {
	if !isValidName(name) {
		return false
	}
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsRune(name, '/')
}
