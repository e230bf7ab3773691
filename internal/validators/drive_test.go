// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"strings"
	"testing"

	"github.com/MKhiriev/go-drive-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// TestValidate_Dispatch
// ---------------------------------------------------------------------------

func TestNewDriveValidator(t *testing.T) {
	v := NewDriveValidator()
	require.NotNil(t, v)
}

func TestValidate_Dispatch(t *testing.T) {
	v := NewDriveValidator()
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		err := v.Validate(ctx, "a string")
		require.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("User value and pointer", func(t *testing.T) {
		u := models.User{Login: "alice"}
		require.NoError(t, v.Validate(ctx, u))
		require.NoError(t, v.Validate(ctx, &u))
	})

	t.Run("File value and pointer", func(t *testing.T) {
		f := models.File{Name: "a.txt"}
		require.NoError(t, v.Validate(ctx, f))
		require.NoError(t, v.Validate(ctx, &f))
	})

	t.Run("FileContent and Group", func(t *testing.T) {
		require.NoError(t, v.Validate(ctx, models.FileContent{Name: "thumbnail"}))
		require.NoError(t, v.Validate(ctx, &models.Group{Name: "team"}))
	})

	t.Run("unknown field", func(t *testing.T) {
		err := v.Validate(ctx, models.File{Name: "a.txt"}, "size")
		require.ErrorIs(t, err, ErrUnknownField)
	})
}

// ---------------------------------------------------------------------------
// TestValidateUser
// ---------------------------------------------------------------------------

func TestValidateUser(t *testing.T) {
	v := NewDriveValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		user    models.User
		fields  []string
		wantErr error
	}{
		{name: "valid", user: models.User{Login: "alice", Name: "Alice Smith"}, fields: []string{FieldLogin, FieldName}},
		{name: "empty name is allowed", user: models.User{Login: "alice"}, fields: []string{FieldLogin, FieldName}},
		{name: "empty login", user: models.User{}, wantErr: ErrInvalidLogin},
		{name: "login with space", user: models.User{Login: "al ice"}, wantErr: ErrInvalidLogin},
		{name: "login too long", user: models.User{Login: strings.Repeat("a", maxLoginLength+1)}, wantErr: ErrInvalidLogin},
		{name: "name with control char", user: models.User{Login: "alice", Name: "A\x00"}, fields: []string{FieldName}, wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.user, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidateCredential
// ---------------------------------------------------------------------------

func TestValidateCredential(t *testing.T) {
	v := NewDriveValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		cred    models.Credential
		fields  []string
		wantErr error
	}{
		{
			name: "password",
			cred: models.Credential{Kind: models.AuthenticationPassword, Login: "alice", Secret: "pw"},
		},
		{
			name:    "password without secret",
			cred:    models.Credential{Kind: models.AuthenticationPassword, Login: "alice"},
			wantErr: ErrEmptySecret,
		},
		{
			name:    "password secret too long",
			cred:    models.Credential{Kind: models.AuthenticationPassword, Login: "alice", Secret: strings.Repeat("x", maxSecretLength+1)},
			wantErr: ErrSecretTooLong,
		},
		{
			name: "federated",
			cred: models.Credential{Kind: models.AuthenticationFederated, Provider: "google", Subject: "42", Secret: "k"},
		},
		{
			name:    "federated without subject",
			cred:    models.Credential{Kind: models.AuthenticationFederated, Provider: "google", Secret: "k"},
			wantErr: ErrEmptySubject,
		},
		{
			name:    "federated without provider",
			cred:    models.Credential{Kind: models.AuthenticationFederated, Subject: "42", Secret: "k"},
			wantErr: ErrEmptyProvider,
		},
		{
			name: "session",
			cred: models.Credential{Kind: models.AuthenticationSession, Token: "jwt"},
		},
		{
			name:    "session without token",
			cred:    models.Credential{Kind: models.AuthenticationSession},
			wantErr: ErrEmptyToken,
		},
		{
			name:    "unknown kind",
			cred:    models.Credential{Kind: models.AuthenticationKind(99)},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "scoped to kind",
			cred:    models.Credential{Kind: models.AuthenticationKind(99)},
			fields:  []string{FieldKind},
			wantErr: ErrInvalidKind,
		},
		{
			name:   "scoped to secret only",
			cred:   models.Credential{Kind: models.AuthenticationPassword, Secret: "pw"},
			fields: []string{FieldSecret},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, &tt.cred, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidateFileName
// ---------------------------------------------------------------------------

func TestValidateFileName(t *testing.T) {
	v := NewDriveValidator()
	ctx := context.Background()

	valid := []string{"a.txt", "My Drive", ".hidden", "résumé.pdf", strings.Repeat("n", maxNameLength)}
	for _, name := range valid {
		assert.NoError(t, v.Validate(ctx, models.File{Name: name}), name)
	}

	invalid := []string{"", "   ", ".", "..", "a/b", "tab\tname", strings.Repeat("n", maxNameLength+1), "\xff"}
	for _, name := range invalid {
		assert.ErrorIs(t, v.Validate(ctx, models.File{Name: name}), ErrInvalidFileName, name)
	}

	t.Run("content slots may contain slashes", func(t *testing.T) {
		assert.NoError(t, v.Validate(ctx, models.FileContent{Name: "image/png"}))
		assert.ErrorIs(t, v.Validate(ctx, models.FileContent{Name: ""}), ErrInvalidName)
	})

	t.Run("groups need a name", func(t *testing.T) {
		assert.ErrorIs(t, v.Validate(ctx, models.Group{Name: " "}), ErrInvalidName)
	})
}
