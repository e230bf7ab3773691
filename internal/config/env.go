// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// secretFiles names files holding secrets that should not be passed through
// the environment directly, such as mounted container secrets. The env
// `file` option reads the file the variable points at.
type secretFiles struct {
	SessionSignKey      string `env:"APP_SESSION_SIGN_KEY_FILE,file"`
	AdminMasterPassword string `env:"APP_ADMIN_MASTER_PASSWORD_FILE,file"`
}

// parseEnv populates cfg from environment variables using the caarlos0/env
// library. Struct fields are mapped via their `env` and `envPrefix` tags
// defined on [StructuredConfig] and its nested types.
//
// Secrets missing from the environment are then taken from the files named
// by the *_FILE variables. A variable set directly wins over its file.
func parseEnv(cfg *StructuredConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	var files secretFiles
	if err := env.Parse(&files); err != nil {
		return fmt.Errorf("error reading secret files: %w", err)
	}
	if cfg.App.SessionSignKey == "" {
		cfg.App.SessionSignKey = strings.TrimSpace(files.SessionSignKey)
	}
	if cfg.App.AdminMasterPassword == "" {
		cfg.App.AdminMasterPassword = strings.TrimSpace(files.AdminMasterPassword)
	}

	return nil
}
