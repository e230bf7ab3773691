// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Block size bounds accepted for a deployment.
const (
	MinBlockSize = 4 * 1024
	MaxBlockSize = 16 * 1024 * 1024
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.DB.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if cfg.Storage.DB.DSN == "" {
			return fmt.Errorf("%w: empty DSN for driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if cfg.Storage.Blocks.BlockSize < MinBlockSize || cfg.Storage.Blocks.BlockSize > MaxBlockSize {
		return fmt.Errorf("%w: block size %d out of [%d, %d]", ErrInvalidStorageConfigs,
			cfg.Storage.Blocks.BlockSize, MinBlockSize, MaxBlockSize)
	}

	if cfg.App.SessionSignKey == "" || cfg.App.SessionDuration <= 0 {
		return fmt.Errorf("%w: session sign key and duration are required", ErrInvalidAppConfigs)
	}

	if cfg.App.KDFIterations <= 0 || cfg.App.RSABits < 2048 {
		return fmt.Errorf("%w: weak key parameters", ErrInvalidAppConfigs)
	}

	if _, err := zerolog.ParseLevel(cfg.App.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAppConfigs, err)
	}

	if cfg.Streams.IdleTimeout <= 0 {
		return ErrInvalidStreamConfigs
	}

	if cfg.Workers.SessionCleanupInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
