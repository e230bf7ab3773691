// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// Default values applied to every field left empty by the other sources.
const (
	DefaultSessionIssuer          = "go-drive-keeper"
	DefaultSessionDuration        = 24 * time.Hour
	DefaultKDFIterations          = 600_000
	DefaultRSABits                = 2048
	DefaultDriver                 = DriverMemory
	DefaultBlockSize              = 256 * 1024
	DefaultStreamIdleTimeout      = 5 * time.Minute
	DefaultSessionCleanupInterval = 10 * time.Minute
	DefaultLogLevel               = "info"
)

// Defaults returns the built-in configuration layer.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			SessionIssuer:   DefaultSessionIssuer,
			SessionDuration: DefaultSessionDuration,
			KDFIterations:   DefaultKDFIterations,
			RSABits:         DefaultRSABits,
			LogLevel:        DefaultLogLevel,
		},
		Storage: Storage{
			DB: DB{
				Driver: DefaultDriver,
			},
			Blocks: Blocks{
				BlockSize: DefaultBlockSize,
			},
		},
		Streams: Streams{
			IdleTimeout: DefaultStreamIdleTimeout,
		},
		Workers: Workers{
			SessionCleanupInterval: DefaultSessionCleanupInterval,
		},
	}
}
