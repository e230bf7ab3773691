// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
	"fmt"
	"time"
)

// ParseFlags parses all configuration flags from args.
//
// Flags:
//
//	-driver document store driver (postgres, sqlite, memory)
//	-d database DSN
//	-c/-config json file path with configs
//	-session-sign-key session token signing key
//	-session-issuer session token issuer name
//	-session-duration session duration (e.g., "1h", "30m")
//	-kdf-iterations PBKDF2 iterations for new credentials
//	-rsa-bits RSA key size
//	-block-size content block size in bytes
//	-skip-checksums disable block checksums
//	-stream-idle-timeout idle timeout of open streams
//	-session-cleanup-interval period of the session cleanup worker
//	-log-level minimum log level
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-drive-keeper", flag.ContinueOnError)

	var driver, databaseDSN, jsonConfigPath string
	var sessionSignKey, sessionIssuer, logLevel string
	var sessionDuration, idleTimeout, cleanupInterval time.Duration
	var kdfIterations, rsaBits, blockSize int
	var skipChecksums bool

	fs.StringVar(&driver, "driver", "", "Document store driver (postgres, sqlite, memory)")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&sessionSignKey, "session-sign-key", "", "Session token signing key")
	fs.StringVar(&sessionIssuer, "session-issuer", "", "Session token issuer")
	fs.DurationVar(&sessionDuration, "session-duration", 0, "Session duration (e.g., 1h, 30m)")
	fs.IntVar(&kdfIterations, "kdf-iterations", 0, "PBKDF2 iterations for new credentials")
	fs.IntVar(&rsaBits, "rsa-bits", 0, "RSA key size in bits")
	fs.IntVar(&blockSize, "block-size", 0, "Content block size in bytes")
	fs.BoolVar(&skipChecksums, "skip-checksums", false, "Disable block checksums")
	fs.DurationVar(&idleTimeout, "stream-idle-timeout", 0, "Idle timeout of open streams")
	fs.DurationVar(&cleanupInterval, "session-cleanup-interval", 0, "Session cleanup period")
	fs.StringVar(&logLevel, "log-level", "", "Minimum log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			SessionSignKey:  sessionSignKey,
			SessionIssuer:   sessionIssuer,
			SessionDuration: sessionDuration,
			KDFIterations:   kdfIterations,
			RSABits:         rsaBits,
			LogLevel:        logLevel,
		},
		Storage: Storage{
			DB: DB{
				Driver: driver,
				DSN:    databaseDSN,
			},
			Blocks: Blocks{
				BlockSize:     blockSize,
				SkipChecksums: skipChecksums,
			},
		},
		Streams: Streams{
			IdleTimeout: idleTimeout,
		},
		Workers: Workers{
			SessionCleanupInterval: cleanupInterval,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}
