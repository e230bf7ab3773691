// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/config"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
)

// NewStore builds the document store selected by cfg.Driver. SQL backends
// are migrated before they are returned.
func NewStore(ctx context.Context, cfg config.DB, log *logger.Logger) (Store, error) {
	var db *DB
	var err error

	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn().Str("func", "NewStore").Msg("using in-memory document store, data is not persisted")
		return NewMemoryStore(), nil
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStore").Msg("error migrating database")
		db.Close()
		return nil, err
	}

	return db, nil
}
