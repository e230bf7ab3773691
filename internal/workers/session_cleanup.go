// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/logger"
)

// SessionCleanupWorker periodically deletes expired session factors.
type SessionCleanupWorker struct {
	cleaner  SessionCleaner
	interval time.Duration
	logger   *logger.Logger
}

func NewSessionCleanupWorker(cleaner SessionCleaner, interval time.Duration, logger *logger.Logger) *SessionCleanupWorker {
	return &SessionCleanupWorker{cleaner: cleaner, interval: interval, logger: logger.Component("session-cleanup")}
}

// Run cleans up once per interval until ctx is cancelled. Cleanup errors are
// logged and the next tick retries.
func (w *SessionCleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	ctx = w.logger.WithContext(ctx)
	w.logger.Info().Str("func", "*SessionCleanupWorker.Run").Dur("interval", w.interval).Msg("session cleanup started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("func", "*SessionCleanupWorker.Run").Msg("session cleanup stopped")
			return
		case <-ticker.C:
			removed, err := w.cleaner.CleanupExpiredSessions(ctx)
			if err != nil {
				w.logger.Err(err).Str("func", "*SessionCleanupWorker.Run").Msg("session cleanup failed")
				continue
			}
			w.logger.Debug().Str("func", "*SessionCleanupWorker.Run").Int("removed", removed).Msg("session cleanup tick")
		}
	}
}
