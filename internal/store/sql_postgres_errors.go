// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresErrorClassifier implements [ErrorClassificator] for PostgreSQL by
// SQLSTATE code. Documents are written by whole-transaction upserts under
// SERIALIZABLE isolation, so serialization failures are the common
// retryable case.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Errors that do not wrap a
// *pgconn.PgError are [NonRetryable].
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	code := sqlState(err)
	if code == "" {
		return NonRetryable
	}
	return ClassifyPgCode(code)
}

// ClassifyPgCode maps a SQLSTATE code to an [ErrorClassification].
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
//
// Retryable:
//   - class 08, connection exceptions;
//   - class 40, transaction rollback (serialization failure, deadlock);
//   - 53300 too_many_connections and 55P03 lock_not_available;
//   - 57P01 admin_shutdown and 57P03 cannot_connect_now.
//
// Integrity violations (class 23) stay non-retryable: a second attempt
// would hit the same constraint.
func ClassifyPgCode(code string) ErrorClassification {
	switch {
	case pgerrcode.IsConnectionException(code),
		pgerrcode.IsTransactionRollback(code):
		return Retryable
	}

	switch code {
	case pgerrcode.TooManyConnections,
		pgerrcode.LockNotAvailable,
		pgerrcode.AdminShutdown,
		pgerrcode.CannotConnectNow:
		return Retryable
	}

	return NonRetryable
}

// sqlState returns the SQLSTATE code wrapped in err, or "".
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
