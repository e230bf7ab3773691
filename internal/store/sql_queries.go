// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const documentsTable = "documents"

// fieldNamePattern guards the field names spliced into filter expressions.
var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// dialect captures the per-database differences of the document schema.
type dialect struct {
	name        string
	placeholder sq.PlaceholderFormat
	isolation   sql.IsolationLevel
	// fieldExpr renders the SQL expression extracting an indexed field as
	// text from the JSON fields column.
	fieldExpr func(field string) string
}

var (
	postgresDialect = dialect{
		name:        "postgres",
		placeholder: sq.Dollar,
		isolation:   sql.LevelSerializable,
		fieldExpr: func(field string) string {
			return fmt.Sprintf("fields->>'%s'", field)
		},
	}

	sqliteDialect = dialect{
		name:        "sqlite",
		placeholder: sq.Question,
		isolation:   sql.LevelDefault,
		fieldExpr: func(field string) string {
			return fmt.Sprintf("json_extract(fields, '$.%s')", field)
		},
	}
)

func (d dialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

// getDocument builds
//
//	SELECT fields, body FROM documents WHERE collection = ? AND id = ?
func (d dialect) getDocument(collection, id string) (string, []any, error) {
	return d.builder().
		Select("fields", "body").
		From(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}

// queryDocuments builds a SELECT of every document of collection whose
// indexed fields equal filter, ordered by id.
func (d dialect) queryDocuments(collection string, filter Filter) (string, []any, error) {
	q := d.builder().
		Select("id", "fields", "body").
		From(documentsTable).
		Where(sq.Eq{"collection": collection})

	for _, field := range slices.Sorted(maps.Keys(filter)) {
		if !fieldNamePattern.MatchString(field) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		q = q.Where(sq.Expr(d.fieldExpr(field)+" = ?", filter[field]))
	}

	return q.OrderBy("id").ToSql()
}

// upsertDocument builds an INSERT that replaces fields and body of an
// existing (collection, id) row.
func (d dialect) upsertDocument(collection, id, fields string, body []byte, now time.Time) (string, []any, error) {
	return d.builder().
		Insert(documentsTable).
		Columns("collection", "id", "fields", "body", "updated_at").
		Values(collection, id, fields, body, now).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET " +
			"fields = excluded.fields, body = excluded.body, updated_at = excluded.updated_at").
		ToSql()
}

// deleteDocument builds
//
//	DELETE FROM documents WHERE collection = ? AND id = ?
func (d dialect) deleteDocument(collection, id string) (string, []any, error) {
	return d.builder().
		Delete(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
}
