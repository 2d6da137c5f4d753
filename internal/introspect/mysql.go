// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package introspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Gengsu07/edaduckdb/internal/models"
)

type mysqlDialect struct{}

func (mysqlDialect) tables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`
	return queryStrings(ctx, db, q, schema)
}

func (mysqlDialect) columns(ctx context.Context, db *sql.DB, schema, table string) ([]models.ColumnSchema, error) {
	const q = `
		SELECT column_name, column_type, is_nullable, column_default, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name = ?
		ORDER BY ordinal_position`

	rows, err := db.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []models.ColumnSchema
	for rows.Next() {
		var (
			col      models.ColumnSchema
			nullable string
			dflt     sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &dflt, &col.OrdinalIndex); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		if dflt.Valid {
			col.Default = &dflt.String
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (mysqlDialect) primaryKeys(ctx context.Context, db *sql.DB, schema, table string) ([]string, error) {
	const q = `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
		  AND table_name = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`
	return queryStrings(ctx, db, q, schema, table)
}

func (mysqlDialect) foreignKeys(ctx context.Context, db *sql.DB, schema, table string) ([]models.ForeignKeySchema, error) {
	const q = `
		SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
		  AND table_name = ?
		  AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position`

	rows, err := db.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []models.ForeignKeySchema
	for rows.Next() {
		var fk models.ForeignKeySchema
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (mysqlDialect) indexes(ctx context.Context, db *sql.DB, schema, table string) ([]models.IndexSchema, error) {
	const q = `
		SELECT index_name,
			GROUP_CONCAT(column_name ORDER BY seq_in_index),
			MAX(non_unique)
		FROM information_schema.statistics
		WHERE table_schema = ?
		  AND table_name = ?
		  AND index_name != 'PRIMARY'
		GROUP BY index_name
		ORDER BY index_name`

	rows, err := db.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.IndexSchema
	for rows.Next() {
		var (
			idx       models.IndexSchema
			columns   string
			nonUnique int
		)
		if err := rows.Scan(&idx.Name, &columns, &nonUnique); err != nil {
			return nil, err
		}
		idx.Columns = strings.Split(columns, ",")
		idx.Unique = nonUnique == 0
		out = append(out, idx)
	}
	return out, rows.Err()
}
