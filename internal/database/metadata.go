// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/metrics"
	"github.com/Gengsu07/edaduckdb/internal/models"
)

// DistinctValues returns up to limit distinct non-null values of column
// in the filtered table, sorted ascending. Used to populate filter
// option lists.
func (db *DB) DistinctValues(ctx context.Context, column string, limit int) ([]any, error) {
	if !config.IsIdentifier(column) {
		return nil, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, column)
	}
	if limit <= 0 {
		limit = 1000
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stmt := fmt.Sprintf("SELECT DISTINCT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL ORDER BY %[1]s LIMIT ?",
		column, db.table)

	start := time.Now()
	values, err := execute(db, func() ([]any, error) {
		rows, err := db.conn.QueryContext(ctx, stmt, limit)
		if err != nil {
			return nil, err
		}
		defer closeWithLog(rows, "rows")

		out := make([]any, 0)
		for rows.Next() {
			var v any
			if err := rows.Scan(&v); err != nil {
				return nil, err
			}
			out = append(out, normalizeValue(v))
		}
		return out, rows.Err()
	})
	metrics.RecordDBQuery("distinct", db.table, time.Since(start), err)
	if err != nil {
		db.qlog.LogFailed(ctx, "distinct", stmt, 1, err)
		return nil, fmt.Errorf("distinct values of %s: %w", column, err)
	}
	return values, nil
}

// TableInfo describes the columns of table as DuckDB sees it. An empty
// table describes the filtered table.
func (db *DB) TableInfo(ctx context.Context, table string) ([]models.ColumnSchema, error) {
	if table == "" {
		table = db.table
	}
	if !isTableReference(table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stmt := fmt.Sprintf("PRAGMA table_info(%s)", quoteLiteral(table))
	start := time.Now()
	columns, err := execute(db, func() ([]models.ColumnSchema, error) {
		rows, err := db.conn.QueryContext(ctx, stmt)
		if err != nil {
			return nil, err
		}
		defer closeWithLog(rows, "rows")

		var out []models.ColumnSchema
		for rows.Next() {
			var (
				cid     int
				col     models.ColumnSchema
				notNull bool
				dflt    sql.NullString
				pk      bool
			)
			if err := rows.Scan(&cid, &col.Name, &col.DataType, &notNull, &dflt, &pk); err != nil {
				return nil, err
			}
			col.OrdinalIndex = cid + 1
			col.Nullable = !notNull
			col.PrimaryKey = pk
			if dflt.Valid {
				d := dflt.String
				col.Default = &d
			}
			out = append(out, col)
		}
		return out, rows.Err()
	})
	metrics.RecordDBQuery("table_info", db.table, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("table info for %s: %w", table, err)
	}
	return columns, nil
}

// Version returns the DuckDB library version.
func (db *DB) Version(ctx context.Context) (string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version string
	if err := db.queryRowWithHardTimeout(ctx, "SELECT version()", &version); err != nil {
		return "", err
	}
	return version, nil
}

// isTableReference reports whether ref is one to three dot-separated
// identifiers.
func isTableReference(ref string) bool {
	parts := strings.Split(ref, ".")
	if len(parts) > 3 {
		return false
	}
	for _, p := range parts {
		if !config.IsIdentifier(p) {
			return false
		}
	}
	return true
}
