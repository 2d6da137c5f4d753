// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package database

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Gengsu07/edaduckdb/internal/database/query"
	"github.com/Gengsu07/edaduckdb/internal/metrics"
)

// ResultSet holds the rows of one SELECT, with cell values normalized to
// JSON-friendly Go types.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (r *ResultSet) Len() int { return len(r.Rows) }

// Select runs a SELECT statement built by query.Builder.
func (db *DB) Select(ctx context.Context, stmt query.Statement) (*ResultSet, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rs, err := execute(db, func() (*ResultSet, error) {
		return db.selectRows(ctx, stmt)
	})
	elapsed := time.Since(start)

	metrics.RecordDBQuery("select", db.table, elapsed, err)
	if err != nil {
		db.qlog.LogFailed(ctx, "select", stmt.SQL, len(stmt.Args), err)
		return nil, fmt.Errorf("select failed: %w", err)
	}

	metrics.RecordRows(db.table, rs.Len())
	db.qlog.LogExecuted(ctx, "select", stmt.SQL, len(stmt.Args), int64(rs.Len()), elapsed)
	db.logIfSlow(ctx, "select", stmt.SQL, elapsed)
	return rs, nil
}

func (db *DB) selectRows(ctx context.Context, stmt query.Statement) (*ResultSet, error) {
	rows, err := db.conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: columns, Rows: make([][]any, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Count runs a COUNT statement and returns the single count.
func (db *DB) Count(ctx context.Context, stmt query.Statement) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	n, err := execute(db, func() (int64, error) {
		var count int64
		err := db.conn.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&count)
		return count, err
	})
	elapsed := time.Since(start)

	metrics.RecordDBQuery("count", db.table, elapsed, err)
	if err != nil {
		db.qlog.LogFailed(ctx, "count", stmt.SQL, len(stmt.Args), err)
		return 0, fmt.Errorf("count failed: %w", err)
	}

	db.qlog.LogExecuted(ctx, "count", stmt.SQL, len(stmt.Args), 1, elapsed)
	db.logIfSlow(ctx, "count", stmt.SQL, elapsed)
	return n, nil
}

func (db *DB) logIfSlow(ctx context.Context, operation, sql string, elapsed time.Duration) {
	if db.slowThreshold > 0 && elapsed > db.slowThreshold {
		db.qlog.LogSlow(ctx, operation, sql, elapsed, db.slowThreshold)
	}
}

// normalizeValue converts driver values that do not encode cleanly as
// JSON. HUGEINT arrives as *big.Int, DECIMAL as a type with Float64.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case *big.Int:
		if val == nil {
			return nil
		}
		if val.IsInt64() {
			return val.Int64()
		}
		return val.String()
	case interface{ Float64() float64 }:
		return val.Float64()
	default:
		return v
	}
}
