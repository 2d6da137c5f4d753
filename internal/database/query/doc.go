// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package query compiles ad-hoc filter conditions into parameterized SQL.
//
// A Builder is bound to one table. Callers add conditions (column, semantic
// type, operator, value), optionally set a row cap, and then ask for a SELECT
// or COUNT statement. The result is a Statement: the SQL text and the bind
// arguments, in the exact order the placeholders appear in the text.
//
// # Overview
//
//	b, err := query.NewBuilder("db.public.ppmpkm")
//	if err != nil {
//	    return err
//	}
//	err = b.AddConditions(
//	    []string{"KDMAP", "DATEBAYAR", "NOMINAL"},
//	    []string{"string", "datetime", "integer"},
//	    []string{"IN", "", ">"},
//	    []any{[]string{"411125", "411126"}, []string{"2024-01-01", "2024-12-15"}, 1000},
//	)
//	stmt := b.BuildSelect()
//	// stmt.SQL:  SELECT * FROM db.public.ppmpkm WHERE KDMAP IN (?,?)
//	//            AND DATEBAYAR BETWEEN ? AND ? AND NOMINAL > ? LIMIT 100
//	// stmt.Args: [411125 411126 2024-01-01 2024-12-15 1000]
//	rows, err := conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
//
// # Fragment Selection
//
// The fragment for each condition is chosen from its semantic type and the
// shape of its value:
//
//	String   Scalar        col = ?
//	String   Many          col IN (?,?,...)
//	Numeric  Scalar        col {op} ?
//	Numeric  Range         col BETWEEN ? AND ?
//	Numeric  Many (len 2)  col BETWEEN ? AND ?
//	Numeric  Many (other)  (col {op} ? OR col {op} ? ...)
//	DateTime Scalar        col {op} ?
//	DateTime Range/Many    col BETWEEN ? AND ?   (first two items)
//
// A two-element Many on a numeric column is read as a range. Callers that
// want an OR-chain of exactly two values must add two conditions instead.
// The operator is ignored for membership and range forms.
//
// # Limit Policy
//
// SELECT statements get LIMIT 100 by default, the custom cap after
// SetCustomLimit, or nothing when the builder was created WithoutLimit.
// COUNT statements never carry a LIMIT.
//
// # SQL Injection Boundary
//
// Values are always bound as arguments. Column names and operator tokens are
// written into the SQL text as given; they must come from trusted metadata
// (see internal/filters), never from raw end-user text.
//
// # Thread Safety
//
// A Builder has a single owner. Create one per query intent, or call
// ClearConditions to reuse it for the next filter set on the same table.
// Statements returned by BuildSelect and BuildCount own their argument
// slices and may be shared freely.
package query
