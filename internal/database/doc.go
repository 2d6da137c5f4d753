// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

/*
Package database runs filter statements on DuckDB.

DuckDB is the only engine the explorer talks to. The source database is
attached into it at startup through the matching scanner extension:

	postgres  INSTALL postgres; ATTACH 'dbname=... host=...' AS db (TYPE postgres, READ_ONLY)
	mysql     INSTALL mysql;    ATTACH 'host=... database=...' AS db (TYPE mysql, READ_ONLY)
	sqlite    INSTALL sqlite;   ATTACH '/path/file.db' AS db (TYPE sqlite, READ_ONLY)
	duckdb    ATTACH '/path/file.duckdb' AS db (READ_ONLY)
	none      tables live in the local DuckDB file

Statements come from the query subpackage, which builds the SQL text and
its positional arguments. This package executes them:

	b, _ := query.NewBuilder(db.TableReference())
	_ = b.AddCondition("kd_kpp", "String", "=", []string{"A01", "B02"})

	rows, err := db.Select(ctx, b.BuildSelect())
	total, err := db.Count(ctx, b.BuildCount())
	n, err := db.ExportTo(ctx, b.BuildSelect(), database.FormatCSV, w)

# Circuit Breaker

Every statement passes through a sony/gobreaker breaker. Statement errors
(binder, parser, catalog and conversion errors, or a canceled request)
count as successes, so a client sending bad filters cannot open the
circuit. While open, calls fail fast with ErrCircuitOpen.

# Extensions

Extensions are loaded with autoload disabled. INSTALL is retried with
exponential backoff on network errors; if LOAD fails on a cached binary,
FORCE INSTALL replaces it. CGO calls ignore context cancellation, so
extension and attach statements run under a hard timeout goroutine.

# Exports

Exports use COPY ... TO with csv or xlsx (excel extension). ExportTo
spools to a uuid-named file under the export directory and streams it to
the writer.
*/
package database
