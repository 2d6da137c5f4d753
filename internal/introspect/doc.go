// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package introspect reports the structure of the source database.
//
// It connects directly with the native driver for the configured flavour
// (lib/pq for postgres, go-sql-driver/mysql, mattn/go-sqlite3 opened
// read-only) and reads information_schema or PRAGMA output. The filter
// explorer does not need it to run queries; it backs the schema browsing
// endpoints and the schema CLI commands, which help decide what to put in
// the filters_types config section.
package introspect
