// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

/*
Command edaduckdb serves and queries an ad-hoc filter explorer over a
single source table.

The source (PostgreSQL, MySQL, SQLite, a DuckDB file, or a table already
in the local DuckDB database) is attached into an embedded DuckDB engine.
Clients pick values for the columns listed in the filters_types section
of the config file; the selections are compiled into a parameterized
SELECT, COUNT or COPY statement and run against the attached table.

	edaduckdb serve                          HTTP API on server.host:server.port
	edaduckdb query --where KDMAP::411111    sample rows as JSON
	edaduckdb query --count --where ...      matching row count
	edaduckdb query --format csv --out x.csv full download
	edaduckdb query --explain --where ...    print SQL and arguments only
	edaduckdb filters [--refresh]            filter catalog
	edaduckdb schema tables|describe <table> source schema
	edaduckdb version

Startup order for serve:

 1. Configuration: koanf v2 (defaults, config file, environment)
 2. Logging: zerolog, with slog bridged in for suture events
 3. Database: DuckDB with the flavour's scanner extension, source attached
 4. Filter catalog: options from config, empty string lists loaded later
 5. Schema inspector: direct driver connection when db.introspect is set
 6. Supervisor tree: suture v4
 7. HTTP server: chi router under the api-layer supervisor

Configuration is described in package config. Every setting can be
overridden with environment variables, e.g. DB_FLAVOUR or HTTP_PORT.
*/
package main
