// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

/*
Package config provides centralized configuration management for edaduckdb.

Configuration is layered with Koanf v2: built-in defaults, then an optional
config file, then environment variables. The config file may be YAML
(config.yaml, config.yml) or TOML (config.toml). CONFIG_PATH overrides the
search.

# Sections

  - db: source database (db_flavour, host, port, user, password, database,
    schema, table, sslmode, attach_alias, source_path) and the local DuckDB
    engine (path, max_memory, threads, extensions, introspect)
  - filters: column name to the list of selectable values
  - filters_types: column name to semantic type (string, integer, float,
    decimal, datetime)
  - query: lenient_types, max_limit, timeout
  - server: host, port, timeout
  - security: cors_origins, rate_limit_reqs, rate_limit_window,
    rate_limit_disabled
  - logging: level, format, caller
  - cache: ttl
  - export: dir, max_rows

# Environment Variables

Only mapped variables are read:

	DB_FLAVOUR, DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SCHEMA,
	DB_TABLE, DB_SSLMODE, DB_ATTACH_ALIAS, DB_SOURCE_PATH, DB_INTROSPECT
	DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DUCKDB_EXTENSIONS
	QUERY_LENIENT_TYPES, QUERY_MAX_LIMIT, QUERY_TIMEOUT
	HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
	CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
	LOG_LEVEL, LOG_FORMAT, LOG_CALLER
	CACHE_TTL, EXPORT_DIR, EXPORT_MAX_ROWS

Comma-separated values are accepted for DUCKDB_EXTENSIONS and CORS_ORIGINS.

# Validation

Validate runs after unmarshalling. Table, schema, attach alias and filter
column names are written into SQL text by the query builder, so they must be
plain identifiers; Validate rejects anything else.
*/
package config
