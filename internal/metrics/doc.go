// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

/*
Package metrics defines the Prometheus collectors exported at /metrics.

Collectors are registered with the default registry through promauto at
package init, so importing the package is enough to expose them.

# Available Metrics

Database:
  - duckdb_query_duration_seconds{operation, table}
  - duckdb_query_errors_total{operation, table, error_type}
    error_type is one of timeout, canceled, circuit_open, query
  - duckdb_rows_returned{table}
  - duckdb_extension_loads_total{extension, result}

Query builder:
  - query_conditions_compiled_total{semantic_type, shape}
  - query_conditions_skipped_total
  - query_statements_built_total{kind, limit_mode}

Export:
  - exports_total{format, result}
  - export_bytes_total{format}

HTTP:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Cache and circuit breaker:
  - cache_hits_total, cache_misses_total, cache_entries, cache_evictions_total
  - circuit_breaker_state (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total{name, result}
  - circuit_breaker_state_transitions_total{name, from_state, to_state}

Process:
  - app_info{version, go_version, flavour}
  - app_uptime_seconds

Bound parameter values are never used as label values.
*/
package metrics
