// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

/*
Package api provides the HTTP layer of the filter explorer.

A client first fetches the filter catalog, renders one widget per field
(a multiselect for String columns, number inputs for numeric columns and
a date range for DateTime columns), and then posts its selections back.
The selections are validated against the catalog, compiled into
conditions, assembled into a single statement by the query builder and
run against DuckDB.

Endpoints (all under /api/v1 unless noted):

	GET  /health               service and database status
	GET  /health/live          liveness probe
	GET  /health/ready         readiness probe
	GET  /filters              filter catalog with options and operators
	POST /filters/refresh      reload String options from the table
	POST /query                sample rows (limit policy applies)
	POST /count                matching row count (cached)
	POST /export?format=csv    download all matching rows (csv or xlsx)
	GET  /schema/tables        tables of the source database
	GET  /schema/tables/{name} columns, keys and indexes of one table
	GET  /stats                per-route latency statistics
	GET  /metrics              Prometheus metrics (root path)

Request body shared by query, count and export:

	{
	  "columns": ["npwp", "nominal"],
	  "limit": 500,
	  "filters": [
	    {"column": "KDMAP", "values": ["411125", "411126"]},
	    {"column": "NOMINAL", "operator": ">=", "values": [1000000]},
	    {"column": "DATEBAYAR", "values": ["2024-01-01", "2024-03-31"]}
	  ]
	}

Every JSON response uses the models.APIResponse envelope. The compiled SQL
and its bind arguments are echoed back so the user can see exactly what
ran.
*/
package api
