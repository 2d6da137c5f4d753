// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package middleware provides the HTTP middleware mounted on the chi router:
// request IDs wired into the logging context, Prometheus request metrics,
// gzip compression and an in-memory latency monitor with access logging.
//
// All middleware have the func(http.Handler) http.Handler shape expected by
// chi's Router.Use.
package middleware
