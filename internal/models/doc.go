// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package models holds the JSON data transfer types shared by the HTTP API,
// the schema inspector and the CLI. It has no dependencies on other internal
// packages.
package models
