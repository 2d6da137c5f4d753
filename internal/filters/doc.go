// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package filters holds the catalog of filterable columns and converts
// client selections into query conditions.
//
// The catalog comes from the filters and filters_types config sections:
//
//	[filters]
//	KDMAP = ["411125", "411126"]
//
//	[filters_types]
//	KDMAP = "string"
//	DATEBAYAR = "datetime"
//
// query.Builder writes column names and operator tokens into SQL text
// verbatim. Catalog.Conditions is where untrusted input is checked: only
// catalog columns and the comparison operators in
// validation.ComparisonOperators are accepted.
package filters
