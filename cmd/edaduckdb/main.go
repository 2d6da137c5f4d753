// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package main

func main() {
	Execute()
}
