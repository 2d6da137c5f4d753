// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package services adapts the explorer's long-running work to
// suture.Service.
//
// Each wrapper blocks in Serve until its context is canceled, returns an
// error to ask the supervisor for a restart, and implements fmt.Stringer
// so supervisor events carry a readable name.
package services
