// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package logging provides zerolog-based structured logging for edaduckdb.
//
// A single global logger is configured once at startup with Init. Packages
// log through the level helpers (Info, Warn, Error, ...) or, inside request
// handling, through Ctx(ctx), which adds the request and correlation IDs
// carried by the context.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("table", ref).Msg("Source attached")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Count failed")
//
// # Query Logging
//
// QueryLogger records statement text, bind argument counts and durations
// for executed statements. Argument values are never logged.
//
// # Redaction
//
// RedactDSN and RedactError remove passwords from connection strings
// before they reach a log line.
//
// # slog Bridge
//
// NewSlogLogger returns a *slog.Logger writing through zerolog, used for
// suture supervisor events via sutureslog.
package logging
