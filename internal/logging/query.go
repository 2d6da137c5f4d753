// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// maxLoggedSQL bounds the statement text written to a log line.
const maxLoggedSQL = 1024

// QueryLogger logs statement execution. Only statement text and argument
// counts are written; bound values can hold user data and are never logged.
type QueryLogger struct {
	logger zerolog.Logger
}

// NewQueryLogger creates a QueryLogger on the global logger.
func NewQueryLogger() *QueryLogger {
	return &QueryLogger{logger: WithComponent("query")}
}

// NewQueryLoggerWithLogger creates a QueryLogger on logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewQueryLoggerWithLogger(logger zerolog.Logger) *QueryLogger {
	return &QueryLogger{logger: logger}
}

func (q *QueryLogger) ctxLogger(ctx context.Context) zerolog.Logger {
	lc := q.logger.With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	return lc.Logger()
}

// LogExecuted records a successful statement.
func (q *QueryLogger) LogExecuted(ctx context.Context, operation, sql string, args int, rows int64, d time.Duration) {
	l := q.ctxLogger(ctx)
	l.Debug().
		Str("operation", operation).
		Str("sql", truncate(sql, maxLoggedSQL)).
		Int("args", args).
		Int64("rows", rows).
		Dur("duration", d).
		Msg("Statement executed")
}

// LogFailed records a failed statement.
func (q *QueryLogger) LogFailed(ctx context.Context, operation, sql string, args int, err error) {
	l := q.ctxLogger(ctx)
	l.Error().
		Err(RedactError(err)).
		Str("operation", operation).
		Str("sql", truncate(sql, maxLoggedSQL)).
		Int("args", args).
		Msg("Statement failed")
}

// LogSlow records a statement that exceeded threshold.
func (q *QueryLogger) LogSlow(ctx context.Context, operation, sql string, d, threshold time.Duration) {
	l := q.ctxLogger(ctx)
	l.Warn().
		Str("operation", operation).
		Str("sql", truncate(sql, maxLoggedSQL)).
		Dur("duration", d).
		Dur("threshold", threshold).
		Msg("Slow statement")
}

// LogExport records a finished export.
func (q *QueryLogger) LogExport(ctx context.Context, format, path string, bytes int64, d time.Duration) {
	l := q.ctxLogger(ctx)
	l.Info().
		Str("format", format).
		Str("path", path).
		Int64("bytes", bytes).
		Dur("duration", d).
		Msg("Export written")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
