// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package database

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/Gengsu07/edaduckdb/internal/logging"
)

var (
	// ErrCircuitOpen is returned while the breaker rejects statements.
	ErrCircuitOpen = errors.New("database circuit breaker is open")

	// ErrUnsupportedFormat is returned for export formats other than csv
	// and xlsx.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrInvalidIdentifier is returned when a table or column name is not
	// a plain identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// clientErrorPrefixes are DuckDB error classes caused by the statement
// rather than the engine. They do not count against the breaker.
var clientErrorPrefixes = []string{
	"Binder Error",
	"Parser Error",
	"Catalog Error",
	"Conversion Error",
	"Invalid Input Error",
	"Constraint Error",
	"Out of Range Error",
}

// IsClientError reports whether err was caused by the statement, such as
// an unknown column or a value that does not convert to the column type.
func IsClientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrInvalidIdentifier) {
		return true
	}
	msg := err.Error()
	for _, prefix := range clientErrorPrefixes {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}

// closeWithLog closes c and logs a failure at debug level.
func closeWithLog(c io.Closer, resourceType string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Str("resource", resourceType).Msg("Failed to close resource")
	}
}

// closeQuietly closes c and ignores the error. Used on paths that are
// already returning a more relevant error.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
