// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package models

import (
	"time"
)

// APIResponse is the envelope every JSON endpoint returns.
//
// Successful response:
//
//	{
//	  "status": "success",
//	  "data": {"count": 1284},
//	  "metadata": {"timestamp": "2026-10-18T09:00:00Z", "query_time_ms": 12}
//	}
//
// Error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {"code": "UNKNOWN_FILTER", "message": "unknown filter column \"npwp\""},
//	  "metadata": {"timestamp": "2026-10-18T09:00:00Z", "request_id": "9b2f..."}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata describes how a response was produced. QueryTimeMS is 0 and
// Cached is true when the payload came from the result cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeUnknownFilter    = "UNKNOWN_FILTER"
	ErrCodeOperator         = "OPERATOR_NOT_ALLOWED"
	ErrCodeInvalidCondition = "INVALID_CONDITION"
	ErrCodeUnsupportedType  = "UNSUPPORTED_TYPE"
	ErrCodeDatabase         = "DATABASE_ERROR"
	ErrCodeTimeout          = "QUERY_TIMEOUT"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeNotConfigured    = "NOT_CONFIGURED"
	ErrCodeExportTooLarge   = "EXPORT_TOO_LARGE"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status        string  `json:"status"` // "healthy" or "degraded"
	Version       string  `json:"version"`
	Database      string  `json:"database"` // "connected" or "unreachable"
	Flavour       string  `json:"flavour"`
	Table         string  `json:"table"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
