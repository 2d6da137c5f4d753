// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"}, // operation: select, count, export, distinct, ping
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of failed DuckDB statements",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBRowsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_rows_returned",
			Help:    "Rows returned per SELECT statement",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
		[]string{"table"},
	)

	DBExtensionLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_extension_loads_total",
			Help: "DuckDB extension load attempts",
		},
		[]string{"extension", "result"}, // result: loaded, force_installed, failed
	)

	ExportBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_bytes_total",
			Help: "Bytes written by result exports",
		},
		[]string{"format"},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Result exports by format and outcome",
		},
		[]string{"format", "result"},
	)

	// Query Builder Metrics
	ConditionsCompiled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_conditions_compiled_total",
			Help: "Filter conditions compiled into predicates",
		},
		[]string{"semantic_type", "shape"}, // shape: scalar, range, many
	)

	ConditionsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_conditions_skipped_total",
			Help: "Conditions dropped by lenient builders because of an unknown semantic type",
		},
	)

	StatementsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_statements_built_total",
			Help: "Statements assembled by kind and limit mode",
		},
		[]string{"kind", "limit_mode"}, // kind: select, count
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "count", "options"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Build information (always 1)",
		},
		[]string{"version", "go_version", "flavour"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a statement duration and, when err is set, an error
// classified by ErrorType.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, ErrorType(err)).Inc()
	}
}

// ErrorType maps an execution error to a bounded label value.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "query"
	}
}

// RecordRows records the number of rows a SELECT returned.
func RecordRows(table string, rows int) {
	DBRowsReturned.WithLabelValues(table).Observe(float64(rows))
}

// RecordExtensionLoad records the outcome of loading one DuckDB extension.
func RecordExtensionLoad(extension, result string) {
	DBExtensionLoads.WithLabelValues(extension, result).Inc()
}

// RecordExport records one export attempt.
func RecordExport(format string, bytes int64, err error) {
	if err != nil {
		Exports.WithLabelValues(format, "failure").Inc()
		return
	}
	Exports.WithLabelValues(format, "success").Inc()
	ExportBytes.WithLabelValues(format).Add(float64(bytes))
}

// RecordCondition records one compiled condition.
func RecordCondition(semanticType, shape string) {
	ConditionsCompiled.WithLabelValues(semanticType, shape).Inc()
}

// RecordSkippedConditions adds n lenient-mode skips.
func RecordSkippedConditions(n int) {
	if n > 0 {
		ConditionsSkipped.Add(float64(n))
	}
}

// RecordStatement records one assembled statement.
func RecordStatement(kind, limitMode string) {
	StatementsBuilt.WithLabelValues(kind, limitMode).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup counts a hit or a miss for cacheType.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordBreakerState publishes a gobreaker state transition.
func RecordBreakerState(name string, from, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
	CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

// RecordBreakerResult counts one call through a breaker.
func RecordBreakerResult(name string, err error) {
	switch {
	case err == nil:
		CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion, flavour string) {
	AppInfo.WithLabelValues(version, goVersion, flavour).Set(1)
}

// StartUptime updates AppUptime every interval until ctx is done.
func StartUptime(ctx context.Context, interval time.Duration) {
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		AppUptime.Set(time.Since(start).Seconds())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
