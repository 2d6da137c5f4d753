// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package database

import (
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Gengsu07/edaduckdb/internal/logging"
	"github.com/Gengsu07/edaduckdb/internal/metrics"
)

// newBreaker trips after at least 10 requests with a 60% failure ratio
// and probes again after two minutes. Statement errors such as unknown
// columns count as successes since they say nothing about the source.
func newBreaker(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerState(name, from, to)
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// execute runs fn through the breaker. Rejections are returned wrapping
// both ErrCircuitOpen and the gobreaker sentinel.
func execute[T any](db *DB, fn func() (T, error)) (T, error) {
	result, err := db.breaker.Execute(func() (any, error) {
		return fn()
	})
	metrics.RecordBreakerResult(db.breaker.Name(), err)

	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		return zero, err
	}
	v, _ := result.(T)
	return v, nil
}

// BreakerState returns the current breaker state, e.g. "closed".
func (db *DB) BreakerState() string {
	return db.breaker.State().String()
}
