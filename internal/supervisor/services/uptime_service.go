// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package services

import (
	"context"
	"time"

	"github.com/Gengsu07/edaduckdb/internal/metrics"
)

// UptimeService keeps the uptime gauge current.
type UptimeService struct {
	interval time.Duration
}

// NewUptimeService updates the gauge every interval (default 15s).
func NewUptimeService(interval time.Duration) *UptimeService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &UptimeService{interval: interval}
}

func (s *UptimeService) Serve(ctx context.Context) error {
	metrics.StartUptime(ctx, s.interval)
	return ctx.Err()
}

func (s *UptimeService) String() string {
	return "uptime"
}
