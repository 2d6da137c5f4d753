// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/Gengsu07/edaduckdb/internal/filters"
	"github.com/Gengsu07/edaduckdb/internal/logging"
)

// OptionRefresher is implemented by *filters.Catalog.
type OptionRefresher interface {
	Refresh(ctx context.Context, src filters.OptionSource) error
}

// FilterRefreshService loads the option lists of string filters that
// were configured without any. A failed load is returned to the
// supervisor, which retries with backoff; after a clean load the
// service exits for good.
type FilterRefreshService struct {
	catalog OptionRefresher
	source  filters.OptionSource
	timeout time.Duration
}

// NewFilterRefreshService creates the warm-up job. timeout bounds one
// attempt; zero means no bound.
func NewFilterRefreshService(catalog OptionRefresher, source filters.OptionSource, timeout time.Duration) *FilterRefreshService {
	return &FilterRefreshService{catalog: catalog, source: source, timeout: timeout}
}

// Serve implements suture.Service.
func (s *FilterRefreshService) Serve(ctx context.Context) error {
	attemptCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.catalog.Refresh(attemptCtx, s.source); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("refresh filter options: %w", err)
	}

	logging.Info().Dur("duration", time.Since(start)).Msg("Filter options loaded")
	return suture.ErrDoNotRestart
}

func (s *FilterRefreshService) String() string {
	return "filter-refresh"
}
