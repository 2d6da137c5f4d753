// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package services

import (
	"context"
	"fmt"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/logging"
)

// ConfigApplier receives a freshly loaded and validated configuration.
type ConfigApplier func(cfg *config.Config) error

// ConfigWatchService reloads the config file when it changes on disk
// and hands the result to apply. Only settings that can change at
// runtime should be read from it (filters and filter types); the rest
// need a restart.
type ConfigWatchService struct {
	path  string
	apply ConfigApplier
	load  func(path string) (*config.Config, error)
}

// NewConfigWatchService watches path.
func NewConfigWatchService(path string, apply ConfigApplier) *ConfigWatchService {
	return &ConfigWatchService{path: path, apply: apply, load: config.LoadFile}
}

// Serve implements suture.Service. A watch that cannot be set up is
// returned as an error so the supervisor retries it.
func (s *ConfigWatchService) Serve(ctx context.Context) error {
	stop, err := config.WatchConfigFile(s.path, s.reload)
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.path, err)
	}
	defer func() {
		if err := stop(); err != nil {
			logging.Debug().Err(err).Str("path", s.path).Msg("Config unwatch failed")
		}
	}()

	logging.Info().Str("path", s.path).Msg("Watching config file")
	<-ctx.Done()
	return ctx.Err()
}

// reload keeps the running configuration when the new file is invalid.
func (s *ConfigWatchService) reload() {
	cfg, err := s.load(s.path)
	if err != nil {
		logging.Error().Err(err).Str("path", s.path).Msg("Config reload failed, keeping previous filters")
		return
	}
	if err := s.apply(cfg); err != nil {
		logging.Error().Err(err).Str("path", s.path).Msg("Config reload rejected")
		return
	}
	logging.Info().Str("path", s.path).Int("filters", len(cfg.FilterTypes)).Msg("Config reloaded")
}

func (s *ConfigWatchService) String() string {
	return "config-watch"
}
