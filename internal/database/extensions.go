// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/logging"
	"github.com/Gengsu07/edaduckdb/internal/metrics"
)

// extensionTimeout bounds a single INSTALL or LOAD. Downloads from the
// extension repository can hang on flaky networks.
const extensionTimeout = 60 * time.Second

type extensionRetryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	BackoffMult float64
}

var defaultExtensionRetry = extensionRetryConfig{
	MaxRetries:  3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    30 * time.Second,
	BackoffMult: 2.0,
}

// scannerExtension returns the DuckDB extension that reads the given
// source flavour, or "" when no extension is needed.
func scannerExtension(flavour string) string {
	switch flavour {
	case config.FlavourPostgres:
		return "postgres"
	case config.FlavourMySQL:
		return "mysql"
	case config.FlavourSQLite:
		return "sqlite"
	default:
		return ""
	}
}

// installExtensions loads the scanner for the source flavour, which is
// required, then the configured extras, which are not.
func (db *DB) installExtensions() error {
	if ext := scannerExtension(db.Flavour()); ext != "" {
		if err := db.loadExtension(ext); err != nil {
			metrics.RecordExtensionLoad(ext, "failed")
			return fmt.Errorf("failed to load %s extension: %w", ext, err)
		}
		db.loadedExtensions = append(db.loadedExtensions, ext)
	}

	for _, ext := range db.cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == scannerExtension(db.Flavour()) {
			continue
		}
		if !config.IsIdentifier(ext) {
			logging.Warn().Str("extension", ext).Msg("Ignoring extension with invalid name")
			continue
		}
		if err := db.loadExtension(ext); err != nil {
			metrics.RecordExtensionLoad(ext, "unavailable")
			logging.Warn().Err(err).Str("extension", ext).Msg("Extension unavailable, continuing without it")
			continue
		}
		db.loadedExtensions = append(db.loadedExtensions, ext)
	}
	return nil
}

// loadExtension tries INSTALL then LOAD. If LOAD fails on a cached
// binary, FORCE INSTALL replaces it and LOAD is retried once.
func (db *DB) loadExtension(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), extensionTimeout)
	defer cancel()

	if err := db.execWithRetry(ctx, "INSTALL "+name, name); err != nil {
		logging.Debug().Err(err).Str("extension", name).Msg("INSTALL failed, trying LOAD from cache")
	}

	if err := db.execWithHardTimeout(ctx, "LOAD "+name); err == nil {
		metrics.RecordExtensionLoad(name, "loaded")
		return nil
	}

	if err := db.execWithRetry(ctx, "FORCE INSTALL "+name, name); err != nil {
		return fmt.Errorf("force install: %w", err)
	}
	if err := db.execWithHardTimeout(ctx, "LOAD "+name); err != nil {
		return fmt.Errorf("load after force install: %w", err)
	}
	metrics.RecordExtensionLoad(name, "reinstalled")
	return nil
}

func (db *DB) execWithRetry(ctx context.Context, stmt, extension string) error {
	cfg := defaultExtensionRetry
	delay := cfg.BaseDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug().
				Str("extension", extension).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying extension statement")
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * cfg.BackoffMult)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		lastErr = db.execWithHardTimeout(ctx, stmt)
		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("after %d retries: %w", cfg.MaxRetries, lastErr)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"timed out", "timeout", "connection refused", "503", "temporary failure"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// execWithHardTimeout runs stmt in a goroutine and returns when ctx
// expires even if the driver call is still blocked in CGO.
func (db *DB) execWithHardTimeout(ctx context.Context, stmt string, args ...any) error {
	done := make(chan error, 1)
	go func() {
		_, err := db.conn.ExecContext(ctx, stmt, args...)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", firstWord(stmt), ctx.Err())
	}
}

// queryRowWithHardTimeout is the QueryRow counterpart of
// execWithHardTimeout. dest must not be read by the caller after a
// timeout, since the scan may still complete in the background.
func (db *DB) queryRowWithHardTimeout(ctx context.Context, stmt string, dest ...any) error {
	done := make(chan error, 1)
	go func() {
		done <- db.conn.QueryRowContext(ctx, stmt).Scan(dest...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", firstWord(stmt), ctx.Err())
	}
}

func firstWord(stmt string) string {
	if i := strings.IndexByte(stmt, ' '); i > 0 {
		return stmt[:i]
	}
	return stmt
}
