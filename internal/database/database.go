// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/logging"
)

// DefaultSlowQueryThreshold is the duration above which a statement is
// logged as slow.
const DefaultSlowQueryThreshold = 2 * time.Second

// DB wraps the DuckDB connection the filter explorer queries through. The
// source database is attached into DuckDB at startup, so every statement
// runs on DuckDB regardless of flavour.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	table   string
	breaker *gobreaker.CircuitBreaker[any]
	qlog    *logging.QueryLogger

	queryTimeout  time.Duration
	slowThreshold time.Duration
	exportDir     string

	loadedExtensions []string
}

// Option configures a DB.
type Option func(*DB)

// WithQueryTimeout sets the timeout applied to statements whose context
// has no deadline. The default is 30s.
func WithQueryTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.queryTimeout = d
		}
	}
}

// WithSlowQueryThreshold sets the slow statement logging threshold.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(db *DB) { db.slowThreshold = d }
}

// WithExportDir sets the directory for export spool files. The default is
// os.TempDir().
func WithExportDir(dir string) Option {
	return func(db *DB) { db.exportDir = dir }
}

// New opens DuckDB, loads the scanner extension for the configured
// flavour plus any extra extensions, and attaches the source database.
func New(cfg *config.DatabaseConfig, opts ...Option) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is nil")
	}

	if cfg.Path != "" && cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", connectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:          conn,
		cfg:           cfg,
		table:         cfg.TableReference(),
		qlog:          logging.NewQueryLogger(),
		queryTimeout:  30 * time.Second,
		slowThreshold: DefaultSlowQueryThreshold,
		exportDir:     os.TempDir(),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.breaker = newBreaker("duckdb")

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, err
	}

	logging.Info().
		Str("flavour", db.Flavour()).
		Str("table", db.table).
		Strs("extensions", db.loadedExtensions).
		Msg("DuckDB ready")

	return db, nil
}

// connectionString builds the DuckDB DSN. Autoloading is disabled because
// extensions are loaded explicitly with timeouts.
func connectionString(cfg *config.DatabaseConfig) string {
	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}
	params := url.Values{}
	params.Set("autoinstall_known_extensions", "false")
	params.Set("autoload_known_extensions", "false")
	if cfg.Threads > 0 {
		params.Set("threads", strconv.Itoa(cfg.Threads))
	}
	if cfg.MaxMemory != "" {
		params.Set("max_memory", cfg.MaxMemory)
	}
	return path + "?" + params.Encode()
}

func (db *DB) initialize() error {
	if err := db.installExtensions(); err != nil {
		return err
	}
	if err := db.attachSource(); err != nil {
		return err
	}
	return nil
}

// configureConnectionPool sets pool limits. DuckDB runs in process, so
// connections are cheap and bounded by CPU count.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Conn returns the underlying connection pool.
func (db *DB) Conn() *sql.DB { return db.conn }

// TableReference returns the qualified table that filters apply to.
func (db *DB) TableReference() string { return db.table }

// Flavour returns the normalized source flavour.
func (db *DB) Flavour() string {
	f := strings.ToLower(strings.TrimSpace(db.cfg.Flavour))
	if f == "" {
		return config.FlavourNone
	}
	return f
}

// Extensions returns the extensions loaded at startup.
func (db *DB) Extensions() []string {
	return append([]string(nil), db.loadedExtensions...)
}

// Ping checks that DuckDB answers.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Close detaches the source and closes DuckDB.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if db.attached() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := db.conn.ExecContext(ctx, "DETACH "+db.cfg.AttachAlias); err != nil {
			logging.Debug().Err(err).Msg("Failed to detach source database")
		}
		cancel()
	}
	return db.conn.Close()
}

// ensureContext applies the query timeout when ctx carries no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), db.queryTimeout)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, db.queryTimeout)
	}
	return ctx, func() {}
}
