// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/logging"
)

const attachTimeout = 30 * time.Second

func (db *DB) attached() bool {
	switch db.Flavour() {
	case config.FlavourPostgres, config.FlavourMySQL, config.FlavourSQLite, config.FlavourDuckDB:
		return true
	default:
		return false
	}
}

// attachSource attaches the source database read-only under the
// configured alias and checks that the filtered table is reachable.
func (db *DB) attachSource() error {
	stmt, err := attachStatement(db.cfg)
	if err != nil {
		return err
	}
	if stmt == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), attachTimeout)
	defer cancel()

	if err := db.execWithHardTimeout(ctx, stmt); err != nil {
		return fmt.Errorf("failed to attach %s source: %w", db.Flavour(), logging.RedactError(err))
	}

	if err := db.execWithHardTimeout(ctx, "SELECT * FROM "+db.table+" LIMIT 0"); err != nil {
		return fmt.Errorf("table %s not readable after attach: %w", db.table, logging.RedactError(err))
	}

	logging.Info().
		Str("flavour", db.Flavour()).
		Str("alias", db.cfg.AttachAlias).
		Str("source", logging.RedactDSN(sourceDescription(db.cfg))).
		Msg("Attached source database")
	return nil
}

// attachStatement returns the ATTACH statement for cfg, or "" for the
// none flavour.
func attachStatement(cfg *config.DatabaseConfig) (string, error) {
	alias := cfg.AttachAlias
	flavour := strings.ToLower(strings.TrimSpace(cfg.Flavour))

	if flavour != "" && flavour != config.FlavourNone && !config.IsIdentifier(alias) {
		return "", fmt.Errorf("invalid attach alias %q", alias)
	}

	switch flavour {
	case "", config.FlavourNone:
		return "", nil
	case config.FlavourPostgres:
		return fmt.Sprintf("ATTACH %s AS %s (TYPE postgres, READ_ONLY)",
			quoteLiteral(postgresConnInfo(cfg)), alias), nil
	case config.FlavourMySQL:
		return fmt.Sprintf("ATTACH %s AS %s (TYPE mysql, READ_ONLY)",
			quoteLiteral(mysqlConnInfo(cfg)), alias), nil
	case config.FlavourSQLite:
		if cfg.SourcePath == "" {
			return "", fmt.Errorf("sqlite flavour requires source_path")
		}
		return fmt.Sprintf("ATTACH %s AS %s (TYPE sqlite, READ_ONLY)",
			quoteLiteral(cfg.SourcePath), alias), nil
	case config.FlavourDuckDB:
		if cfg.SourcePath == "" {
			return "", fmt.Errorf("duckdb flavour requires source_path")
		}
		return fmt.Sprintf("ATTACH %s AS %s (READ_ONLY)", quoteLiteral(cfg.SourcePath), alias), nil
	default:
		return "", fmt.Errorf("unsupported database flavour %q", cfg.Flavour)
	}
}

// postgresConnInfo builds a libpq key/value connection string.
func postgresConnInfo(cfg *config.DatabaseConfig) string {
	var kv keyValues
	kv.add("dbname", cfg.Database)
	kv.add("user", cfg.User)
	kv.add("password", cfg.Password)
	kv.add("host", cfg.Host)
	if cfg.Port > 0 {
		kv.add("port", strconv.Itoa(cfg.Port))
	}
	kv.add("sslmode", cfg.SSLMode)
	return kv.String()
}

// mysqlConnInfo builds the key/value string the DuckDB mysql scanner
// accepts.
func mysqlConnInfo(cfg *config.DatabaseConfig) string {
	var kv keyValues
	kv.add("host", cfg.Host)
	kv.add("user", cfg.User)
	if cfg.Port > 0 {
		kv.add("port", strconv.Itoa(cfg.Port))
	}
	kv.add("database", cfg.Database)
	kv.add("password", cfg.Password)
	return kv.String()
}

type keyValues []string

// add appends key=value, skipping empty values. Values with spaces,
// quotes or backslashes are single-quoted with libpq escaping.
func (kv *keyValues) add(key, value string) {
	if value == "" {
		return
	}
	*kv = append(*kv, key+"="+connInfoValue(value))
}

func (kv keyValues) String() string { return strings.Join(kv, " ") }

func connInfoValue(v string) string {
	if !strings.ContainsAny(v, " '\\\t\n") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// quoteLiteral returns s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sourceDescription(cfg *config.DatabaseConfig) string {
	switch strings.ToLower(cfg.Flavour) {
	case config.FlavourPostgres:
		return postgresConnInfo(cfg)
	case config.FlavourMySQL:
		return mysqlConnInfo(cfg)
	default:
		return cfg.SourcePath
	}
}
