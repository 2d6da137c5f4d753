// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package introspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/logging"
	"github.com/Gengsu07/edaduckdb/internal/models"
)

var (
	// ErrUnsupportedFlavour is returned by Open for flavours that have no
	// direct driver, such as duckdb and none.
	ErrUnsupportedFlavour = errors.New("schema introspection not supported for flavour")

	// ErrTableNotFound is returned when a table has no columns.
	ErrTableNotFound = errors.New("table not found")
)

// dialect runs the catalog queries of one database engine.
type dialect interface {
	tables(ctx context.Context, db *sql.DB, schema string) ([]string, error)
	columns(ctx context.Context, db *sql.DB, schema, table string) ([]models.ColumnSchema, error)
	primaryKeys(ctx context.Context, db *sql.DB, schema, table string) ([]string, error)
	foreignKeys(ctx context.Context, db *sql.DB, schema, table string) ([]models.ForeignKeySchema, error)
	indexes(ctx context.Context, db *sql.DB, schema, table string) ([]models.IndexSchema, error)
}

// Inspector reads table structure straight from the source database,
// bypassing DuckDB. It is read-only.
type Inspector struct {
	db      *sql.DB
	flavour string
	schema  string
	dialect dialect
}

// Open connects to the source database described by cfg.
func Open(cfg *config.DatabaseConfig) (*Inspector, error) {
	flavour := strings.ToLower(strings.TrimSpace(cfg.Flavour))

	var (
		driver, dsn string
		d           dialect
		schema      string
	)
	switch flavour {
	case config.FlavourPostgres:
		driver, dsn, d = "postgres", cfg.PostgresURL(), postgresDialect{}
		schema = cfg.Schema
		if schema == "" {
			schema = "public"
		}
	case config.FlavourMySQL:
		driver, dsn, d = "mysql", mysqlDSN(cfg), mysqlDialect{}
		schema = cfg.Database
	case config.FlavourSQLite:
		if cfg.SourcePath == "" {
			return nil, fmt.Errorf("sqlite introspection requires source_path")
		}
		driver, dsn, d = "sqlite3", sqliteDSN(cfg.SourcePath), sqliteDialect{}
		schema = "main"
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFlavour, cfg.Flavour)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", flavour, logging.RedactError(err))
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Inspector{db: db, flavour: flavour, schema: schema, dialect: d}, nil
}

func mysqlDSN(cfg *config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.HostPort()
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = 10 * time.Second
	return mc.FormatDSN()
}

func sqliteDSN(path string) string {
	return "file:" + path + "?mode=ro&_busy_timeout=5000"
}

// Flavour returns the source flavour.
func (i *Inspector) Flavour() string { return i.flavour }

// Schema returns the schema tables are listed from.
func (i *Inspector) Schema() string { return i.schema }

// Ping checks the connection.
func (i *Inspector) Ping(ctx context.Context) error {
	return i.db.PingContext(ctx)
}

// Close closes the connection.
func (i *Inspector) Close() error {
	return i.db.Close()
}

// Tables lists base tables, sorted by name.
func (i *Inspector) Tables(ctx context.Context) ([]string, error) {
	tables, err := i.dialect.tables(ctx, i.db, i.schema)
	if err != nil {
		return nil, i.wrap("list tables", err)
	}
	return tables, nil
}

// Columns describes the columns of table in ordinal order, with primary
// key columns flagged.
func (i *Inspector) Columns(ctx context.Context, table string) ([]models.ColumnSchema, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	cols, err := i.dialect.columns(ctx, i.db, i.schema, table)
	if err != nil {
		return nil, i.wrap("columns of "+table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	pks, err := i.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	for idx := range cols {
		for _, pk := range pks {
			if cols[idx].Name == pk {
				cols[idx].PrimaryKey = true
			}
		}
	}
	return cols, nil
}

// PrimaryKeys returns the primary key columns of table in key order.
func (i *Inspector) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	pks, err := i.dialect.primaryKeys(ctx, i.db, i.schema, table)
	if err != nil {
		return nil, i.wrap("primary keys of "+table, err)
	}
	return pks, nil
}

// ForeignKeys returns one entry per foreign key column of table.
func (i *Inspector) ForeignKeys(ctx context.Context, table string) ([]models.ForeignKeySchema, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	fks, err := i.dialect.foreignKeys(ctx, i.db, i.schema, table)
	if err != nil {
		return nil, i.wrap("foreign keys of "+table, err)
	}
	return fks, nil
}

// Indexes returns the non-primary indexes of table.
func (i *Inspector) Indexes(ctx context.Context, table string) ([]models.IndexSchema, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	idx, err := i.dialect.indexes(ctx, i.db, i.schema, table)
	if err != nil {
		return nil, i.wrap("indexes of "+table, err)
	}
	return idx, nil
}

// TableDefinition collects columns, keys and indexes of table.
func (i *Inspector) TableDefinition(ctx context.Context, table string) (*models.TableSchema, error) {
	cols, err := i.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	pks, err := i.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	fks, err := i.ForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	idx, err := i.Indexes(ctx, table)
	if err != nil {
		return nil, err
	}
	return &models.TableSchema{
		Name:        table,
		Columns:     cols,
		PrimaryKeys: nonNil(pks),
		ForeignKeys: nonNil(fks),
		Indexes:     nonNil(idx),
	}, nil
}

func (i *Inspector) wrap(op string, err error) error {
	logging.Error().Err(logging.RedactError(err)).Str("flavour", i.flavour).Str("op", op).Msg("Introspection failed")
	return fmt.Errorf("%s: %w", op, logging.RedactError(err))
}

func checkTable(table string) error {
	if !config.IsIdentifier(table) || strings.Contains(table, ".") {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ColumnsOfType returns the names of columns whose data type equals typ,
// ignoring case. ColumnsOfType(cols, "TEXT") lists text columns, which
// are the usual candidates for String filters.
func ColumnsOfType(cols []models.ColumnSchema, typ string) []string {
	var out []string
	for _, c := range cols {
		if strings.EqualFold(c.DataType, typ) {
			out = append(out, c.Name)
		}
	}
	return out
}
