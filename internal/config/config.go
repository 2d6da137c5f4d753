// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML or TOML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every optional setting
//  2. Config File: config.yaml / config.yml / config.toml (or CONFIG_PATH)
//  3. Environment Variables: Override any mapped setting
//
// The file layout follows the filter explorer's config.toml:
//
//	[db]
//	db_flavour = "postgres"
//	host = "localhost"
//	port = 5432
//	user = "analyst"
//	password = "secret"
//	database = "ppmpkm"
//	schema = "public"
//
//	[filters]
//	KDMAP = ["411125", "411126"]
//
//	[filters_types]
//	KDMAP = "string"
//	DATEBAYAR = "datetime"
type Config struct {
	Database    DatabaseConfig    `koanf:"db"`
	Filters     map[string][]any  `koanf:"filters"`
	FilterTypes map[string]string `koanf:"filters_types"`
	Query       QueryConfig       `koanf:"query"`
	Server      ServerConfig      `koanf:"server"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
	Cache       CacheConfig       `koanf:"cache"`
	Export      ExportConfig      `koanf:"export"`
}

// Supported source database flavours. FlavourNone runs against the local
// DuckDB database only.
const (
	FlavourNone     = "none"
	FlavourPostgres = "postgres"
	FlavourMySQL    = "mysql"
	FlavourSQLite   = "sqlite"
	FlavourDuckDB   = "duckdb"
)

// DatabaseConfig holds the DuckDB engine settings and the source database
// that is attached into it.
type DatabaseConfig struct {
	// Flavour selects the DuckDB scanner extension and ATTACH type:
	// postgres, mysql, sqlite, duckdb or none.
	Flavour string `koanf:"db_flavour"`

	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	Schema   string `koanf:"schema"`
	SSLMode  string `koanf:"sslmode"`

	// Table is the filtered table. When empty, Database is used as the
	// table name, matching the original db.<schema>.<database> layout.
	Table string `koanf:"table"`

	// AttachAlias is the catalog name the source is attached under.
	AttachAlias string `koanf:"attach_alias"`

	// SourcePath is the file attached for the sqlite and duckdb flavours.
	SourcePath string `koanf:"source_path"`

	// Path is the local DuckDB database file. Empty means in-memory.
	Path       string   `koanf:"path"`
	MaxMemory  string   `koanf:"max_memory"`
	Threads    int      `koanf:"threads"` // 0 = DuckDB default
	Extensions []string `koanf:"extensions"`

	// Introspect enables the schema browsing endpoints, which open a
	// direct connection to the source database.
	Introspect bool `koanf:"introspect"`
}

// TableName returns the configured table, falling back to Database.
func (d DatabaseConfig) TableName() string {
	if d.Table != "" {
		return d.Table
	}
	return d.Database
}

// TableReference returns the fully qualified table used in generated SQL.
// A table that already contains a dot is returned as is.
func (d DatabaseConfig) TableReference() string {
	table := d.TableName()
	if strings.Contains(table, ".") {
		return table
	}
	flavour := strings.ToLower(d.Flavour)
	if flavour == "" || flavour == FlavourNone {
		if d.Schema != "" {
			return d.Schema + "." + table
		}
		return table
	}
	schema := d.Schema
	if schema == "" {
		schema = defaultSchema(flavour, d.Database)
	}
	return d.AttachAlias + "." + schema + "." + table
}

func defaultSchema(flavour, database string) string {
	switch flavour {
	case FlavourPostgres:
		return "public"
	case FlavourMySQL:
		return database
	default:
		return "main"
	}
}

// HostPort returns host:port for the source database.
func (d DatabaseConfig) HostPort() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// PostgresURL returns a postgresql:// URL for the source database.
func (d DatabaseConfig) PostgresURL() string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.HostPort(),
		Path:   "/" + d.Database,
	}
	if d.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(d.SSLMode)
	}
	return u.String()
}

// QueryConfig controls how filter conditions are compiled.
type QueryConfig struct {
	// LenientTypes skips conditions with an unknown semantic type instead
	// of rejecting the request.
	LenientTypes bool `koanf:"lenient_types"`

	// MaxLimit caps the custom row limit accepted from API clients.
	MaxLimit int `koanf:"max_limit"`

	// Timeout bounds a single query execution.
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig holds the result cache settings.
type CacheConfig struct {
	// TTL applies to cached row counts and filter options. Zero disables
	// caching.
	TTL time.Duration `koanf:"ttl"`
}

// ExportConfig holds settings for full-result downloads.
type ExportConfig struct {
	// Dir is where export files are spooled. Empty uses the OS temp dir.
	Dir string `koanf:"dir"`

	// MaxRows rejects exports whose row count exceeds this value.
	// Zero means unlimited.
	MaxRows int64 `koanf:"max_rows"`
}

// Load reads configuration from the default sources.
// See LoadWithKoanf for the layering rules.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadFile reads configuration with path as the config file, ignoring
// CONFIG_PATH and the default search paths.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return LoadWithKoanf()
	}
	cfg, err := loadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}
