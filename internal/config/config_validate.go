// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	c.normalize()

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateFilters(); err != nil {
		return err
	}

	if err := c.validateQuery(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// normalize lower-cases enum-like settings so comparisons are stable.
func (c *Config) normalize() {
	c.Database.Flavour = strings.ToLower(strings.TrimSpace(c.Database.Flavour))
	if c.Database.Flavour == "" {
		c.Database.Flavour = FlavourNone
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// validFlavours defines the supported source database flavours
var validFlavours = map[string]bool{
	FlavourNone:     true,
	FlavourPostgres: true,
	FlavourMySQL:    true,
	FlavourSQLite:   true,
	FlavourDuckDB:   true,
}

// identifierPattern matches identifiers that are safe to write into SQL
// text: letters, digits, underscore and dots between parts.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// IsIdentifier reports whether s can be written into SQL text unquoted.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// validateDatabase validates the source database settings
func (c *Config) validateDatabase() error {
	db := c.Database
	if !validFlavours[db.Flavour] {
		return fmt.Errorf("DB_FLAVOUR must be one of: none, postgres, mysql, sqlite, duckdb")
	}

	table := db.TableName()
	if table == "" {
		return fmt.Errorf("DB_TABLE or DB_NAME is required")
	}
	if !IsIdentifier(table) {
		return fmt.Errorf("DB_TABLE %q is not a valid identifier", table)
	}
	if db.Schema != "" && !IsIdentifier(db.Schema) {
		return fmt.Errorf("DB_SCHEMA %q is not a valid identifier", db.Schema)
	}
	if db.Flavour != FlavourNone && !IsIdentifier(db.AttachAlias) {
		return fmt.Errorf("DB_ATTACH_ALIAS %q is not a valid identifier", db.AttachAlias)
	}

	switch db.Flavour {
	case FlavourPostgres, FlavourMySQL:
		if db.Host == "" {
			return fmt.Errorf("DB_HOST is required when DB_FLAVOUR=%s", db.Flavour)
		}
		if db.Port < 1 || db.Port > 65535 {
			return fmt.Errorf("DB_PORT must be between 1 and 65535")
		}
		if db.Database == "" {
			return fmt.Errorf("DB_NAME is required when DB_FLAVOUR=%s", db.Flavour)
		}
		if db.Password != "" && containsPlaceholder(db.Password) {
			return fmt.Errorf("DB_PASSWORD appears to be a placeholder value")
		}
	case FlavourSQLite, FlavourDuckDB:
		if db.SourcePath == "" {
			return fmt.Errorf("DB_SOURCE_PATH is required when DB_FLAVOUR=%s", db.Flavour)
		}
	}

	if db.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	for _, ext := range db.Extensions {
		if !IsIdentifier(ext) {
			return fmt.Errorf("DUCKDB_EXTENSIONS entry %q is not a valid extension name", ext)
		}
	}
	return nil
}

// validSemanticTypes mirrors the semantic types understood by the query
// compiler.
var validSemanticTypes = map[string]bool{
	"string":   true,
	"integer":  true,
	"float":    true,
	"decimal":  true,
	"datetime": true,
}

// validateFilters validates filter metadata. Filter column names are
// written into SQL text, so they must be plain identifiers.
func (c *Config) validateFilters() error {
	for column, typ := range c.FilterTypes {
		if !IsIdentifier(column) {
			return fmt.Errorf("filters_types: column %q is not a valid identifier", column)
		}
		if !c.Query.LenientTypes && !validSemanticTypes[strings.ToLower(strings.TrimSpace(typ))] {
			return fmt.Errorf("filters_types: column %s has unsupported type %q (want string, integer, float, decimal or datetime)", column, typ)
		}
	}
	for column := range c.Filters {
		if _, ok := c.FilterTypes[column]; !ok {
			return fmt.Errorf("filters: column %s has no entry in filters_types", column)
		}
	}
	return nil
}

// validateQuery validates query compilation settings
func (c *Config) validateQuery() error {
	if c.Query.MaxLimit < 1 {
		return fmt.Errorf("QUERY_MAX_LIMIT must be at least 1")
	}
	if c.Query.Timeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive")
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateSecurity validates rate limiting bounds.
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
}

// containsPlaceholder checks if a value contains common placeholder patterns
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
