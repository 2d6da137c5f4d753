// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Flavour != FlavourPostgres {
		t.Errorf("Database.Flavour = %q, want postgres", cfg.Database.Flavour)
	}
	if cfg.Database.AttachAlias != "db" {
		t.Errorf("Database.AttachAlias = %q, want db", cfg.Database.AttachAlias)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Database.SSLMode = %q, want disable", cfg.Database.SSLMode)
	}
	if len(cfg.Database.Extensions) != 1 || cfg.Database.Extensions[0] != "excel" {
		t.Errorf("Database.Extensions = %v, want [excel]", cfg.Database.Extensions)
	}
	if cfg.Query.LenientTypes {
		t.Error("Query.LenientTypes should be false by default")
	}
	if cfg.Query.MaxLimit != 10000 {
		t.Errorf("Query.MaxLimit = %d, want 10000", cfg.Query.MaxLimit)
	}
	if cfg.Server.Port != 8501 {
		t.Errorf("Server.Port = %d, want 8501", cfg.Server.Port)
	}
	if cfg.Security.RateLimitReqs != 100 {
		t.Errorf("Security.RateLimitReqs = %d, want 100", cfg.Security.RateLimitReqs)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DB_FLAVOUR", "db.db_flavour"},
		{"DB_HOST", "db.host"},
		{"DB_NAME", "db.database"},
		{"DB_TABLE", "db.table"},
		{"DUCKDB_PATH", "db.path"},
		{"DUCKDB_EXTENSIONS", "db.extensions"},
		{"QUERY_LENIENT_TYPES", "query.lenient_types"},
		{"HTTP_PORT", "server.port"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},
		{"CACHE_TTL", "cache.ttl"},
		{"EXPORT_MAX_ROWS", "export.max_rows"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, "")

	t.Run("no config file exists", func(t *testing.T) {
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.toml exists", func(t *testing.T) {
		if err := os.WriteFile("config.toml", []byte("[db]\n"), 0o600); err != nil {
			t.Fatalf("Failed to write config.toml: %v", err)
		}
		if result := findConfigFile(); result != "config.toml" {
			t.Errorf("findConfigFile() = %q, want config.toml", result)
		}
	})

	t.Run("config.yaml wins over config.toml", func(t *testing.T) {
		if err := os.WriteFile("config.yaml", []byte("db: {}\n"), 0o600); err != nil {
			t.Fatalf("Failed to write config.yaml: %v", err)
		}
		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH override", func(t *testing.T) {
		custom := filepath.Join(tmpDir, "custom.toml")
		if err := os.WriteFile(custom, []byte("[db]\n"), 0o600); err != nil {
			t.Fatalf("Failed to write custom config: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, custom)
		if result := findConfigFile(); result != custom {
			t.Errorf("findConfigFile() = %q, want %q", result, custom)
		}
	})
}

const sampleTOML = `
[db]
db_flavour = "postgres"
host = "10.0.0.5"
port = 5433
user = "analyst"
password = "s3cret"
database = "ppmpkm"
schema = "public"

[filters]
KDMAP = ["411125", "411126"]
NOMINAL = [1000, 5000]

[filters_types]
KDMAP = "string"
NOMINAL = "integer"
DATEBAYAR = "datetime"
`

// TestLoadFileTOML verifies the original config.toml layout loads
func TestLoadFileTOML(t *testing.T) {
	path := writeConfigFile(t, "config.toml", sampleTOML)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Database.Host != "10.0.0.5" || cfg.Database.Port != 5433 {
		t.Errorf("Database host/port = %s:%d, want 10.0.0.5:5433", cfg.Database.Host, cfg.Database.Port)
	}
	if got := cfg.Database.TableReference(); got != "db.public.ppmpkm" {
		t.Errorf("TableReference() = %q, want db.public.ppmpkm", got)
	}
	if len(cfg.Filters["KDMAP"]) != 2 {
		t.Errorf("Filters[KDMAP] = %v, want 2 options", cfg.Filters["KDMAP"])
	}
	if cfg.FilterTypes["DATEBAYAR"] != "datetime" {
		t.Errorf("FilterTypes[DATEBAYAR] = %q, want datetime", cfg.FilterTypes["DATEBAYAR"])
	}
	// Defaults survive the file layer
	if cfg.Database.AttachAlias != "db" {
		t.Errorf("Database.AttachAlias = %q, want db", cfg.Database.AttachAlias)
	}
}

// TestLoadFileYAML verifies YAML config files
func TestLoadFileYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yaml", `
db:
  db_flavour: sqlite
  source_path: /data/sales.db
  table: orders
filters_types:
  region: string
server:
  port: 9000
logging:
  level: DEBUG
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Database.Flavour != FlavourSQLite {
		t.Errorf("Database.Flavour = %q, want sqlite", cfg.Database.Flavour)
	}
	if got := cfg.Database.TableReference(); got != "db.main.orders" {
		t.Errorf("TableReference() = %q, want db.main.orders", got)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug (normalized)", cfg.Logging.Level)
	}
}

// TestLoadFileEnvOverridesFile verifies env vars take precedence
func TestLoadFileEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "config.toml", sampleTOML)

	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DUCKDB_EXTENSIONS", "excel,httpfs")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
	if len(cfg.Database.Extensions) != 2 || cfg.Database.Extensions[1] != "httpfs" {
		t.Errorf("Database.Extensions = %v, want [excel httpfs]", cfg.Database.Extensions)
	}
}

// TestLoadFileUnsupportedExtension verifies unknown file formats are rejected
func TestLoadFileUnsupportedExtension(t *testing.T) {
	path := writeConfigFile(t, "config.ini", "[db]\n")
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported config file extension") {
		t.Errorf("LoadFile() error = %v, want unsupported extension", err)
	}
}

// TestLoadFileValidation verifies validation runs after loading
func TestLoadFileValidation(t *testing.T) {
	path := writeConfigFile(t, "config.toml", `
[db]
db_flavour = "postgres"
database = "ppmpkm"

[filters_types]
KDMAP = "boolean"
`)
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("LoadFile() error = %v, want unsupported type", err)
	}

	t.Setenv("QUERY_LENIENT_TYPES", "true")
	if _, err := LoadFile(path); err != nil {
		t.Errorf("LoadFile() with lenient types error = %v, want nil", err)
	}
}
