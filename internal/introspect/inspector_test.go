// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package introspect

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/models"
)

// setupSQLite writes a small schema to a temp file and opens a read-only
// inspector on it.
func setupSQLite(t *testing.T) *Inspector {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.db")
	rw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE kpp (kd_kpp TEXT PRIMARY KEY, nama TEXT NOT NULL)`,
		`CREATE TABLE ppmpkm (
			npwp TEXT NOT NULL,
			kd_kpp TEXT REFERENCES kpp(kd_kpp),
			kdmap TEXT,
			nominal INTEGER DEFAULT 0,
			datebayar DATE,
			PRIMARY KEY (npwp, datebayar)
		)`,
		`CREATE INDEX idx_ppmpkm_kdmap ON ppmpkm (kdmap)`,
		`CREATE UNIQUE INDEX idx_ppmpkm_kpp_map ON ppmpkm (kd_kpp, kdmap)`,
	} {
		if _, err := rw.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}

	insp, err := Open(&config.DatabaseConfig{Flavour: "sqlite", SourcePath: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = insp.Close() })
	return insp
}

func TestOpen_UnsupportedFlavour(t *testing.T) {
	for _, flavour := range []string{"duckdb", "none", ""} {
		if _, err := Open(&config.DatabaseConfig{Flavour: flavour}); !errors.Is(err, ErrUnsupportedFlavour) {
			t.Errorf("flavour %q: expected ErrUnsupportedFlavour, got %v", flavour, err)
		}
	}
	if _, err := Open(&config.DatabaseConfig{Flavour: "sqlite"}); err == nil {
		t.Error("Expected error for sqlite without source_path")
	}
}

func TestInspector_Tables(t *testing.T) {
	insp := setupSQLite(t)

	tables, err := insp.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if !reflect.DeepEqual(tables, []string{"kpp", "ppmpkm"}) {
		t.Errorf("Expected [kpp ppmpkm], got %v", tables)
	}
	if insp.Flavour() != "sqlite" || insp.Schema() != "main" {
		t.Errorf("Unexpected flavour/schema %s/%s", insp.Flavour(), insp.Schema())
	}
	if err := insp.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestInspector_Columns(t *testing.T) {
	insp := setupSQLite(t)

	cols, err := insp.Columns(context.Background(), "ppmpkm")
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != 5 {
		t.Fatalf("Expected 5 columns, got %d", len(cols))
	}

	npwp := cols[0]
	if npwp.Name != "npwp" || npwp.DataType != "TEXT" || npwp.Nullable || !npwp.PrimaryKey || npwp.OrdinalIndex != 1 {
		t.Errorf("Unexpected npwp column: %+v", npwp)
	}
	nominal := cols[3]
	if nominal.Default == nil || *nominal.Default != "0" {
		t.Errorf("Expected nominal default 0, got %v", nominal.Default)
	}
	if cols[2].PrimaryKey {
		t.Error("Expected kdmap not to be a primary key")
	}

	if got := ColumnsOfType(cols, "text"); !reflect.DeepEqual(got, []string{"npwp", "kd_kpp", "kdmap"}) {
		t.Errorf("Expected text columns [npwp kd_kpp kdmap], got %v", got)
	}
}

func TestInspector_Keys(t *testing.T) {
	insp := setupSQLite(t)
	ctx := context.Background()

	pks, err := insp.PrimaryKeys(ctx, "ppmpkm")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(pks, []string{"npwp", "datebayar"}) {
		t.Errorf("Expected [npwp datebayar], got %v", pks)
	}

	fks, err := insp.ForeignKeys(ctx, "ppmpkm")
	if err != nil {
		t.Fatal(err)
	}
	want := []models.ForeignKeySchema{{
		Name: "ppmpkm_fk_0", Column: "kd_kpp", ReferencedTable: "kpp", ReferencedColumn: "kd_kpp",
	}}
	if !reflect.DeepEqual(fks, want) {
		t.Errorf("Expected %+v, got %+v", want, fks)
	}
}

func TestInspector_Indexes(t *testing.T) {
	insp := setupSQLite(t)

	idx, err := insp.Indexes(context.Background(), "ppmpkm")
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]models.IndexSchema{}
	for _, i := range idx {
		byName[i.Name] = i
	}

	kdmap, ok := byName["idx_ppmpkm_kdmap"]
	if !ok || kdmap.Unique || !reflect.DeepEqual(kdmap.Columns, []string{"kdmap"}) {
		t.Errorf("Unexpected idx_ppmpkm_kdmap: %+v", kdmap)
	}
	pair, ok := byName["idx_ppmpkm_kpp_map"]
	if !ok || !pair.Unique || !reflect.DeepEqual(pair.Columns, []string{"kd_kpp", "kdmap"}) {
		t.Errorf("Unexpected idx_ppmpkm_kpp_map: %+v", pair)
	}
}

func TestInspector_TableDefinition(t *testing.T) {
	insp := setupSQLite(t)

	def, err := insp.TableDefinition(context.Background(), "kpp")
	if err != nil {
		t.Fatalf("TableDefinition: %v", err)
	}
	if def.Name != "kpp" || len(def.Columns) != 2 {
		t.Errorf("Unexpected definition: %+v", def)
	}
	if !reflect.DeepEqual(def.PrimaryKeys, []string{"kd_kpp"}) {
		t.Errorf("Expected [kd_kpp], got %v", def.PrimaryKeys)
	}
	if def.ForeignKeys == nil || def.Indexes == nil {
		t.Error("Expected empty slices rather than nil")
	}
}

func TestInspector_Errors(t *testing.T) {
	insp := setupSQLite(t)
	ctx := context.Background()

	if _, err := insp.Columns(ctx, "missing"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Expected ErrTableNotFound, got %v", err)
	}
	if _, err := insp.Columns(ctx, `ppmpkm"); DROP TABLE kpp; --`); err == nil {
		t.Error("Expected invalid table name error")
	}
	if _, err := insp.Indexes(ctx, "main.ppmpkm"); err == nil {
		t.Error("Expected qualified names to be rejected")
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN(&config.DatabaseConfig{
		Host: "10.0.0.5", Port: 3306, User: "root", Password: "p@ss", Database: "sales",
	})

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", dsn, err)
	}
	if parsed.Addr != "10.0.0.5:3306" || parsed.User != "root" || parsed.Passwd != "p@ss" || parsed.DBName != "sales" {
		t.Errorf("Unexpected parsed config: %+v", parsed)
	}
	if !parsed.ParseTime {
		t.Error("Expected parseTime=true")
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("/data/source.db")
	if !strings.HasPrefix(dsn, "file:/data/source.db?") || !strings.Contains(dsn, "mode=ro") {
		t.Errorf("Unexpected DSN %q", dsn)
	}
}
