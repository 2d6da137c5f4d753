// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package filters

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gengsu07/edaduckdb/internal/cache"
	"github.com/Gengsu07/edaduckdb/internal/config"
)

func testCatalog(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	c, err := New(
		map[string][]any{
			"KDMAP":  {"411125", "411126"},
			"KD_KPP": {"001", "002"},
		},
		map[string]string{
			"KDMAP":     "string",
			"KD_KPP":    "String",
			"NPWP":      "string",
			"NOMINAL":   "integer",
			"RATE":      "float",
			"AMOUNT":    "decimal",
			"DATEBAYAR": "datetime",
		},
		opts...,
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_SortsFields(t *testing.T) {
	c := testCatalog(t)

	fields := c.Fields()
	want := []string{"AMOUNT", "DATEBAYAR", "KDMAP", "KD_KPP", "NOMINAL", "NPWP", "RATE"}
	if len(fields) != len(want) {
		t.Fatalf("Expected %d fields, got %d", len(want), len(fields))
	}
	for i, name := range want {
		if fields[i].Name != name {
			t.Errorf("Expected field %d to be %s, got %s", i, name, fields[i].Name)
		}
	}
	if c.Len() != len(want) {
		t.Errorf("Expected Len %d, got %d", len(want), c.Len())
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		options map[string][]any
		types   map[string]string
	}{
		{"options without type", map[string][]any{"A": {"x"}}, map[string]string{}},
		{"unknown type", nil, map[string]string{"A": "blob"}},
		{"invalid identifier", nil, map[string]string{"A; DROP": "string"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.options, tt.types); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNew_LenientDropsUnknownTypes(t *testing.T) {
	c, err := New(nil, map[string]string{"A": "blob", "B": "integer"}, WithLenientTypes())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.Field("A"); ok {
		t.Error("Expected field A to be dropped")
	}
	if _, ok := c.Field("B"); !ok {
		t.Error("Expected field B to be kept")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Filters:     map[string][]any{"KDMAP": {"411125"}},
		FilterTypes: map[string]string{"KDMAP": "string", "X": "geometry"},
		Query:       config.QueryConfig{LenientTypes: true},
	}
	c, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 field, got %d", c.Len())
	}
}

func TestCatalog_FieldReturnsCopy(t *testing.T) {
	c := testCatalog(t)

	f, ok := c.Field("KDMAP")
	if !ok {
		t.Fatal("Expected KDMAP")
	}
	f.Options[0] = "mutated"

	again, _ := c.Field("KDMAP")
	if again.Options[0] != "411125" {
		t.Errorf("Expected catalog options unchanged, got %v", again.Options)
	}
}

func TestCatalog_Update(t *testing.T) {
	c := testCatalog(t)

	if err := c.Update(nil, map[string]string{"ONLY": "integer"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 field after update, got %d", c.Len())
	}

	if err := c.Update(nil, map[string]string{"BAD": "blob"}); err == nil {
		t.Error("Expected error for unknown type")
	}
	if _, ok := c.Field("ONLY"); !ok {
		t.Error("Expected previous fields to survive a failed update")
	}
}

type fakeSource struct {
	calls  atomic.Int32
	values map[string][]any
	err    error
}

func (f *fakeSource) DistinctValues(_ context.Context, column string, _ int) ([]any, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.values[column], nil
}

func TestCatalog_Refresh(t *testing.T) {
	ch := cache.New("filter_options_test", time.Minute)
	defer ch.Close()

	c := testCatalog(t, WithCache(ch))
	src := &fakeSource{values: map[string][]any{"NPWP": {"01", "02", "03"}}}

	if err := c.Refresh(context.Background(), src); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	f, _ := c.Field("NPWP")
	if len(f.Options) != 3 {
		t.Errorf("Expected 3 options for NPWP, got %v", f.Options)
	}
	if src.calls.Load() != 1 {
		t.Errorf("Expected 1 source call (only NPWP has no options), got %d", src.calls.Load())
	}

	// A second catalog sharing the cache does not hit the source.
	c2 := testCatalog(t, WithCache(ch))
	if err := c2.Refresh(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	if src.calls.Load() != 1 {
		t.Errorf("Expected cached options, got %d source calls", src.calls.Load())
	}
}

func TestCatalog_RefreshErrors(t *testing.T) {
	c := testCatalog(t)
	boom := errors.New("boom")

	err := c.Refresh(context.Background(), &fakeSource{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("Expected joined source error, got %v", err)
	}
}

func TestCatalog_Response(t *testing.T) {
	c := testCatalog(t)

	resp := c.Response("db.public.ppmpkm")
	if resp.Table != "db.public.ppmpkm" {
		t.Errorf("Expected table db.public.ppmpkm, got %s", resp.Table)
	}

	byName := map[string]int{}
	for i, f := range resp.Fields {
		byName[f.Name] = i
	}

	tests := []struct {
		name, typ, widget string
		hasOperators      bool
	}{
		{"KDMAP", "String", "multiselect", false},
		{"NOMINAL", "Integer", "number", true},
		{"AMOUNT", "Decimal", "number", true},
		{"DATEBAYAR", "DateTime", "daterange", true},
	}
	for _, tt := range tests {
		f := resp.Fields[byName[tt.name]]
		if f.Type != tt.typ || f.Widget != tt.widget {
			t.Errorf("%s: expected %s/%s, got %s/%s", tt.name, tt.typ, tt.widget, f.Type, f.Widget)
		}
		if (len(f.Operators) > 0) != tt.hasOperators {
			t.Errorf("%s: unexpected operators %v", tt.name, f.Operators)
		}
		if f.Options == nil {
			t.Errorf("%s: expected non-nil options", tt.name)
		}
	}
}

func TestCatalog_Suggest(t *testing.T) {
	c := testCatalog(t)

	got, err := c.Suggest("KDMAP", "41112", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "411125" || got[1] != "411126" {
		t.Errorf("Expected [411125 411126], got %v", got)
	}

	if got, _ := c.Suggest("KDMAP", "411126", 0); len(got) != 1 {
		t.Errorf("Expected exact match, got %v", got)
	}
	if got, _ := c.Suggest("KDMAP", "9", 0); len(got) != 0 {
		t.Errorf("Expected no matches, got %v", got)
	}

	// No options configured yet.
	if got, err := c.Suggest("NPWP", "0", 10); err != nil || got != nil {
		t.Errorf("Expected nil without options, got %v (%v)", got, err)
	}

	if _, err := c.Suggest("UNKNOWN", "", 10); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("Expected ErrUnknownFilter, got %v", err)
	}

	// Options loaded by Refresh become searchable.
	src := &fakeSource{values: map[string][]any{"NPWP": {"0101", "0102", "0201"}}}
	if err := c.Refresh(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Suggest("NPWP", "01", 1); len(got) != 1 || got[0] != "0101" {
		t.Errorf("Expected [0101], got %v", got)
	}
}
