// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package validation

import (
	"strings"
	"testing"
)

type filterInput struct {
	Column   string `validate:"required,identifier"`
	Operator string `validate:"omitempty,comparison"`
	Values   []any  `validate:"max=1000"`
}

type queryInput struct {
	Columns []string      `validate:"omitempty,dive,identifier"`
	Limit   int           `validate:"omitempty,min=1,max=10000"`
	Format  string        `validate:"omitempty,oneof=csv xlsx"`
	Filters []filterInput `validate:"dive"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input queryInput
	}{
		{"empty request", queryInput{}},
		{
			name: "columns, limit and filters",
			input: queryInput{
				Columns: []string{"kdkpp", "nama_wp"},
				Limit:   500,
				Format:  "xlsx",
				Filters: []filterInput{
					{Column: "kdkpp", Values: []any{"001", "002"}},
					{Column: "nominal", Operator: ">=", Values: []any{1000}},
					{Column: "datebayar", Values: []any{"2024-01-01", "2024-01-31"}},
				},
			},
		},
		{"dotted identifier", queryInput{Columns: []string{"t.kdkpp"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     queryInput
		wantField string
		wantTag   string
	}{
		{
			name:      "limit too large",
			input:     queryInput{Limit: 10001},
			wantField: "Limit",
			wantTag:   "max",
		},
		{
			name:      "unknown format",
			input:     queryInput{Format: "parquet"},
			wantField: "Format",
			wantTag:   "oneof",
		},
		{
			name:      "injected column",
			input:     queryInput{Columns: []string{"a; DROP TABLE t"}},
			wantField: "Columns[0]",
			wantTag:   "identifier",
		},
		{
			name:      "missing filter column",
			input:     queryInput{Filters: []filterInput{{Values: []any{1}}}},
			wantField: "Filters[0].Column",
			wantTag:   "required",
		},
		{
			name:      "operator outside allowlist",
			input:     queryInput{Filters: []filterInput{{Column: "a", Operator: "LIKE"}}},
			wantField: "Filters[0].Operator",
			wantTag:   "comparison",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, errs[0].Field())
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Expected tag %q, got %q", tt.wantTag, errs[0].Tag())
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&queryInput{Limit: 20000})
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if apiErr.Message != "Limit must be at most 10000" {
		t.Errorf("Expected max message, got %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "Limit" {
		t.Errorf("Expected field detail 'Limit', got %v", apiErr.Details["field"])
	}

	multi := ValidateStruct(&queryInput{Limit: 20000, Format: "pdf"})
	apiErr = multi.ToAPIError()
	if !strings.Contains(apiErr.Message, "Limit:") || !strings.Contains(apiErr.Message, "Format:") {
		t.Errorf("Expected both fields in message, got %q", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]any)
	if !ok || len(fields) != 2 {
		t.Errorf("Expected 2 field details, got %v", apiErr.Details["fields"])
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("Expected generic message, got %q", empty.Message)
	}
}

func TestTranslateMessages(t *testing.T) {
	err := ValidateStruct(&filterInput{Column: "1abc", Values: make([]any, 1001)})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Column must be a plain identifier") {
		t.Errorf("Expected identifier message, got %q", msg)
	}
	if !strings.Contains(msg, "Values must be at most 1000 items") {
		t.Errorf("Expected item count message, got %q", msg)
	}
}

func TestIsComparisonOperator(t *testing.T) {
	for _, op := range ComparisonOperators {
		if !IsComparisonOperator(op) {
			t.Errorf("Expected %q to be allowed", op)
		}
	}
	for _, op := range []string{"", "LIKE", "IN", "=;", "= 1 OR 1"} {
		if IsComparisonOperator(op) {
			t.Errorf("Expected %q to be rejected", op)
		}
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("Expected error for non-struct input")
	}
	if err.Errors()[0].Field() != "unknown" {
		t.Errorf("Expected field 'unknown', got %q", err.Errors()[0].Field())
	}
}
