// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package api

import (
	"github.com/Gengsu07/edaduckdb/internal/filters"
)

// FilterRequest is one column selection in a request body. Column and
// Operator end up in SQL text, so both are validated here and again
// against the filter catalog.
type FilterRequest struct {
	Column   string `json:"column" validate:"required,identifier"`
	Operator string `json:"operator,omitempty" validate:"omitempty,comparison"`
	Values   []any  `json:"values" validate:"max=1000"`
}

// QueryRequest is the body of POST /query.
//
// Fields:
//   - Columns: projection; empty selects every column
//   - Limit: custom row cap (0 uses the default cap, bounded by query.max_limit)
//   - Filters: selections combined with AND
type QueryRequest struct {
	Columns []string        `json:"columns,omitempty" validate:"max=200,dive,identifier"`
	Limit   int             `json:"limit,omitempty" validate:"min=0"`
	Filters []FilterRequest `json:"filters,omitempty" validate:"max=100,dive"`
}

// CountRequest is the body of POST /count.
type CountRequest struct {
	Filters []FilterRequest `json:"filters,omitempty" validate:"max=100,dive"`
}

// ExportRequest is the body of POST /export. Exports never carry a row
// cap; export.max_rows is enforced with a count first.
type ExportRequest struct {
	Format  string          `json:"-" validate:"oneof=csv xlsx"`
	Columns []string        `json:"columns,omitempty" validate:"max=200,dive,identifier"`
	Filters []FilterRequest `json:"filters,omitempty" validate:"max=100,dive"`
}

// SchemaTableRequest validates the table path parameter.
type SchemaTableRequest struct {
	Table string `validate:"required,identifier,max=128"`
}

// DistinctRequest validates GET /filters/{column}/values parameters.
type DistinctRequest struct {
	Column string `validate:"required,identifier"`
	Limit  int    `validate:"min=1,max=10000"`
	Prefix string `validate:"max=256"`
}

func selections(in []FilterRequest) []filters.Selection {
	out := make([]filters.Selection, len(in))
	for i, f := range in {
		out[i] = filters.Selection{
			Column:   f.Column,
			Operator: f.Operator,
			Values:   f.Values,
		}
	}
	return out
}
