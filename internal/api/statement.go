// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package api

import (
	"github.com/Gengsu07/edaduckdb/internal/database/query"
	"github.com/Gengsu07/edaduckdb/internal/metrics"
	"github.com/Gengsu07/edaduckdb/internal/models"
)

// statementKind selects which statement newStatement assembles.
type statementKind int

const (
	kindSelect statementKind = iota
	kindCount
	kindExport
)

func (k statementKind) String() string {
	switch k {
	case kindCount:
		return "count"
	case kindExport:
		return "export"
	default:
		return "select"
	}
}

// compiled is an assembled statement plus what the builder dropped.
type compiled struct {
	stmt    query.Statement
	limit   int
	skipped []string
}

// newStatement validates sel against the catalog and assembles one
// statement for the configured table. limit is only used for kindSelect;
// zero keeps the default cap.
func (h *Handler) newStatement(kind statementKind, sel []FilterRequest, columns []string, limit int) (*compiled, error) {
	conds, err := h.catalog.Conditions(selections(sel))
	if err != nil {
		return nil, err
	}

	var opts []query.Option
	if h.lenientTypes() {
		opts = append(opts, query.WithLenientTypes())
	}
	if kind == kindExport {
		opts = append(opts, query.WithoutLimit())
	}

	b, err := query.NewBuilder(h.db.TableReference(), opts...)
	if err != nil {
		return nil, err
	}
	if err := b.Add(conds...); err != nil {
		return nil, err
	}
	if kind == kindSelect && limit > 0 {
		if err := b.SetCustomLimit(limit); err != nil {
			return nil, err
		}
	}

	out := &compiled{}
	switch kind {
	case kindCount:
		out.stmt = b.BuildCount()
	default:
		out.stmt = b.BuildSelect(columns...)
		out.limit, _ = b.Limit()
	}

	for _, c := range conds {
		metrics.RecordCondition(c.Type.String(), valueShape(c.Value))
	}
	for _, c := range b.Skipped() {
		out.skipped = append(out.skipped, c.Column)
	}
	metrics.RecordSkippedConditions(len(out.skipped))
	metrics.RecordStatement(kind.String(), b.LimitMode().String())
	return out, nil
}

func valueShape(v query.Value) string {
	switch v.(type) {
	case query.Range:
		return "range"
	case query.Many:
		return "many"
	default:
		return "scalar"
	}
}

func echo(stmt query.Statement) models.CompiledStatement {
	args := stmt.Args
	if args == nil {
		args = []any{}
	}
	return models.CompiledStatement{SQL: stmt.SQL, Args: args}
}
