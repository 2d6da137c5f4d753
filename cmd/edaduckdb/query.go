// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/database"
	"github.com/Gengsu07/edaduckdb/internal/database/query"
	"github.com/Gengsu07/edaduckdb/internal/filters"
	"github.com/Gengsu07/edaduckdb/internal/models"
)

type queryFlags struct {
	where   []string
	columns []string
	limit   int
	noLimit bool
	count   bool
	lenient bool
	explain bool
	format  string
	out     string
}

func newQueryCmd(g *globalFlags) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter the source table",
		Long: `Compile filter selections into SQL and run them.

Each --where is COLUMN:OPERATOR:VALUE[,VALUE...]. The operator may be
empty; it is only used for numeric and date comparisons. Columns and
their types come from the filters_types section of the config.

  String columns    KDMAP::411111,411121          KDMAP IN (?,?)
  Numeric, 1 value  NOMINAL:>=:1000000            NOMINAL >= ?
  Numeric, 2 values NOMINAL::100,200              NOMINAL BETWEEN ? AND ?
  Numeric, 3+       NOMINAL:<:1,2,3               (NOMINAL < ? OR ...)
  Dates             DATEBAYAR::2024-01-01,2024-03-31

Without --format the rows are printed as JSON, limited to 100 rows
unless --limit or --no-limit is given. With --format the full result is
written to --out (or stdout) as CSV or XLSX.`,
		Example: `  edaduckdb query --where KDMAP::411111 --where NOMINAL:>=:1000000
  edaduckdb query --count --where DATEBAYAR::2024-01-01,2024-03-31
  edaduckdb query --explain --columns NPWP,NOMINAL --limit 10
  edaduckdb query --format xlsx --out payments.xlsx --where KDMAP::411111`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), g, f, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringArrayVarP(&f.where, "where", "w", nil, "filter COLUMN:OPERATOR:VALUES (repeatable)")
	fl.StringSliceVar(&f.columns, "columns", nil, "columns to return (default all)")
	fl.IntVar(&f.limit, "limit", 0, "custom row limit (default 100)")
	fl.BoolVar(&f.noLimit, "no-limit", false, "return every matching row")
	fl.BoolVar(&f.count, "count", false, "print the matching row count")
	fl.BoolVar(&f.lenient, "lenient", false, "skip filters with an unknown type instead of failing")
	fl.BoolVar(&f.explain, "explain", false, "print the compiled SQL and arguments without running it")
	fl.StringVar(&f.format, "format", "", "export format: csv or xlsx")
	fl.StringVarP(&f.out, "out", "o", "", "export file (default stdout)")
	cmd.MarkFlagsMutuallyExclusive("count", "format")
	cmd.MarkFlagsMutuallyExclusive("limit", "no-limit")
	return cmd
}

// parseWhere splits COLUMN:OPERATOR:VALUES. The value part keeps any
// further colons so timestamps survive.
func parseWhere(expr string) (filters.Selection, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) != 3 {
		return filters.Selection{}, fmt.Errorf("invalid --where %q: want COLUMN:OPERATOR:VALUES", expr)
	}
	column := strings.TrimSpace(parts[0])
	if column == "" {
		return filters.Selection{}, fmt.Errorf("invalid --where %q: column is empty", expr)
	}

	var values []any
	for _, v := range strings.Split(parts[2], ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return filters.Selection{}, fmt.Errorf("invalid --where %q: no values", expr)
	}

	return filters.Selection{
		Column:   column,
		Operator: strings.TrimSpace(parts[1]),
		Values:   values,
	}, nil
}

func parseWheres(exprs []string) ([]filters.Selection, error) {
	sel := make([]filters.Selection, 0, len(exprs))
	for _, e := range exprs {
		s, err := parseWhere(e)
		if err != nil {
			return nil, err
		}
		sel = append(sel, s)
	}
	return sel, nil
}

// buildStatement compiles the flags into one statement. Exports are
// never limited; counts never carry a LIMIT.
func buildStatement(cfg *config.Config, f *queryFlags) (query.Statement, *query.Builder, error) {
	sel, err := parseWheres(f.where)
	if err != nil {
		return query.Statement{}, nil, err
	}
	for _, c := range f.columns {
		if !config.IsIdentifier(c) {
			return query.Statement{}, nil, fmt.Errorf("invalid column %q", c)
		}
	}

	catalog, err := filters.FromConfig(cfg)
	if err != nil {
		return query.Statement{}, nil, err
	}
	conds, err := catalog.Conditions(sel)
	if err != nil {
		return query.Statement{}, nil, err
	}

	var opts []query.Option
	if f.lenient || cfg.Query.LenientTypes {
		opts = append(opts, query.WithLenientTypes())
	}
	if f.noLimit || f.format != "" {
		opts = append(opts, query.WithoutLimit())
	}

	b, err := query.NewBuilder(cfg.Database.TableReference(), opts...)
	if err != nil {
		return query.Statement{}, nil, err
	}
	if err := b.Add(conds...); err != nil {
		return query.Statement{}, nil, err
	}
	if f.limit > 0 && f.format == "" {
		if err := b.SetCustomLimit(f.limit); err != nil {
			return query.Statement{}, nil, err
		}
	}

	if f.count {
		return b.BuildCount(), b, nil
	}
	return b.BuildSelect(f.columns...), b, nil
}

func runQuery(ctx context.Context, g *globalFlags, f *queryFlags, w io.Writer) error {
	if f.limit < 0 {
		return &query.InvalidLimitError{Limit: f.limit}
	}
	f.format = strings.ToLower(f.format)

	cfg, err := g.load()
	if err != nil {
		return err
	}
	stmt, b, err := buildStatement(cfg, f)
	if err != nil {
		return err
	}

	if f.explain {
		return writeJSON(w, explainOutput(stmt, b))
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	switch {
	case f.count:
		n, err := db.Count(ctx, stmt)
		if err != nil {
			return err
		}
		return writeJSON(w, models.CountResult{Count: n, Statement: explainStatement(stmt)})

	case f.format != "":
		return exportRows(ctx, db, stmt, f, w)

	default:
		rs, err := db.Select(ctx, stmt)
		if err != nil {
			return err
		}
		limit, limited := b.Limit()
		result := models.QueryResult{
			Columns:   rs.Columns,
			Rows:      rs.Rows,
			RowCount:  rs.Len(),
			Statement: explainStatement(stmt),
		}
		if limited {
			result.Limit = limit
		}
		for _, c := range b.Skipped() {
			result.Skipped = append(result.Skipped, c.Column)
		}
		return writeJSON(w, result)
	}
}

func exportRows(ctx context.Context, db *database.DB, stmt query.Statement, f *queryFlags, w io.Writer) error {
	if f.out == "" {
		_, err := db.ExportTo(ctx, stmt, f.format, w)
		return err
	}
	size, err := db.Export(ctx, stmt, f.format, f.out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "wrote %s (%d bytes)\n", f.out, size)
	return err
}

type explainResult struct {
	models.CompiledStatement
	LimitMode string   `json:"limit_mode"`
	Skipped   []string `json:"skipped,omitempty"`
}

func explainOutput(stmt query.Statement, b *query.Builder) explainResult {
	out := explainResult{
		CompiledStatement: explainStatement(stmt),
		LimitMode:         b.LimitMode().String(),
	}
	for _, c := range b.Skipped() {
		out.Skipped = append(out.Skipped, c.Column)
	}
	return out
}

func explainStatement(stmt query.Statement) models.CompiledStatement {
	args := stmt.Args
	if args == nil {
		args = []any{}
	}
	return models.CompiledStatement{SQL: stmt.SQL, Args: args}
}
