// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Gengsu07/edaduckdb/internal/logging"
)

// Statement is the SQL text and its bind arguments. Args[i] binds to the
// i-th placeholder in SQL, reading left to right.
type Statement struct {
	SQL  string
	Args []any
}

// Placeholders returns the number of bind arguments.
func (s Statement) Placeholders() int {
	return len(s.Args)
}

// String returns the SQL text.
func (s Statement) String() string {
	return s.SQL
}

// Option configures a Builder.
type Option func(*Builder)

// WithLenientTypes makes the builder skip conditions whose semantic type is
// unknown instead of failing. Skipped conditions are logged and reported by
// Skipped.
func WithLenientTypes() Option {
	return func(b *Builder) {
		b.lenient = true
	}
}

// WithoutLimit starts the builder in LimitNone mode.
func WithoutLimit() Option {
	return func(b *Builder) {
		b.limitMode = LimitNone
	}
}

// WithPlaceholder sets the placeholder style written by BuildSelect and
// BuildCount.
func WithPlaceholder(p Placeholder) Option {
	return func(b *Builder) {
		b.placeholder = p
	}
}

// Builder accumulates compiled conditions for one table.
// A Builder must not be used from more than one goroutine.
type Builder struct {
	table       string
	clauses     []string
	args        []any
	skipped     []Condition
	limitMode   LimitMode
	limit       int
	lenient     bool
	placeholder Placeholder
}

// NewBuilder creates a Builder bound to table. The table reference is written
// into the SQL text verbatim.
func NewBuilder(table string, opts ...Option) (*Builder, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, ErrEmptyTable
	}
	b := &Builder{
		table:     table,
		clauses:   []string{},
		args:      []any{},
		limitMode: LimitDefault,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Add compiles and appends conditions in order. If any condition fails the
// builder is left unchanged.
func (b *Builder) Add(conds ...Condition) error {
	clauses := make([]string, 0, len(conds))
	var args []any
	var skipped []Condition

	for _, c := range conds {
		fragment, fragArgs, err := Compile(c)
		if err != nil {
			var typeErr *UnsupportedSemanticTypeError
			if b.lenient && errors.As(err, &typeErr) {
				skipped = append(skipped, c)
				continue
			}
			return err
		}
		clauses = append(clauses, fragment)
		args = append(args, fragArgs...)
	}

	for _, c := range skipped {
		logging.Warn().
			Str("table", b.table).
			Str("column", c.Column).
			Str("semantic_type", c.Type.String()).
			Msg("Skipping condition with unsupported semantic type")
	}

	b.clauses = append(b.clauses, clauses...)
	b.args = append(b.args, args...)
	b.skipped = append(b.skipped, skipped...)
	return nil
}

// AddCondition adds a single condition described by a type tag.
func (b *Builder) AddCondition(column, semanticType, operator string, value any) error {
	return b.AddConditions([]string{column}, []string{semanticType}, []string{operator}, []any{value})
}

// AddConditions adds one condition per index of the parallel slices.
// All four slices must have the same length; otherwise
// *ArityMismatchError is returned and nothing is added.
//
// Values may be scalars, slices, or Value instances (see ValueOf).
func (b *Builder) AddConditions(columns, types, operators []string, values []any) error {
	n := len(columns)
	if len(types) != n || len(operators) != n || len(values) != n {
		return &ArityMismatchError{
			Columns:   len(columns),
			Types:     len(types),
			Operators: len(operators),
			Values:    len(values),
		}
	}

	conds := make([]Condition, n)
	for i := range columns {
		t, err := ParseSemanticType(types[i])
		if err != nil {
			if !b.lenient {
				return &UnsupportedSemanticTypeError{Column: columns[i], Tag: types[i]}
			}
			// Zero type; Add reports it as unsupported and skips it.
			t = 0
		}
		conds[i] = Condition{
			Column:   columns[i],
			Type:     t,
			Operator: operators[i],
			Value:    ValueOf(values[i]),
		}
	}
	return b.Add(conds...)
}

// SetCustomLimit switches the builder to LimitCustom with cap n.
// n must be positive.
func (b *Builder) SetCustomLimit(n int) error {
	if n <= 0 {
		return &InvalidLimitError{Limit: n}
	}
	b.limitMode = LimitCustom
	b.limit = n
	return nil
}

// ClearConditions drops all compiled conditions, bind arguments and skipped
// conditions. The table reference and limit mode are kept.
func (b *Builder) ClearConditions() {
	b.clauses = []string{}
	b.args = []any{}
	b.skipped = nil
}

// BuildSelect returns a SELECT statement. With no columns the projection
// is "*". The limit policy applies.
func (b *Builder) BuildSelect(columns ...string) Statement {
	projection := "*"
	if len(columns) > 0 {
		projection = strings.Join(columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(projection)
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	b.writeWhere(&sb)

	switch b.limitMode {
	case LimitDefault:
		fmt.Fprintf(&sb, " LIMIT %d", DefaultLimit)
	case LimitCustom:
		fmt.Fprintf(&sb, " LIMIT %d", b.limit)
	}

	return b.statement(sb.String())
}

// BuildCount returns a SELECT COUNT(*) statement. It never has a LIMIT.
func (b *Builder) BuildCount() Statement {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(b.table)
	b.writeWhere(&sb)
	return b.statement(sb.String())
}

// Where returns the joined condition text without the WHERE keyword and a
// copy of its arguments. Both are empty when no conditions were added.
func (b *Builder) Where() (string, []any) {
	return strings.Join(b.clauses, " AND "), copyArgs(b.args)
}

func (b *Builder) writeWhere(sb *strings.Builder) {
	if len(b.clauses) == 0 {
		return
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(b.clauses, " AND "))
}

func (b *Builder) statement(sql string) Statement {
	if b.placeholder == PlaceholderDollar {
		sql = numberPlaceholders(sql)
	}
	return Statement{SQL: sql, Args: copyArgs(b.args)}
}

// numberPlaceholders rewrites each "?" to "$1", "$2", ... in text order.
// Fragment text never contains quoted literals, so every "?" is a marker.
func numberPlaceholders(sql string) string {
	var sb strings.Builder
	sb.Grow(len(sql) + 8)
	pos := 1
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' {
			fmt.Fprintf(&sb, "$%d", pos)
			pos++
			continue
		}
		sb.WriteByte(sql[i])
	}
	return sb.String()
}

// Table returns the table reference.
func (b *Builder) Table() string { return b.table }

// LimitMode returns the current limit mode.
func (b *Builder) LimitMode() LimitMode { return b.limitMode }

// Limit returns the cap applied to SELECT statements and whether one
// applies at all.
func (b *Builder) Limit() (int, bool) {
	switch b.limitMode {
	case LimitDefault:
		return DefaultLimit, true
	case LimitCustom:
		return b.limit, true
	default:
		return 0, false
	}
}

// Len returns the number of compiled conditions.
func (b *Builder) Len() int { return len(b.clauses) }

// Skipped returns the conditions dropped in lenient mode since the last
// ClearConditions.
func (b *Builder) Skipped() []Condition {
	out := make([]Condition, len(b.skipped))
	copy(out, b.skipped)
	return out
}
