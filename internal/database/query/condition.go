// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package query

import (
	"fmt"
	"strings"
)

// Condition is one filter criterion.
//
// Column and Operator are written into SQL text verbatim and must come from
// trusted metadata. Operator is used for numeric and datetime comparisons and
// numeric OR-chains; it is ignored for IN membership and BETWEEN ranges.
type Condition struct {
	Column   string
	Type     SemanticType
	Operator string
	Value    Value
}

// NewCondition builds a Condition from a type tag and a loosely typed value.
// The value is normalized with ValueOf.
func NewCondition(column, semanticType, operator string, value any) (Condition, error) {
	t, err := ParseSemanticType(semanticType)
	if err != nil {
		return Condition{}, &UnsupportedSemanticTypeError{Column: column, Tag: semanticType}
	}
	return Condition{
		Column:   column,
		Type:     t,
		Operator: operator,
		Value:    ValueOf(value),
	}, nil
}

// Compile returns the SQL fragment and bind arguments for c.
// The fragment uses "?" placeholders and the number of placeholders always
// equals len(args).
func Compile(c Condition) (string, []any, error) {
	if strings.TrimSpace(c.Column) == "" {
		return "", nil, &InvalidConditionError{Column: c.Column, Reason: "column name is empty"}
	}
	if c.Value == nil {
		return "", nil, &InvalidConditionError{Column: c.Column, Reason: "value is missing"}
	}

	switch c.Type {
	case String:
		return compileString(c)
	case Integer, Float, Decimal:
		return compileNumeric(c)
	case DateTime:
		return compileDateTime(c)
	default:
		return "", nil, &UnsupportedSemanticTypeError{Column: c.Column, Tag: c.Type.String()}
	}
}

func compileString(c Condition) (string, []any, error) {
	switch v := c.Value.(type) {
	case Scalar:
		return c.Column + " = ?", []any{v.V}, nil
	case Many:
		if len(v.Items) == 0 {
			return "", nil, &InvalidConditionError{Column: c.Column, Reason: "IN list is empty"}
		}
		return fmt.Sprintf("%s IN (%s)", c.Column, placeholders(len(v.Items))), copyArgs(v.Items), nil
	case Range:
		return "", nil, &InvalidConditionError{Column: c.Column, Reason: "range values are not supported for string columns"}
	default:
		return "", nil, &InvalidConditionError{Column: c.Column, Reason: fmt.Sprintf("unknown value shape %T", c.Value)}
	}
}

func compileNumeric(c Condition) (string, []any, error) {
	switch v := c.Value.(type) {
	case Scalar:
		return comparison(c, v.V)
	case Range:
		return c.Column + " BETWEEN ? AND ?", []any{v.Low, v.High}, nil
	case Many:
		switch len(v.Items) {
		case 0:
			return "", nil, &InvalidConditionError{Column: c.Column, Reason: "value list is empty"}
		case 2:
			// Two values are a lower/upper range.
			return c.Column + " BETWEEN ? AND ?", copyArgs(v.Items), nil
		}
		op, err := operator(c)
		if err != nil {
			return "", nil, err
		}
		parts := make([]string, len(v.Items))
		for i := range v.Items {
			parts[i] = fmt.Sprintf("%s %s ?", c.Column, op)
		}
		return "(" + strings.Join(parts, " OR ") + ")", copyArgs(v.Items), nil
	default:
		return "", nil, &InvalidConditionError{Column: c.Column, Reason: fmt.Sprintf("unknown value shape %T", c.Value)}
	}
}

func compileDateTime(c Condition) (string, []any, error) {
	switch v := c.Value.(type) {
	case Scalar:
		return comparison(c, v.V)
	case Range:
		return c.Column + " BETWEEN ? AND ?", []any{v.Low, v.High}, nil
	case Many:
		if len(v.Items) < 2 {
			return "", nil, &InvalidConditionError{Column: c.Column, Reason: fmt.Sprintf("date range needs two bounds, got %d", len(v.Items))}
		}
		return c.Column + " BETWEEN ? AND ?", []any{v.Items[0], v.Items[1]}, nil
	default:
		return "", nil, &InvalidConditionError{Column: c.Column, Reason: fmt.Sprintf("unknown value shape %T", c.Value)}
	}
}

func comparison(c Condition, value any) (string, []any, error) {
	op, err := operator(c)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s ?", c.Column, op), []any{value}, nil
}

func operator(c Condition) (string, error) {
	op := strings.TrimSpace(c.Operator)
	if op == "" {
		return "", &InvalidConditionError{Column: c.Column, Reason: fmt.Sprintf("operator is required for %s comparisons", c.Type)}
	}
	return op, nil
}

// placeholders returns "?,?,...,?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func copyArgs(in []any) []any {
	out := make([]any, len(in))
	copy(out, in)
	return out
}
