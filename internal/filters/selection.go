// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package filters

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Gengsu07/edaduckdb/internal/database/query"
	"github.com/Gengsu07/edaduckdb/internal/validation"
)

var (
	// ErrUnknownFilter is returned for a column that is not in the catalog.
	ErrUnknownFilter = errors.New("unknown filter column")

	// ErrOperatorNotAllowed is returned for an operator outside
	// validation.ComparisonOperators.
	ErrOperatorNotAllowed = errors.New("operator not allowed")

	// ErrInvalidValue is returned when a value does not fit the column's
	// semantic type.
	ErrInvalidValue = errors.New("invalid filter value")
)

// Selection is what a client picked for one column. Operator is optional
// and only used for numeric and date comparisons.
type Selection struct {
	Column   string
	Operator string
	Values   []any
}

// Conditions turns selections into query conditions. Only catalog
// columns and allow-listed operators get through, so the result is safe
// to hand to query.Builder, which writes both into SQL text. Selections
// without values are skipped.
//
// String columns always become an IN list. Numeric columns become a
// comparison for one value, a range for two and an OR chain for more.
// Date columns become a comparison for one value and a range of ISO
// dates for two.
func (c *Catalog) Conditions(sel []Selection) ([]query.Condition, error) {
	out := make([]query.Condition, 0, len(sel))
	for _, s := range sel {
		if len(s.Values) == 0 {
			continue
		}

		field, ok := c.Field(s.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, s.Column)
		}

		op := strings.TrimSpace(s.Operator)
		if op != "" && !validation.IsComparisonOperator(op) {
			return nil, fmt.Errorf("%w: %q on %s", ErrOperatorNotAllowed, op, s.Column)
		}

		cond, err := condition(field, op, s.Values)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func condition(f Field, op string, values []any) (query.Condition, error) {
	cond := query.Condition{Column: f.Name, Type: f.Type, Operator: op}

	switch {
	case f.Type == query.String:
		items := make([]any, len(values))
		for i, v := range values {
			s, err := stringValue(v)
			if err != nil {
				return cond, valueError(f.Name, err)
			}
			items[i] = s
		}
		cond.Operator = "IN"
		cond.Value = query.Many{Items: items}

	case f.Type.IsNumeric():
		items := make([]any, len(values))
		for i, v := range values {
			n, err := numericValue(f.Type, v)
			if err != nil {
				return cond, valueError(f.Name, err)
			}
			items[i] = n
		}
		if cond.Operator == "" {
			cond.Operator = "="
		}
		switch len(items) {
		case 1:
			cond.Value = query.Scalar{V: items[0]}
		case 2:
			cond.Value = query.Range{Low: items[0], High: items[1]}
		default:
			cond.Value = query.Many{Items: items}
		}

	case f.Type == query.DateTime:
		if len(values) > 2 {
			return cond, valueError(f.Name, fmt.Errorf("date filter takes one or two values, got %d", len(values)))
		}
		items := make([]any, len(values))
		for i, v := range values {
			d, err := dateValue(v)
			if err != nil {
				return cond, valueError(f.Name, err)
			}
			items[i] = d
		}
		if len(items) == 1 {
			if cond.Operator == "" {
				cond.Operator = "="
			}
			cond.Value = query.Scalar{V: items[0]}
		} else {
			cond.Operator = ""
			cond.Value = query.Range{Low: items[0], High: items[1]}
		}

	default:
		return cond, &query.UnsupportedSemanticTypeError{Column: f.Name, Tag: f.Type.String()}
	}
	return cond, nil
}

func valueError(column string, err error) error {
	return fmt.Errorf("%w for %s: %w", ErrInvalidValue, column, err)
}

func stringValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value %T", v)
	}
}

// numericValue converts a decoded JSON value for a numeric column.
// Integer columns get int64, Float columns float64. Decimal strings are
// passed through so DuckDB converts them without float rounding.
func numericValue(t query.SemanticType, v any) (any, error) {
	switch val := v.(type) {
	case float64:
		if t == query.Integer {
			if val != math.Trunc(val) || math.IsInf(val, 0) {
				return nil, fmt.Errorf("%v is not an integer", val)
			}
			return int64(val), nil
		}
		return val, nil
	case int:
		return numericValue(t, int64(val))
	case int64:
		if t == query.Integer {
			return val, nil
		}
		return float64(val), nil
	case json.Number:
		return numericValue(t, val.String())
	case string:
		s := strings.TrimSpace(val)
		switch t {
		case query.Integer:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", val)
			}
			return n, nil
		case query.Decimal:
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("%q is not a number", val)
			}
			return s, nil
		default:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number", val)
			}
			return f, nil
		}
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
}

// dateValue returns v as an ISO date, or an ISO timestamp when it has a
// time of day.
func dateValue(v any) (string, error) {
	var t time.Time
	switch val := v.(type) {
	case time.Time:
		t = val
	case string:
		s := strings.TrimSpace(val)
		var parsed bool
		for _, layout := range dateLayouts {
			if p, err := time.Parse(layout, s); err == nil {
				t, parsed = p, true
				break
			}
		}
		if !parsed {
			return "", fmt.Errorf("%q is not a date (want YYYY-MM-DD)", val)
		}
	default:
		return "", fmt.Errorf("unsupported date value %T", v)
	}

	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly), nil
	}
	return t.Format(time.DateTime), nil
}
