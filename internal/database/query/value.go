// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package query

import (
	"reflect"
)

// Value is the right-hand side of a condition. It is one of Scalar, Range
// or Many.
type Value interface {
	// Len returns the number of bind values carried.
	Len() int
	isValue()
}

// Scalar is a single bind value.
type Scalar struct {
	V any
}

// Range is an inclusive lower/upper bound pair, compiled to BETWEEN.
// Bounds are bound in the given order; they are never swapped or clamped.
type Range struct {
	Low  any
	High any
}

// Many is an ordered list of bind values.
type Many struct {
	Items []any
}

func (Scalar) isValue() {}
func (Range) isValue()  {}
func (Many) isValue()   {}

// Len returns 1.
func (Scalar) Len() int { return 1 }

// Len returns 2.
func (Range) Len() int { return 2 }

// Len returns the number of items.
func (m Many) Len() int { return len(m.Items) }

// Values builds a Many from variadic items.
func Values(items ...any) Many {
	return Many{Items: items}
}

// ValueOf normalizes a loosely typed input into a Value.
//
//   - a Value is returned unchanged
//   - slices and arrays (except []byte) become Many, preserving order
//   - anything else, including nil and []byte, becomes Scalar
func ValueOf(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return Scalar{}
	case []byte:
		return Scalar{V: t}
	case []any:
		return Many{Items: t}
	case []string:
		return Many{Items: toAny(t)}
	case []int:
		return Many{Items: toAny(t)}
	case []int64:
		return Many{Items: toAny(t)}
	case []float64:
		return Many{Items: toAny(t)}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return Many{Items: items}
	default:
		return Scalar{V: v}
	}
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
