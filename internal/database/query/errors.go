// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package query

import (
	"errors"
	"fmt"
)

// ErrEmptyTable is returned by NewBuilder for a blank table reference.
var ErrEmptyTable = errors.New("query: table reference is empty")

// ArityMismatchError reports parallel condition slices of unequal length.
// It is returned before any condition in the batch is compiled.
type ArityMismatchError struct {
	Columns   int
	Types     int
	Operators int
	Values    int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("query: condition inputs must have the same length (columns=%d, types=%d, operators=%d, values=%d)",
		e.Columns, e.Types, e.Operators, e.Values)
}

// UnsupportedSemanticTypeError reports a type tag outside the closed set
// string, integer, float, decimal, datetime.
type UnsupportedSemanticTypeError struct {
	Column string
	Tag    string
}

func (e *UnsupportedSemanticTypeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("query: unsupported semantic type %q", e.Tag)
	}
	return fmt.Sprintf("query: unsupported semantic type %q for column %s", e.Tag, e.Column)
}

// InvalidConditionError reports a condition whose value shape or operator
// cannot produce a valid fragment.
type InvalidConditionError struct {
	Column string
	Reason string
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("query: invalid condition on column %q: %s", e.Column, e.Reason)
}

// InvalidLimitError reports a non-positive custom row cap.
type InvalidLimitError struct {
	Limit int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("query: custom limit must be positive, got %d", e.Limit)
}
