// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package query

import (
	"strings"
)

// SemanticType is the caller-declared logical type of a filter column.
// It is independent of the column's storage type in the database engine.
type SemanticType int

const (
	// String columns compile to equality or IN membership.
	String SemanticType = iota + 1
	// Integer columns compile to comparisons, ranges or OR-chains.
	Integer
	// Float behaves like Integer.
	Float
	// Decimal behaves like Integer.
	Decimal
	// DateTime columns compile to comparisons or BETWEEN ranges.
	DateTime
)

// semanticTypeNames maps lower-case tags to types.
var semanticTypeNames = map[string]SemanticType{
	"string":   String,
	"integer":  Integer,
	"float":    Float,
	"decimal":  Decimal,
	"datetime": DateTime,
}

// ParseSemanticType parses a type tag case-insensitively.
// Surrounding whitespace is ignored. Unknown tags return
// *UnsupportedSemanticTypeError.
func ParseSemanticType(tag string) (SemanticType, error) {
	if t, ok := semanticTypeNames[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return t, nil
	}
	return 0, &UnsupportedSemanticTypeError{Tag: tag}
}

// String returns the canonical lower-case tag.
func (t SemanticType) String() string {
	switch t {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Decimal:
		return "decimal"
	case DateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the declared semantic types.
func (t SemanticType) Valid() bool {
	return t >= String && t <= DateTime
}

// IsNumeric reports whether t is Integer, Float or Decimal.
func (t SemanticType) IsNumeric() bool {
	return t == Integer || t == Float || t == Decimal
}

// MarshalText implements encoding.TextMarshaler.
func (t SemanticType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &UnsupportedSemanticTypeError{Tag: t.String()}
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SemanticType) UnmarshalText(text []byte) error {
	parsed, err := ParseSemanticType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// LimitMode selects the row cap appended to SELECT statements.
type LimitMode int

const (
	// LimitDefault appends LIMIT DefaultLimit.
	LimitDefault LimitMode = iota
	// LimitCustom appends the cap given to SetCustomLimit.
	LimitCustom
	// LimitNone appends no LIMIT clause.
	LimitNone
)

// DefaultLimit is the row cap used in LimitDefault mode.
const DefaultLimit = 100

// String returns the mode name.
func (m LimitMode) String() string {
	switch m {
	case LimitDefault:
		return "default"
	case LimitCustom:
		return "custom"
	case LimitNone:
		return "none"
	default:
		return "unknown"
	}
}

// Placeholder is the bind-parameter marker style written into SQL text.
type Placeholder int

const (
	// PlaceholderQuestion writes "?" (DuckDB, SQLite, MySQL).
	PlaceholderQuestion Placeholder = iota
	// PlaceholderDollar writes "$1", "$2", ... (PostgreSQL).
	PlaceholderDollar
)
