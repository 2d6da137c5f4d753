// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package models

// FilterField describes one filterable column offered to clients.
type FilterField struct {
	Name string `json:"name"`
	// Type is the semantic type name: String, Integer, Float, Decimal or DateTime.
	Type string `json:"type"`
	// Widget hints how a client should render the input: "multiselect" for
	// String, "number" for numeric types, "daterange" for DateTime.
	Widget    string   `json:"widget"`
	Operators []string `json:"operators,omitempty"`
	Options   []any    `json:"options"`
}

// FiltersResponse lists the catalog for the configured table.
type FiltersResponse struct {
	Table  string        `json:"table"`
	Fields []FilterField `json:"fields"`
}

// CompiledStatement echoes the SQL sent to DuckDB. Args are the bound values
// in placeholder order.
type CompiledStatement struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
}

// QueryResult is a sample of matching rows.
type QueryResult struct {
	Columns   []string          `json:"columns"`
	Rows      [][]any           `json:"rows"`
	RowCount  int               `json:"row_count"`
	Limit     int               `json:"limit,omitempty"`
	Statement CompiledStatement `json:"statement"`
	Skipped   []string          `json:"skipped,omitempty"`
}

// CountResult is the number of rows matching the filters, without a limit.
type CountResult struct {
	Count     int64             `json:"count"`
	Statement CompiledStatement `json:"statement"`
}

// TableList is returned by the schema tables endpoint.
type TableList struct {
	Flavour string   `json:"flavour"`
	Tables  []string `json:"tables"`
}

// ColumnSchema describes one column of a source table.
type ColumnSchema struct {
	Name         string  `json:"name"`
	DataType     string  `json:"data_type"`
	Nullable     bool    `json:"nullable"`
	Default      *string `json:"default,omitempty"`
	PrimaryKey   bool    `json:"primary_key,omitempty"`
	OrdinalIndex int     `json:"ordinal"`
}

// ForeignKeySchema describes a foreign key constraint column.
type ForeignKeySchema struct {
	Name             string `json:"name"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// IndexSchema describes an index.
type IndexSchema struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// TableSchema is the full definition of one source table.
type TableSchema struct {
	Name        string             `json:"name"`
	Columns     []ColumnSchema     `json:"columns"`
	PrimaryKeys []string           `json:"primary_keys"`
	ForeignKeys []ForeignKeySchema `json:"foreign_keys"`
	Indexes     []IndexSchema      `json:"indexes"`
}
