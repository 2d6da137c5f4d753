// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Gengsu07/edaduckdb/internal/models"
)

// SchemaTables lists the tables of the source database. Without an
// inspector (duckdb and none flavours, or introspect disabled) only the
// configured table is listed.
func (h *Handler) SchemaTables(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.inspector == nil {
		respondSuccess(w, r, models.TableList{
			Flavour: h.db.Flavour(),
			Tables:  []string{h.db.TableReference()},
		}, start, false)
		return
	}

	tables, err := h.inspector.Tables(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if tables == nil {
		tables = []string{}
	}
	respondSuccess(w, r, models.TableList{Flavour: h.inspector.Flavour(), Tables: tables}, start, false)
}

// SchemaTable describes one table. With an inspector the answer includes
// keys and indexes; otherwise DuckDB's column list is returned.
func (h *Handler) SchemaTable(w http.ResponseWriter, r *http.Request) {
	req := SchemaTableRequest{Table: chi.URLParam(r, "table")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	start := time.Now()
	if h.inspector != nil {
		def, err := h.inspector.TableDefinition(r.Context(), req.Table)
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		respondSuccess(w, r, def, start, false)
		return
	}

	cols, err := h.db.TableInfo(r.Context(), req.Table)
	if err != nil && !strings.Contains(err.Error(), "Catalog Error") {
		respondFailure(w, r, err)
		return
	}
	if len(cols) == 0 {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "table not found: "+req.Table, nil)
		return
	}

	def := models.TableSchema{
		Name:        req.Table,
		Columns:     cols,
		PrimaryKeys: []string{},
		ForeignKeys: []models.ForeignKeySchema{},
		Indexes:     []models.IndexSchema{},
	}
	for _, c := range cols {
		if c.PrimaryKey {
			def.PrimaryKeys = append(def.PrimaryKeys, c.Name)
		}
	}
	respondSuccess(w, r, def, start, false)
}
