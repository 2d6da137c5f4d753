// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Gengsu07/edaduckdb/internal/cache"
	"github.com/Gengsu07/edaduckdb/internal/database"
	"github.com/Gengsu07/edaduckdb/internal/filters"
	"github.com/Gengsu07/edaduckdb/internal/logging"
	"github.com/Gengsu07/edaduckdb/internal/models"
)

// Filters returns the filter catalog for the configured table.
//
// @Summary Filter catalog
// @Tags Explorer
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.FiltersResponse}
// @Router /filters [get]
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.catalog.Response(h.db.TableReference()), time.Time{}, false)
}

// RefreshFilters loads option lists for String filters configured without
// options, using distinct values from the table.
func (h *Handler) RefreshFilters(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.catalog.Refresh(r.Context(), h.db); err != nil {
		// Partial failures still leave the other columns refreshed.
		logging.Ctx(r.Context()).Warn().Err(logging.RedactError(err)).Msg("Filter refresh incomplete")
	}
	respondSuccess(w, r, h.catalog.Response(h.db.TableReference()), start, false)
}

// FilterValues returns values of one catalog column, for clients that
// load option lists lazily. ?prefix= narrows them for autocomplete.
func (h *Handler) FilterValues(w http.ResponseWriter, r *http.Request) {
	req := DistinctRequest{
		Column: chi.URLParam(r, "column"),
		Limit:  getIntParam(r, "limit", filters.DefaultOptionLimit),
		Prefix: r.URL.Query().Get("prefix"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	start := time.Now()
	known, err := h.catalog.Suggest(req.Column, req.Prefix, req.Limit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if known != nil {
		respondSuccess(w, r, known, start, false)
		return
	}

	// No configured options: ask the source. A prefix is matched over
	// the distinct values fetched.
	fetchLimit := req.Limit
	if req.Prefix != "" {
		fetchLimit = filters.DefaultOptionLimit
	}
	values, err := h.db.DistinctValues(r.Context(), req.Column, fetchLimit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if req.Prefix != "" {
		values = cache.NewPrefixIndex(values).Match(req.Prefix, req.Limit)
	}
	respondSuccess(w, r, values, start, false)
}

// Query returns a sample of rows matching the filters together with the
// compiled statement.
//
// @Summary Query sample rows
// @Tags Explorer
// @Accept json
// @Produce json
// @Param request body QueryRequest true "Selections"
// @Success 200 {object} models.APIResponse{data=models.QueryResult}
// @Failure 400 {object} models.APIResponse
// @Router /query [post]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidJSON, "Invalid JSON request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	if req.Limit > h.maxLimit() {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			fmt.Sprintf("limit must be at most %d", h.maxLimit()), nil)
		return
	}

	c, err := h.newStatement(kindSelect, req.Filters, req.Columns, req.Limit)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	start := time.Now()
	rs, err := h.db.Select(r.Context(), c.stmt)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	respondSuccess(w, r, models.QueryResult{
		Columns:   rs.Columns,
		Rows:      rs.Rows,
		RowCount:  rs.Len(),
		Limit:     c.limit,
		Statement: echo(c.stmt),
		Skipped:   c.skipped,
	}, start, false)
}

// Count returns the number of rows matching the filters. Counts are
// cached per statement for cache.ttl.
//
// @Summary Count matching rows
// @Tags Explorer
// @Accept json
// @Produce json
// @Param request body CountRequest true "Selections"
// @Success 200 {object} models.APIResponse{data=models.CountResult}
// @Router /count [post]
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	var req CountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidJSON, "Invalid JSON request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	c, err := h.newStatement(kindCount, req.Filters, nil, 0)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	key := cache.GenerateKey("count", c.stmt)
	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			if result, ok := v.(models.CountResult); ok {
				respondSuccess(w, r, result, time.Time{}, true)
				return
			}
		}
	}

	start := time.Now()
	n, err := h.db.Count(r.Context(), c.stmt)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	result := models.CountResult{Count: n, Statement: echo(c.stmt)}
	if h.cache != nil {
		h.cache.Set(key, result)
	}
	respondSuccess(w, r, result, start, false)
}

// Export streams every matching row as a csv or xlsx download. Exports
// ignore the row cap; export.max_rows rejects oversized downloads up front.
//
// @Summary Export all matching rows
// @Tags Explorer
// @Accept json
// @Produce text/csv
// @Param format query string false "csv or xlsx" default(csv)
// @Param request body ExportRequest true "Selections"
// @Success 200 {file} file
// @Failure 413 {object} models.APIResponse
// @Router /export [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidJSON, "Invalid JSON request body", err)
		return
	}
	req.Format = strings.ToLower(r.URL.Query().Get("format"))
	if req.Format == "" {
		req.Format = database.FormatCSV
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	if maxRows := h.exportMaxRows(); maxRows > 0 {
		c, err := h.newStatement(kindCount, req.Filters, nil, 0)
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		n, err := h.db.Count(r.Context(), c.stmt)
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		if n > maxRows {
			respondError(w, r, http.StatusRequestEntityTooLarge, models.ErrCodeExportTooLarge,
				fmt.Sprintf("export would contain %d rows, the limit is %d; narrow the filters", n, maxRows), nil)
			return
		}
	}

	c, err := h.newStatement(kindExport, req.Filters, req.Columns, 0)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	aw := &attachmentWriter{
		w:           w,
		contentType: database.ContentType(req.Format),
		filename:    database.ExportFilename(req.Format, time.Now()),
	}
	n, err := h.db.ExportTo(r.Context(), c.stmt, req.Format, aw)
	if err != nil {
		if !aw.started {
			respondFailure(w, r, err)
			return
		}
		// Headers are gone; the client sees a truncated download.
		logging.Ctx(r.Context()).Error().Err(logging.RedactError(err)).Int64("bytes", n).Msg("Export stream interrupted")
		return
	}
	if !aw.started {
		// COPY wrote an empty file; still send the attachment headers.
		aw.writeHeader()
	}
}

func (h *Handler) exportMaxRows() int64 {
	if h.config == nil {
		return 0
	}
	return h.config.Export.MaxRows
}

// attachmentWriter delays the download headers until the first byte, so
// an export that fails before streaming can still return a JSON error.
type attachmentWriter struct {
	w           http.ResponseWriter
	contentType string
	filename    string
	started     bool
}

func (a *attachmentWriter) writeHeader() {
	a.started = true
	a.w.Header().Set("Content-Type", a.contentType)
	a.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.filename))
	a.w.Header().Set("Cache-Control", "no-store")
	a.w.WriteHeader(http.StatusOK)
}

func (a *attachmentWriter) Write(p []byte) (int, error) {
	if !a.started {
		a.writeHeader()
	}
	return a.w.Write(p)
}
