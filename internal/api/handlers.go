// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package api

import (
	"time"

	"github.com/Gengsu07/edaduckdb/internal/cache"
	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/database"
	"github.com/Gengsu07/edaduckdb/internal/filters"
	"github.com/Gengsu07/edaduckdb/internal/introspect"
	"github.com/Gengsu07/edaduckdb/internal/middleware"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - helpers.go: response writing, request decoding and error mapping
//   - statement.go: selections to query.Statement
//   - handlers_explorer.go: filters, query, count and export
//   - handlers_health.go: health probes and performance stats
//   - handlers_schema.go: source schema browsing
type Handler struct {
	db        *database.DB
	catalog   *filters.Catalog
	inspector *introspect.Inspector
	config    *config.Config
	cache     *cache.Cache
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
	version   string
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithInspector enables the schema endpoints for postgres, mysql and
// sqlite sources. Without it they fall back to DuckDB's view of the
// configured table.
func WithInspector(insp *introspect.Inspector) HandlerOption {
	return func(h *Handler) {
		h.inspector = insp
	}
}

// WithCache replaces the count cache. A nil cache disables caching.
func WithCache(c *cache.Cache) HandlerOption {
	return func(h *Handler) {
		h.cache = c
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) {
		h.version = v
	}
}

// NewHandler creates a Handler.
//
// The handler initializes with:
//   - a count cache using cfg.Cache.TTL (disabled when the TTL is zero)
//   - a performance monitor keeping the last 1000 requests
//   - the start time for uptime reporting
//
// Example:
//
//	handler := api.NewHandler(db, catalog, cfg, api.WithInspector(insp))
//	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: api.NewRouter(handler)}
func NewHandler(db *database.DB, catalog *filters.Catalog, cfg *config.Config, opts ...HandlerOption) *Handler {
	h := &Handler{
		db:        db,
		catalog:   catalog,
		config:    cfg,
		perfMon:   middleware.NewPerformanceMonitor(1000, 2*time.Second),
		startTime: time.Now(),
		version:   "dev",
	}
	if cfg != nil && cfg.Cache.TTL > 0 {
		h.cache = cache.New("count", cfg.Cache.TTL)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Close releases the handler's cache. The database, catalog and
// inspector belong to the caller.
func (h *Handler) Close() {
	if h.cache != nil {
		h.cache.Close()
	}
}

// PerformanceMonitor returns the request latency monitor used by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// maxLimit returns the largest custom limit a client may request.
func (h *Handler) maxLimit() int {
	if h.config == nil || h.config.Query.MaxLimit <= 0 {
		return 10000
	}
	return h.config.Query.MaxLimit
}

func (h *Handler) lenientTypes() bool {
	return h.config != nil && h.config.Query.LenientTypes
}
