// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package api

import (
	"net/http"
	"time"

	"github.com/Gengsu07/edaduckdb/internal/models"
)

// Health reports database connectivity and uptime. It always answers 200;
// a failed ping is reported as "degraded".
//
// @Summary Health check
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	status := "healthy"
	database := "connected"
	if !dbConnected {
		status = "degraded"
		database = "unreachable"
	}

	health := models.HealthStatus{
		Status:        status,
		Version:       h.version,
		Database:      database,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.db != nil {
		health.Flavour = h.db.Flavour()
		health.Table = h.db.TableReference()
	}

	respondSuccess(w, r, health, time.Time{}, false)
}

// HealthLive answers 200 while the process is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Time{}, false)
}

// HealthReady answers 200 only when DuckDB responds and the breaker is
// not open, otherwise 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	breaker := "unknown"
	if h.db != nil {
		breaker = h.db.BreakerState()
	}
	ready := dbConnected && breaker != "open"

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]any{
			"database_connected": dbConnected,
			"circuit_breaker":    breaker,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// PerformanceStats returns per-route latency percentiles and the most
// recent requests (?recent=N, default 20).
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	recent := getIntParam(r, "recent", 20)
	if recent < 0 || recent > 1000 {
		recent = 20
	}
	respondSuccess(w, r, map[string]any{
		"endpoints": h.perfMon.GetStats(),
		"recent":    h.perfMon.GetRecentMetrics(recent),
	}, time.Time{}, false)
}
