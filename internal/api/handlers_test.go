// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/database"
	"github.com/Gengsu07/edaduckdb/internal/filters"
	"github.com/Gengsu07/edaduckdb/internal/models"
)

// testDBSemaphore serializes DuckDB-backed tests.
var testDBSemaphore = make(chan struct{}, 1)

// envelope is models.APIResponse with Data left raw so each test can
// decode it into the concrete payload type.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Flavour:   config.FlavourNone,
			Table:     "payments",
			Path:      ":memory:",
			MaxMemory: "512MB",
			Threads:   2,
		},
		Filters: map[string][]any{
			"kd_kpp": {"A01", "B02"},
		},
		FilterTypes: map[string]string{
			"kd_kpp":  "string",
			"npwp":    "string",
			"nominal": "integer",
			"rate":    "float",
			"tgl":     "datetime",
		},
		Query:    config.QueryConfig{MaxLimit: 50, Timeout: 30 * time.Second},
		Security: config.SecurityConfig{RateLimitReqs: 1000, RateLimitWindow: time.Minute, CORSOrigins: []string{"*"}},
		Cache:    config.CacheConfig{TTL: time.Minute},
	}
}

// setupTestHandler opens an in-memory DuckDB with a payments table and
// returns a handler over it. mutate adjusts the config before use.
func setupTestHandler(t *testing.T, mutate func(*config.Config)) *Handler {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.New(&cfg.Database, database.WithExportDir(t.TempDir()), database.WithQueryTimeout(cfg.Query.Timeout))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE payments (npwp VARCHAR, kd_kpp VARCHAR, nominal BIGINT, rate DOUBLE, tgl DATE)`,
		`INSERT INTO payments VALUES
			('001', 'A01', 100, 0.5, DATE '2024-01-05'),
			('002', 'A01', 250, 1.5, DATE '2024-02-10'),
			('003', 'B02', 400, 2.5, DATE '2024-03-15'),
			('004', 'B02', 900, 3.5, DATE '2024-04-20'),
			('005', NULL, 50, 4.5, DATE '2024-05-25')`,
	} {
		if _, err := db.Conn().ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	catalog, err := filters.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	h := NewHandler(db, catalog, cfg, WithVersion("test"))
	t.Cleanup(h.Close)
	return h
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Failed to decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func TestHealth(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var health models.HealthStatus
	env := decodeEnvelope(t, w, &health)
	if env.Status != "success" {
		t.Errorf("Expected status success, got %s", env.Status)
	}
	if health.Status != "healthy" || health.Database != "connected" {
		t.Errorf("Unexpected health: %+v", health)
	}
	if health.Version != "test" || health.Flavour != "none" || health.Table != "payments" {
		t.Errorf("Unexpected identity fields: %+v", health)
	}
}

func TestHealthProbes(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.HealthLive(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected live 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected ready 200, got %d", w.Code)
	}
	var data map[string]any
	env := decodeEnvelope(t, w, &data)
	if env.Status != "ready" || data["circuit_breaker"] != "closed" {
		t.Errorf("Unexpected readiness: %s %v", env.Status, data)
	}
}

func TestHealthReady_NoDatabase(t *testing.T) {
	h := &Handler{startTime: time.Now()}

	w := httptest.NewRecorder()
	h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestFilters(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.Filters(w, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp models.FiltersResponse
	decodeEnvelope(t, w, &resp)
	if resp.Table != "payments" {
		t.Errorf("Expected table payments, got %s", resp.Table)
	}

	names := make([]string, len(resp.Fields))
	for i, f := range resp.Fields {
		names[i] = f.Name
	}
	if want := []string{"kd_kpp", "nominal", "npwp", "rate", "tgl"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("Expected fields %v, got %v", want, names)
	}

	kpp := resp.Fields[0]
	if kpp.Type != "String" || kpp.Widget != "multiselect" || len(kpp.Options) != 2 || len(kpp.Operators) != 0 {
		t.Errorf("Unexpected kd_kpp field: %+v", kpp)
	}
	tgl := resp.Fields[4]
	if tgl.Widget != "daterange" || len(tgl.Operators) == 0 {
		t.Errorf("Unexpected tgl field: %+v", tgl)
	}
}

func TestRefreshFilters(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.RefreshFilters(w, httptest.NewRequest(http.MethodPost, "/api/v1/filters/refresh", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	field, ok := h.catalog.Field("npwp")
	if !ok {
		t.Fatal("Expected npwp field")
	}
	if want := []any{"001", "002", "003", "004", "005"}; !reflect.DeepEqual(field.Options, want) {
		t.Errorf("Expected options %v, got %v", want, field.Options)
	}

	// Configured options are left alone.
	kpp, _ := h.catalog.Field("kd_kpp")
	if len(kpp.Options) != 2 {
		t.Errorf("Expected configured kd_kpp options to stay, got %v", kpp.Options)
	}
}

func TestQuery_Success(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := postJSON(t, h.Query, "/api/v1/query", QueryRequest{
		Filters: []FilterRequest{
			{Column: "kd_kpp", Values: []any{"A01"}},
			{Column: "nominal", Operator: ">=", Values: []any{200}},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result models.QueryResult
	decodeEnvelope(t, w, &result)

	wantSQL := "SELECT * FROM payments WHERE kd_kpp IN (?) AND nominal >= ? LIMIT 100"
	if result.Statement.SQL != wantSQL {
		t.Errorf("Expected SQL %q, got %q", wantSQL, result.Statement.SQL)
	}
	if want := []any{"A01", float64(200)}; !reflect.DeepEqual(result.Statement.Args, want) {
		t.Errorf("Expected args %v, got %v", want, result.Statement.Args)
	}
	if result.RowCount != 1 || len(result.Rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", result.RowCount)
	}
	if result.Rows[0][0] != "002" {
		t.Errorf("Expected npwp 002, got %v", result.Rows[0][0])
	}
	if result.Limit != 100 {
		t.Errorf("Expected limit 100, got %d", result.Limit)
	}
}

func TestQuery_ColumnsAndCustomLimit(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := postJSON(t, h.Query, "/api/v1/query", QueryRequest{Columns: []string{"npwp"}, Limit: 2})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result models.QueryResult
	decodeEnvelope(t, w, &result)
	if result.Statement.SQL != "SELECT npwp FROM payments LIMIT 2" {
		t.Errorf("Unexpected SQL %q", result.Statement.SQL)
	}
	if len(result.Statement.Args) != 0 {
		t.Errorf("Expected no args, got %v", result.Statement.Args)
	}
	if !reflect.DeepEqual(result.Columns, []string{"npwp"}) || result.RowCount != 2 {
		t.Errorf("Unexpected result: columns=%v rows=%d", result.Columns, result.RowCount)
	}
}

func TestQuery_DateRangeAndOrChain(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := postJSON(t, h.Query, "/api/v1/query", QueryRequest{
		Filters: []FilterRequest{
			{Column: "tgl", Values: []any{"2024-02-01", "2024-04-30T00:00:00Z"}},
			{Column: "nominal", Operator: "<", Values: []any{300, 500, 1000}},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result models.QueryResult
	decodeEnvelope(t, w, &result)
	wantSQL := "SELECT * FROM payments WHERE tgl BETWEEN ? AND ? AND (nominal < ? OR nominal < ? OR nominal < ?) LIMIT 100"
	if result.Statement.SQL != wantSQL {
		t.Errorf("Expected SQL %q, got %q", wantSQL, result.Statement.SQL)
	}
	if result.Statement.Args[0] != "2024-02-01" || result.Statement.Args[1] != "2024-04-30" {
		t.Errorf("Expected ISO date bounds, got %v", result.Statement.Args[:2])
	}
	if result.RowCount != 3 {
		t.Errorf("Expected 3 rows, got %d", result.RowCount)
	}
}

func TestQuery_Errors(t *testing.T) {
	h := setupTestHandler(t, nil)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown filter",
			body:       QueryRequest{Filters: []FilterRequest{{Column: "kdmap", Values: []any{"1"}}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeUnknownFilter,
		},
		{
			name:       "operator outside allowlist",
			body:       QueryRequest{Filters: []FilterRequest{{Column: "nominal", Operator: "LIKE", Values: []any{1}}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeValidation,
		},
		{
			name:       "injected column name",
			body:       QueryRequest{Filters: []FilterRequest{{Column: "npwp; DROP TABLE payments", Values: []any{"1"}}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeValidation,
		},
		{
			name:       "limit above maximum",
			body:       QueryRequest{Limit: 51},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeValidation,
		},
		{
			name:       "non-integer value",
			body:       QueryRequest{Filters: []FilterRequest{{Column: "nominal", Values: []any{"abc"}}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeInvalidCondition,
		},
		{
			name:       "three date values",
			body:       QueryRequest{Filters: []FilterRequest{{Column: "tgl", Values: []any{"2024-01-01", "2024-02-01", "2024-03-01"}}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeInvalidCondition,
		},
		{
			name:       "unknown projection column",
			body:       QueryRequest{Columns: []string{"missing_col"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrCodeDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Query, "/api/v1/query", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			env := decodeEnvelope(t, w, nil)
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %+v", tt.wantCode, env.Error)
			}
		})
	}
}

func TestQuery_InvalidJSON(t *testing.T) {
	h := setupTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"filters": [`))
	w := httptest.NewRecorder()
	h.Query(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	env := decodeEnvelope(t, w, nil)
	if env.Error == nil || env.Error.Code != models.ErrCodeInvalidJSON {
		t.Errorf("Expected INVALID_JSON, got %+v", env.Error)
	}
}

func TestCount_Cached(t *testing.T) {
	h := setupTestHandler(t, nil)

	body := CountRequest{Filters: []FilterRequest{{Column: "tgl", Values: []any{"2024-02-01", "2024-04-30"}}}}

	w := postJSON(t, h.Count, "/api/v1/count", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var first models.CountResult
	env := decodeEnvelope(t, w, &first)
	if first.Count != 3 {
		t.Errorf("Expected count 3, got %d", first.Count)
	}
	if env.Metadata.Cached {
		t.Error("Expected first count not to be cached")
	}
	if first.Statement.SQL != "SELECT COUNT(*) FROM payments WHERE tgl BETWEEN ? AND ?" {
		t.Errorf("Unexpected SQL %q", first.Statement.SQL)
	}

	w = postJSON(t, h.Count, "/api/v1/count", body)
	var second models.CountResult
	env = decodeEnvelope(t, w, &second)
	if !env.Metadata.Cached {
		t.Error("Expected second count to be cached")
	}
	if second.Count != 3 {
		t.Errorf("Expected cached count 3, got %d", second.Count)
	}
}

func TestCount_NoFiltersIgnoresLimit(t *testing.T) {
	h := setupTestHandler(t, func(c *config.Config) { c.Cache.TTL = 0 })

	w := postJSON(t, h.Count, "/api/v1/count", CountRequest{})
	var result models.CountResult
	decodeEnvelope(t, w, &result)
	if result.Count != 5 {
		t.Errorf("Expected count 5, got %d", result.Count)
	}
	if result.Statement.SQL != "SELECT COUNT(*) FROM payments" {
		t.Errorf("Unexpected SQL %q", result.Statement.SQL)
	}
}

func TestExport_CSV(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := postJSON(t, h.Export, "/api/v1/export?format=csv", ExportRequest{
		Columns: []string{"npwp", "nominal"},
		Filters: []FilterRequest{{Column: "kd_kpp", Values: []any{"B02"}}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "all_rows_") || !strings.Contains(cd, ".csv") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got %q", w.Body.String())
	}
	if lines[0] != "npwp,nominal" {
		t.Errorf("Expected header npwp,nominal, got %q", lines[0])
	}
}

func TestExport_TooLarge(t *testing.T) {
	h := setupTestHandler(t, func(c *config.Config) { c.Export.MaxRows = 2 })

	w := postJSON(t, h.Export, "/api/v1/export", ExportRequest{})
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected status 413, got %d: %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w, nil)
	if env.Error == nil || env.Error.Code != models.ErrCodeExportTooLarge {
		t.Errorf("Expected EXPORT_TOO_LARGE, got %+v", env.Error)
	}

	// A narrower selection fits.
	w = postJSON(t, h.Export, "/api/v1/export", ExportRequest{
		Filters: []FilterRequest{{Column: "kd_kpp", Values: []any{"A01"}}},
	})
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for 2 rows, got %d", w.Code)
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	h := setupTestHandler(t, nil)

	w := postJSON(t, h.Export, "/api/v1/export?format=pdf", ExportRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	env := decodeEnvelope(t, w, nil)
	if env.Error == nil || env.Error.Code != models.ErrCodeValidation {
		t.Errorf("Expected VALIDATION_ERROR, got %+v", env.Error)
	}
	if w.Header().Get("Content-Disposition") != "" {
		t.Error("Expected no attachment header on error")
	}
}
