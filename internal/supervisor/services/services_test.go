// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/filters"
)

type stubSource struct{}

func (stubSource) DistinctValues(ctx context.Context, column string, limit int) ([]any, error) {
	return []any{"A01"}, nil
}

type stubRefresher struct {
	calls atomic.Int32
	errs  []error
}

func (r *stubRefresher) Refresh(ctx context.Context, src filters.OptionSource) error {
	n := int(r.calls.Add(1)) - 1
	if n < len(r.errs) {
		return r.errs[n]
	}
	return nil
}

func TestFilterRefreshService_Success(t *testing.T) {
	r := &stubRefresher{}
	err := NewFilterRefreshService(r, stubSource{}, time.Second).Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("Expected ErrDoNotRestart, got %v", err)
	}
	if r.calls.Load() != 1 {
		t.Errorf("Expected 1 refresh, got %d", r.calls.Load())
	}
}

func TestFilterRefreshService_Failure(t *testing.T) {
	boom := errors.New("connection refused")
	r := &stubRefresher{errs: []error{boom}}
	err := NewFilterRefreshService(r, stubSource{}, 0).Serve(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped refresh error, got %v", err)
	}
}

func TestFilterRefreshService_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &stubRefresher{errs: []error{context.Canceled}}
	if err := NewFilterRefreshService(r, stubSource{}, 0).Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFilterRefreshService_RetriedBySupervisor(t *testing.T) {
	r := &stubRefresher{errs: []error{errors.New("first"), errors.New("second")}}

	sup := suture.New("test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewFilterRefreshService(r, stubSource{}, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errCh := sup.ServeBackground(ctx)

	deadline := time.After(time.Second)
	for r.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("Expected 3 attempts, got %d", r.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-errCh
}

func TestFilterRefreshService_Catalog(t *testing.T) {
	catalog, err := filters.New(map[string][]any{"kd_kpp": nil}, map[string]string{"kd_kpp": "string"})
	if err != nil {
		t.Fatal(err)
	}
	_ = NewFilterRefreshService(catalog, stubSource{}, time.Second).Serve(context.Background())

	f, ok := catalog.Field("kd_kpp")
	if !ok || len(f.Options) != 1 || f.Options[0] != "A01" {
		t.Errorf("Expected options [A01], got %+v", f)
	}
}

func TestUptimeService(t *testing.T) {
	svc := NewUptimeService(0)
	if svc.interval != 15*time.Second {
		t.Errorf("Expected default interval 15s, got %v", svc.interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewUptimeService(time.Millisecond).Serve(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("uptime service did not stop")
	}
}

const watchTOML = `
[db]
db_flavour = "none"
table = "payments"

[filters]
kd_kpp = ["A01", "B02"]

[filters_types]
kd_kpp = "string"
nominal = "integer"
`

func writeWatchConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigWatchService_Reload(t *testing.T) {
	path := writeWatchConfig(t, watchTOML)

	var applied *config.Config
	svc := NewConfigWatchService(path, func(cfg *config.Config) error {
		applied = cfg
		return nil
	})
	svc.reload()

	if applied == nil {
		t.Fatal("Expected config to be applied")
	}
	if len(applied.Filters["kd_kpp"]) != 2 || applied.FilterTypes["nominal"] != "integer" {
		t.Errorf("Unexpected filters %v / %v", applied.Filters, applied.FilterTypes)
	}
}

func TestConfigWatchService_ReloadKeepsPreviousOnError(t *testing.T) {
	path := writeWatchConfig(t, "[db]\ndb_flavour = \"oracle\"\n")

	calls := 0
	svc := NewConfigWatchService(path, func(cfg *config.Config) error {
		calls++
		return nil
	})
	svc.reload()

	if calls != 0 {
		t.Errorf("Expected invalid config not to be applied, got %d calls", calls)
	}
}

func TestConfigWatchService_MissingFile(t *testing.T) {
	svc := NewConfigWatchService(filepath.Join(t.TempDir(), "missing.toml"), func(*config.Config) error { return nil })
	if err := svc.Serve(context.Background()); err == nil {
		t.Error("Expected error watching a missing file")
	}
}

func TestConfigWatchService_StopsOnCancel(t *testing.T) {
	path := writeWatchConfig(t, watchTOML)
	svc := NewConfigWatchService(path, func(*config.Config) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("config watch did not stop")
	}
}

func TestServiceNames(t *testing.T) {
	tests := []struct {
		svc  suture.Service
		want string
	}{
		{NewFilterRefreshService(&stubRefresher{}, stubSource{}, 0), "filter-refresh"},
		{NewUptimeService(time.Second), "uptime"},
		{NewConfigWatchService("x.toml", nil), "config-watch"},
	}
	for _, tt := range tests {
		if got := tt.svc.(interface{ String() string }).String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}
