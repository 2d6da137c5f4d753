// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gengsu07/edaduckdb/internal/api"
	"github.com/Gengsu07/edaduckdb/internal/cache"
	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/database"
	"github.com/Gengsu07/edaduckdb/internal/filters"
	"github.com/Gengsu07/edaduckdb/internal/introspect"
	"github.com/Gengsu07/edaduckdb/internal/logging"
	"github.com/Gengsu07/edaduckdb/internal/metrics"
	"github.com/Gengsu07/edaduckdb/internal/supervisor"
	"github.com/Gengsu07/edaduckdb/internal/supervisor/services"
)

const (
	optionRefreshTimeout = 2 * time.Minute
	uptimeInterval       = 15 * time.Second
)

type serveFlags struct {
	listen string
	watch  bool
}

func newServeCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the explorer HTTP API under a supervisor tree.

The server stops gracefully on SIGINT or SIGTERM, giving in-flight
requests server.timeout to finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g, f)
		},
	}
	cmd.Flags().StringVarP(&f.listen, "listen", "l", "", "override listen address (host:port)")
	cmd.Flags().BoolVar(&f.watch, "watch", true, "reload filters when the config file changes")
	return cmd
}

func runServe(parent context.Context, g *globalFlags, f *serveFlags) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logging.Info().Str("version", Version).Msg("Starting edaduckdb with supervisor tree")

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)
	logging.Info().Str("flavour", db.Flavour()).Str("table", db.TableReference()).Msg("Database initialized successfully")

	var optionCache *cache.Cache
	if cfg.Cache.TTL > 0 {
		optionCache = cache.New("filter_options", cfg.Cache.TTL)
		defer optionCache.Close()
	}
	catalog, err := filters.FromConfig(cfg, filters.WithCache(optionCache))
	if err != nil {
		return err
	}

	handlerOpts := []api.HandlerOption{api.WithVersion(Version)}
	if insp := openInspector(cfg); insp != nil {
		defer func() {
			if err := insp.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing schema inspector")
			}
		}()
		handlerOpts = append(handlerOpts, api.WithInspector(insp))
	}

	handler := api.NewHandler(db, catalog, cfg, handlerOpts...)
	defer handler.Close()

	addr := cfg.Server.Addr()
	if f.listen != "" {
		addr = f.listen
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(handler, nil),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Exports stream for as long as the COPY output takes, so writes
		// are bounded by query.timeout instead.
		IdleTimeout: 60 * time.Second,
	}

	metrics.SetAppInfo(Version, runtime.Version(), db.Flavour())

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewUptimeService(uptimeInterval))
	tree.AddDataService(services.NewFilterRefreshService(catalog, db, optionRefreshTimeout))
	if path := g.resolvedConfigPath(); f.watch && path != "" {
		tree.AddDataService(services.NewConfigWatchService(path, reloadFilters(catalog, db)))
	}
	tree.AddAPIService(services.NewHTTPServerService("http-server", server, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", addr).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}

// openInspector returns nil when schema browsing is disabled or the
// flavour has no direct driver; the API then falls back to DuckDB's view
// of the attached table.
func openInspector(cfg *config.Config) *introspect.Inspector {
	if !cfg.Database.Introspect {
		return nil
	}
	insp, err := introspect.Open(&cfg.Database)
	if errors.Is(err, introspect.ErrUnsupportedFlavour) {
		logging.Info().Str("flavour", cfg.Database.Flavour).Msg("Schema inspector not available for flavour, using DuckDB metadata")
		return nil
	}
	if err != nil {
		logging.Warn().Err(logging.RedactError(err)).Msg("Schema inspector disabled")
		return nil
	}
	return insp
}

// reloadFilters swaps the catalog fields and loads options for new
// string filters that came without any.
func reloadFilters(catalog *filters.Catalog, db *database.DB) services.ConfigApplier {
	return func(cfg *config.Config) error {
		if err := catalog.Update(cfg.Filters, cfg.FilterTypes); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), optionRefreshTimeout)
		defer cancel()
		if err := catalog.Refresh(ctx, db); err != nil {
			logging.Warn().Err(err).Msg("Some filter options could not be loaded after reload")
		}
		return nil
	}
}
