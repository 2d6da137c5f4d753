// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/database"
	"github.com/Gengsu07/edaduckdb/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "edaduckdb",
		Short: "Ad-hoc filter explorer over DuckDB",
		Long: `edaduckdb attaches a source table into DuckDB and lets clients filter it
by picking values for configured columns. Selections are compiled into
parameterized SQL; column names come only from the config file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default: CONFIG_PATH or ./config.{yaml,toml})")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		newServeCmd(g),
		newQueryCmd(g),
		newFiltersCmd(g),
		newSchemaCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// load reads the configuration and initializes the global logger from it.
func (g *globalFlags) load() (*config.Config, error) {
	cfg, err := config.LoadFile(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	return cfg, nil
}

// resolvedConfigPath is the file a config watcher should follow.
func (g *globalFlags) resolvedConfigPath() string {
	if g.configPath != "" {
		return g.configPath
	}
	return config.ResolvedPath()
}

func openDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database,
		database.WithQueryTimeout(cfg.Query.Timeout),
		database.WithExportDir(cfg.Export.Dir),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func closeDatabase(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
