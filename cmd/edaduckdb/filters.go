// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package main

import (
	"github.com/spf13/cobra"

	"github.com/Gengsu07/edaduckdb/internal/filters"
	"github.com/Gengsu07/edaduckdb/internal/logging"
)

func newFiltersCmd(g *globalFlags) *cobra.Command {
	var refresh bool
	var optionLimit int

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Print the filter catalog",
		Long: `Print the columns that can be filtered, with their type, allowed
operators and options. With --refresh, string columns configured
without options are filled with distinct values from the source table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			catalog, err := filters.FromConfig(cfg, filters.WithOptionLimit(optionLimit))
			if err != nil {
				return err
			}

			if refresh {
				db, err := openDatabase(cfg)
				if err != nil {
					return err
				}
				defer closeDatabase(db)
				if err := catalog.Refresh(cmd.Context(), db); err != nil {
					logging.Warn().Err(err).Msg("Some filter options could not be loaded")
				}
			}

			return writeJSON(cmd.OutOrStdout(), catalog.Response(cfg.Database.TableReference()))
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "load missing options from the source table")
	cmd.Flags().IntVar(&optionLimit, "option-limit", filters.DefaultOptionLimit, "maximum distinct values loaded per column")
	return cmd
}
