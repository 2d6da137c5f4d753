// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gengsu07/edaduckdb/internal/config"
	"github.com/Gengsu07/edaduckdb/internal/introspect"
	"github.com/Gengsu07/edaduckdb/internal/models"
)

func newSchemaCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the source database",
		Long: `Browse the source database schema. PostgreSQL, MySQL and SQLite sources
are read through their own drivers and report keys and indexes. Other
flavours are described from DuckDB's view of the configured table.`,
	}
	cmd.AddCommand(newSchemaTablesCmd(g), newSchemaDescribeCmd(g))
	return cmd
}

func newSchemaTablesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List source tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}

			insp, err := introspect.Open(&cfg.Database)
			if err == nil {
				defer insp.Close()
				tables, err := insp.Tables(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), models.TableList{Flavour: insp.Flavour(), Tables: tables})
			}
			if !errors.Is(err, introspect.ErrUnsupportedFlavour) {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), models.TableList{
				Flavour: cfg.Database.Flavour,
				Tables:  []string{cfg.Database.TableReference()},
			})
		},
	}
}

func newSchemaDescribeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [table]",
		Short: "Describe a table (default: the configured table)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}

			insp, err := introspect.Open(&cfg.Database)
			if err == nil {
				defer insp.Close()
				table := cfg.Database.TableName()
				if len(args) == 1 {
					table = args[0]
				}
				def, err := insp.TableDefinition(cmd.Context(), table)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), def)
			}
			if !errors.Is(err, introspect.ErrUnsupportedFlavour) {
				return err
			}

			table := cfg.Database.TableReference()
			if len(args) == 1 {
				table = args[0]
			}
			def, err := describeWithDuckDB(cmd, cfg, table)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), def)
		},
	}
}

func describeWithDuckDB(cmd *cobra.Command, cfg *config.Config, table string) (*models.TableSchema, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	defer closeDatabase(db)

	cols, err := db.TableInfo(cmd.Context(), table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", introspect.ErrTableNotFound, table)
	}

	def := &models.TableSchema{
		Name:        table,
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
	return def, nil
}
