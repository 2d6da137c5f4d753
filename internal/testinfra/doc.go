// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package testinfra starts throwaway source databases in Docker for
// integration tests. It is only compiled with -tags integration.
//
//	func TestPostgresSource(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    src, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, src)
//
//	    src.MustExec(t, ctx, `CREATE TABLE payments (npwp TEXT PRIMARY KEY, nominal BIGINT)`)
//	    cfg := src.DatabaseConfig("payments")
//	    insp, err := introspect.Open(&cfg)
//	    // ...
//	}
//
// The first run pulls postgres and mysql images; later runs use the local
// image cache. Tests skip when the docker CLI cannot reach a daemon.
package testinfra
