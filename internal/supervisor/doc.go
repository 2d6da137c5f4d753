// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

/*
Package supervisor runs the long-lived parts of the explorer server under
suture v4.

	edaduckdb
	├── data-layer
	│   ├── filter-refresh   fills empty filter option lists
	│   ├── config-watch     reloads filters on config file change
	│   └── uptime           updates the uptime gauge
	└── api-layer
	    └── http-server

Crashed services restart with backoff. A job in data-layer that keeps
failing is throttled on its own and the HTTP server keeps serving.

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog into the zerolog pipeline:

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewFilterRefreshService(catalog, db, time.Minute))
	tree.AddAPIService(services.NewHTTPServerService("http-server", server, 10*time.Second))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

The service wrappers live in the services subpackage.
*/
package supervisor
