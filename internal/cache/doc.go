// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package cache provides the in-memory TTL cache used for COUNT results and
// distinct filter option lists.
//
// Keys are built with GenerateKey from the statement text and its bound
// arguments, so two requests with the same filters share an entry:
//
//	key := cache.GenerateKey("count", stmt)
//	if v, ok := counts.Get(key); ok {
//	    return v.(int64), nil
//	}
//
// Each cache is named; the name becomes the cache_type label on the
// cache_hits_total, cache_misses_total, cache_entries and
// cache_evictions_total metrics.
package cache
