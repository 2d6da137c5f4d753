// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

// Package validation validates API request structs with go-playground/validator v10.
//
// A single validator instance is shared by all handlers. On top of the built-in
// tags it registers:
//
//   - identifier: a column or table name made of letters, digits and
//     underscores, optionally dotted (schema.table)
//   - comparison: one of the comparison operators a filter may carry
//     (=, !=, <>, >, <, >=, <=)
//
// Failures come back as *RequestValidationError, which converts to the
// VALIDATION_ERROR envelope used by the API:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
