// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Gengsu07/edaduckdb/internal/database"
	"github.com/Gengsu07/edaduckdb/internal/database/query"
	"github.com/Gengsu07/edaduckdb/internal/filters"
	"github.com/Gengsu07/edaduckdb/internal/introspect"
	"github.com/Gengsu07/edaduckdb/internal/logging"
	"github.com/Gengsu07/edaduckdb/internal/models"
	"github.com/Gengsu07/edaduckdb/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue replaces control characters so client input cannot
// forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes response with an ETag computed over the body.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag returns the FNV-1a hash of data as a quoted entity tag.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondSuccess wraps data in a success envelope. start is when query
// work began; the zero time omits query_time_ms.
func respondSuccess(w http.ResponseWriter, r *http.Request, data any, start time.Time, cached bool) {
	meta := models.Metadata{
		Timestamp: time.Now(),
		RequestID: logging.RequestIDFromContext(r.Context()),
		Cached:    cached,
	}
	if !start.IsZero() && !cached {
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// respondError sends an error envelope. err is logged, never returned to
// the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	var requestID string
	if r != nil {
		requestID = logging.RequestIDFromContext(r.Context())
	}

	if err != nil {
		ev := logging.Error()
		if status < http.StatusInternalServerError {
			ev = logging.Warn()
		}
		ev.Str("code", sanitizeLogValue(code)).
			Str("request_id", requestID).
			Str("error", sanitizeLogValue(logging.RedactError(err).Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: requestID,
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondAPIError sends a pre-built APIError, typically from validateRequest.
func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: apiErr,
	})
}

// validateRequest validates v with go-playground/validator. It returns nil
// when v is valid.
//
// Example:
//
//	var req QueryRequest
//	if apiErr := validateRequest(&req); apiErr != nil {
//	    respondAPIError(w, r, http.StatusBadRequest, apiErr)
//	    return
//	}
func validateRequest(v any) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v
// unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// errorResponse maps an error from the filter, query, database or
// introspection layers to an HTTP status, error code and client message.
// Server-side failures get a generic message; the detail is only logged.
func errorResponse(err error) (status int, code, message string) {
	var (
		typeErr  *query.UnsupportedSemanticTypeError
		condErr  *query.InvalidConditionError
		limitErr *query.InvalidLimitError
		arityErr *query.ArityMismatchError
	)

	switch {
	case errors.Is(err, filters.ErrUnknownFilter):
		return http.StatusBadRequest, models.ErrCodeUnknownFilter, err.Error()
	case errors.Is(err, filters.ErrOperatorNotAllowed):
		return http.StatusBadRequest, models.ErrCodeOperator, err.Error()
	case errors.Is(err, filters.ErrInvalidValue), errors.As(err, &condErr), errors.As(err, &arityErr):
		return http.StatusBadRequest, models.ErrCodeInvalidCondition, err.Error()
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, models.ErrCodeUnsupportedType, err.Error()
	case errors.As(err, &limitErr),
		errors.Is(err, database.ErrInvalidIdentifier),
		errors.Is(err, database.ErrUnsupportedFormat):
		return http.StatusBadRequest, models.ErrCodeValidation, err.Error()
	case errors.Is(err, introspect.ErrTableNotFound):
		return http.StatusNotFound, models.ErrCodeNotFound, err.Error()
	case errors.Is(err, introspect.ErrUnsupportedFlavour):
		return http.StatusNotImplemented, models.ErrCodeNotConfigured, err.Error()
	case errors.Is(err, database.ErrCircuitOpen):
		return http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Database is temporarily unavailable, retry shortly"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, models.ErrCodeTimeout, "Query timed out"
	case database.IsClientError(err):
		return http.StatusBadRequest, models.ErrCodeDatabase, logging.RedactError(err).Error()
	default:
		return http.StatusInternalServerError, models.ErrCodeDatabase, "Query failed"
	}
}

// respondFailure maps err with errorResponse and writes the envelope.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := errorResponse(err)
	respondError(w, r, status, code, message, err)
}
