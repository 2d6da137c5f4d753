// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gengsu07/edaduckdb/internal/database/query"
	"github.com/Gengsu07/edaduckdb/internal/metrics"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ExportFilename returns the download name for an export taken at t,
// e.g. all_rows_20260102_150405.csv.
func ExportFilename(format string, t time.Time) string {
	return fmt.Sprintf("all_rows_%s.%s", t.Format("20060102_150405"), format)
}

func copyOptions(format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return "FORMAT csv, HEADER", nil
	case FormatXLSX:
		return "FORMAT xlsx, HEADER true", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Export writes the rows of stmt to path with COPY. The statement must
// use ? placeholders. COPY does not accept a bound file name, so path is
// written as a quoted literal. xlsx requires the excel extension.
func (db *DB) Export(ctx context.Context, stmt query.Statement, format, path string) (int64, error) {
	format = strings.ToLower(format)
	opts, err := copyOptions(format)
	if err != nil {
		return 0, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	copySQL := fmt.Sprintf("COPY (%s) TO %s (%s)", stmt.SQL, quoteLiteral(path), opts)
	args := stmt.Args

	start := time.Now()
	_, err = execute(db, func() (struct{}, error) {
		_, err := db.conn.ExecContext(ctx, copySQL, args...)
		return struct{}{}, err
	})
	elapsed := time.Since(start)
	metrics.RecordDBQuery("export", db.table, elapsed, err)

	if err != nil {
		metrics.RecordExport(format, 0, err)
		db.qlog.LogFailed(ctx, "export", copySQL, len(args), err)
		return 0, fmt.Errorf("export failed: %w", err)
	}

	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	metrics.RecordExport(format, size, nil)
	db.qlog.LogExport(ctx, format, path, size, elapsed)
	return size, nil
}

// ExportTo exports stmt into a spool file under the export directory and
// streams it to w. The spool file is removed afterwards.
func (db *DB) ExportTo(ctx context.Context, stmt query.Statement, format string, w io.Writer) (int64, error) {
	format = strings.ToLower(format)
	if _, err := copyOptions(format); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(db.exportDir, 0o750); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(db.exportDir, "export-"+uuid.NewString()+"."+format)
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			db.qlog.LogFailed(ctx, "export_cleanup", path, 0, err)
		}
	}()

	if _, err := db.Export(ctx, stmt, format, path); err != nil {
		return 0, err
	}

	f, err := os.Open(path) //nolint:gosec // path is built from a uuid under the export dir
	if err != nil {
		return 0, fmt.Errorf("failed to open export file: %w", err)
	}
	defer closeWithLog(f, "export file")

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("failed to stream export: %w", err)
	}
	return n, nil
}
