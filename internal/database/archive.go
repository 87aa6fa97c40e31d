package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/webresearch/internal/model"
)

// dbFileName is the SQLite file name inside the archive directory.
const dbFileName = "webresearch.db"

// ErrArchiveNotFound is returned by Open when CreateIfNotExists is off
// and no archive exists at the given directory. Callers that only read
// the archive check for it with errors.Is instead of scaffolding an
// empty database.
var ErrArchiveNotFound = errors.New("run archive not found")

// Archive provides SQLite-based storage for finished research reports.
// Only assembled reports are stored, keyed by run ID; intermediate crawl
// state never touches the database.
//
// Design decision: We keep one database file for all runs rather than a
// file per run. Listing and re-rendering past runs then needs no
// directory scanning, and backup is a single file copy.
type Archive struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Archive behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default archive options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an Archive in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Archive, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrArchiveNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check archive path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	// modernc.org/sqlite uses URI-style mode flags: rw refuses to create
	// a new file, rwc creates one when missing.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY on concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &Archive{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := a.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (a *Archive) createTables() error {
	schema := `
	-- Runs store one finished report per research run as JSON, with a
	-- few denormalized columns so listings never parse report bodies.
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		generated_at DATETIME NOT NULL,
		keywords TEXT NOT NULL,
		pages_visited INTEGER NOT NULL DEFAULT 0,
		group_count INTEGER NOT NULL DEFAULT 0,
		degraded_groups INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at);
	`

	_, err := a.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a finished report, replacing any previous report
// saved under the same run ID.
func (a *Archive) SaveReport(ctx context.Context, report *model.Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	terms := make([]string, 0, len(report.Keywords))
	for _, kw := range report.Keywords {
		terms = append(terms, kw.Term)
	}

	query := `
	INSERT INTO runs (run_id, generated_at, keywords, pages_visited, group_count, degraded_groups, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		generated_at = excluded.generated_at,
		keywords = excluded.keywords,
		pages_visited = excluded.pages_visited,
		group_count = excluded.group_count,
		degraded_groups = excluded.degraded_groups,
		report_json = excluded.report_json
	`

	_, err = a.db.ExecContext(ctx, query,
		report.RunID,
		report.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
		strings.Join(terms, ", "),
		report.Stats.PagesVisited,
		report.Stats.GroupCount,
		report.Stats.DegradedGroups,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// RunMetadata contains summary information about an archived run.
// This is used for listing run history without loading full reports.
type RunMetadata struct {
	// RunID identifies the run.
	RunID string

	// GeneratedAt is when the report was generated, in UTC.
	GeneratedAt time.Time

	// Keywords is the comma-joined keyword terms of the run.
	Keywords string

	// PagesVisited is the number of pages the crawl fetched.
	PagesVisited int

	// GroupCount is the number of keyword groups in the report.
	GroupCount int

	// DegradedGroups counts groups that fell back to extractive summaries.
	DegradedGroups int
}

// ListRuns returns metadata for all archived runs, newest first.
func (a *Archive) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	query := `
	SELECT run_id, generated_at, keywords, pages_visited, group_count, degraded_groups
	FROM runs
	ORDER BY generated_at DESC, run_id
	`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string

		err := rows.Scan(
			&meta.RunID,
			&timestamp,
			&meta.Keywords,
			&meta.PagesVisited,
			&meta.GroupCount,
			&meta.DegradedGroups,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.GeneratedAt = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReport retrieves an archived report by run ID. The ID may be
// shortened to a unique prefix, like abbreviated commit hashes. Returns
// nil without error when no run matches; returns an error when the
// prefix matches more than one run.
func (a *Archive) GetReport(ctx context.Context, runID string) (*model.Report, error) {
	if runID == "" {
		return nil, nil
	}

	// An exact run ID sorts before any longer ID sharing it as a
	// prefix, so two rows are enough to detect ambiguity.
	query := `
	SELECT run_id, report_json FROM runs
	WHERE run_id = ? OR run_id LIKE ? || '%'
	ORDER BY run_id
	LIMIT 2
	`

	rows, err := a.db.QueryContext(ctx, query, runID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	defer rows.Close()

	var ids []string
	var bodies []string
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		ids = append(ids, id)
		bodies = append(bodies, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}

	var reportJSON string
	switch {
	case len(ids) == 0:
		return nil, nil
	case ids[0] == runID:
		reportJSON = bodies[0]
	case len(ids) > 1:
		return nil, fmt.Errorf("run id %q is ambiguous (matches %s and %s)", runID, ids[0], ids[1])
	default:
		reportJSON = bodies[0]
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// DeleteRun removes an archived run by exact run ID.
// Deleting a run that does not exist is not an error.
func (a *Archive) DeleteRun(ctx context.Context, runID string) error {
	_, err := a.db.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
