// Package sqlite writes generation runs to a standalone SQLite export file.
// Each export is a self-contained database holding one or more runs and
// their numbers; it is never read back by numgen itself except in tests and
// the `show` command.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/tutu-network/numgen/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db   *sql.DB
	path string
}

// Open creates or opens the SQLite database at path.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db, path: path}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			country_iso  TEXT NOT NULL,
			calling_code INTEGER NOT NULL,
			country_name TEXT NOT NULL DEFAULT '',
			mode         TEXT NOT NULL,
			local_length INTEGER NOT NULL,
			requested    INTEGER NOT NULL,
			accepted     INTEGER NOT NULL,
			attempts     INTEGER NOT NULL,
			exhausted    BOOLEAN DEFAULT 0,
			started_at   INTEGER NOT NULL,
			elapsed_ms   INTEGER NOT NULL DEFAULT 0
		)`,

		// Column names match the CSV export header.
		`CREATE TABLE IF NOT EXISTS numbers (
			e164_number          TEXT PRIMARY KEY,
			national_number      TEXT NOT NULL,
			country_iso          TEXT NOT NULL,
			country_calling_code INTEGER NOT NULL,
			generation_timestamp TEXT NOT NULL,
			run_id               TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq                  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_numbers_run ON numbers(run_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Run Repository ─────────────────────────────────────────────────────────

// SaveRun stores a run and its records in one transaction. Numbers already
// present from an earlier run in the same file are skipped, keeping
// e164_number unique across the export.
func (d *DB) SaveRun(run domain.Run, records []domain.GeneratedRecord) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, country_iso, calling_code, country_name, mode, local_length,
			requested, accepted, attempts, exhausted, started_at, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Country.RegionCode, run.Country.CallingCode, run.Country.DisplayName,
		string(run.Mode), run.LocalLength, run.Requested, run.Accepted, run.Attempts,
		run.Exhausted, run.StartedAt.Unix(), run.Elapsed.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO numbers (e164_number, national_number, country_iso, country_calling_code,
			generation_timestamp, run_id, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(e164_number) DO NOTHING`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	written := 0
	for i, r := range records {
		res, err := stmt.Exec(r.E164Number, r.NationalNumber, r.RegionCode, r.CallingCode,
			r.Timestamp(), run.ID, i)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.E164Number, err)
		}
		n, _ := res.RowsAffected()
		written += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

// GetRun retrieves a run by ID. Returns nil, nil when absent.
func (d *DB) GetRun(id string) (*domain.Run, error) {
	row := d.db.QueryRow(
		`SELECT id, country_iso, calling_code, country_name, mode, local_length,
			requested, accepted, attempts, exhausted, started_at, elapsed_ms
		 FROM runs WHERE id = ?`, id,
	)
	return scanRun(row)
}

// ListRuns returns all runs, oldest first.
func (d *DB) ListRuns() ([]domain.Run, error) {
	rows, err := d.db.Query(
		`SELECT id, country_iso, calling_code, country_name, mode, local_length,
			requested, accepted, attempts, exhausted, started_at, elapsed_ms
		 FROM runs ORDER BY started_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// ListNumbers returns a run's records in insertion order.
func (d *DB) ListNumbers(runID string) ([]domain.GeneratedRecord, error) {
	rows, err := d.db.Query(
		`SELECT e164_number, national_number, country_iso, country_calling_code, generation_timestamp
		 FROM numbers WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GeneratedRecord
	for rows.Next() {
		var r domain.GeneratedRecord
		var ts string
		if err := rows.Scan(&r.E164Number, &r.NationalNumber, &r.RegionCode, &r.CallingCode, &ts); err != nil {
			return nil, err
		}
		if t, err := time.ParseInLocation(domain.TimestampLayout, ts, time.Local); err == nil {
			r.GeneratedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountNumbers returns the total number of stored numbers.
func (d *DB) CountNumbers() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM numbers`).Scan(&n)
	return n, err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.Run, error) {
	var r domain.Run
	var mode string
	var startedAt, elapsedMs int64

	err := s.Scan(&r.ID, &r.Country.RegionCode, &r.Country.CallingCode, &r.Country.DisplayName,
		&mode, &r.LocalLength, &r.Requested, &r.Accepted, &r.Attempts, &r.Exhausted,
		&startedAt, &elapsedMs)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	r.Mode = domain.GenerationMode(mode)
	r.StartedAt = time.Unix(startedAt, 0)
	r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	return &r, nil
}
