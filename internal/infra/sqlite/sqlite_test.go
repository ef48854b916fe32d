package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutu-network/numgen/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRun(id string, at time.Time) domain.Run {
	return domain.Run{
		ID:          id,
		Country:     domain.CountryResolution{RegionCode: "PK", CallingCode: 92, DisplayName: "Pakistan"},
		Mode:        domain.ModeFixedPrefix,
		LocalLength: 10,
		Requested:   3,
		Accepted:    2,
		Attempts:    30,
		Exhausted:   true,
		StartedAt:   at,
		Elapsed:     1500 * time.Millisecond,
	}
}

func testRecords(at time.Time, numbers ...string) []domain.GeneratedRecord {
	out := make([]domain.GeneratedRecord, len(numbers))
	for i, n := range numbers {
		out[i] = domain.GeneratedRecord{
			E164Number:     "+92" + n,
			NationalNumber: n,
			RegionCode:     "PK",
			CallingCode:    92,
			GeneratedAt:    at,
		}
	}
	return out
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "export.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("export.db should exist")
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.db")
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.SaveRun(testRun("run-1", at), testRecords(at, "3001234567"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err, "migrations must be idempotent")
	defer db.Close()
	n, err := db.CountNumbers()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// ─── Run Repository ─────────────────────────────────────────────────────────

func TestSaveRun_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	run := testRun("run-1", at)

	n, err := db.SaveRun(run, testRecords(at, "3001234567", "3007654321"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := db.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.Country, got.Country)
	assert.Equal(t, run.Mode, got.Mode)
	assert.Equal(t, run.Attempts, got.Attempts)
	assert.True(t, got.Exhausted)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, run.Elapsed, got.Elapsed)

	records, err := db.ListNumbers("run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "+923001234567", records[0].E164Number, "numbers keep insertion order")
	assert.Equal(t, "+923007654321", records[1].E164Number)
	assert.Equal(t, "2024-05-06T07:08:09", records[0].Timestamp())
}

func TestGetRun_NotFound(t *testing.T) {
	db := newTestDB(t)
	got, err := db.GetRun("missing")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetRun(missing) = %+v, want nil", got)
	}
}

func TestSaveRun_SkipsNumbersFromEarlierRuns(t *testing.T) {
	db := newTestDB(t)
	at := time.Now()

	_, err := db.SaveRun(testRun("run-1", at), testRecords(at, "3001234567"))
	require.NoError(t, err)
	n, err := db.SaveRun(testRun("run-2", at.Add(time.Second)), testRecords(at, "3001234567", "3111111111"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	total, err := db.CountNumbers()
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	runs, err := db.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
}

func TestSaveRun_DuplicateRunID(t *testing.T) {
	db := newTestDB(t)
	at := time.Now()

	_, err := db.SaveRun(testRun("run-1", at), testRecords(at, "3001234567"))
	require.NoError(t, err)
	_, err = db.SaveRun(testRun("run-1", at), testRecords(at, "3111111111"))
	require.Error(t, err)

	n, err := db.CountNumbers()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed run must roll back")
}
