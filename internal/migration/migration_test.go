package migration

import (
	"database/sql"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"001_init.sql": &fstest.MapFile{
			Data: []byte(`CREATE TABLE tracker_task (tid INTEGER PRIMARY KEY, title TEXT NOT NULL);`),
		},
		"002_add_notes.sql": &fstest.MapFile{
			Data: []byte(`ALTER TABLE tracker_task ADD COLUMN notes TEXT;`),
		},
	}
}

func TestApply(t *testing.T) {
	db := openDB(t)
	r := NewRunner(db, testFS(), SQLite)

	applied, err := r.Apply()
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}

	version, err := r.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	if _, err := db.Exec(`INSERT INTO tracker_task (title, notes) VALUES ('t', 'n')`); err != nil {
		t.Errorf("migrated schema unusable: %v", err)
	}

	// A second run finds nothing pending.
	applied, err = r.Apply()
	if err != nil {
		t.Fatalf("Apply again: %v", err)
	}
	if applied != 0 {
		t.Errorf("applied = %d, want 0", applied)
	}
}

func TestApplyResumesFromCurrentVersion(t *testing.T) {
	db := openDB(t)

	fsys := testFS()
	partial := fstest.MapFS{"001_init.sql": fsys["001_init.sql"]}
	if _, err := NewRunner(db, partial, SQLite).Apply(); err != nil {
		t.Fatalf("Apply first: %v", err)
	}

	applied, err := NewRunner(db, fsys, SQLite).Apply()
	if err != nil {
		t.Fatalf("Apply rest: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want only the pending one", applied)
	}
}

func TestValidateRejectsNewerSchema(t *testing.T) {
	db := openDB(t)
	r := NewRunner(db, testFS(), SQLite)
	if _, err := r.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("bump version: %v", err)
	}

	err := r.Validate()
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Validate = %v, want newer-schema error", err)
	}
	if _, err := r.Apply(); err == nil {
		t.Error("Apply against a newer schema should fail")
	}
}

func TestReadFilesRejectsBadNames(t *testing.T) {
	db := openDB(t)

	bad := fstest.MapFS{
		"init.sql": &fstest.MapFile{Data: []byte(`SELECT 1;`)},
	}
	if _, err := NewRunner(db, bad, SQLite).Apply(); err == nil {
		t.Error("a file without a version prefix should fail")
	}

	dup := testFS()
	dup["002_other.sql"] = &fstest.MapFile{Data: []byte(`SELECT 1;`)}
	if _, err := NewRunner(db, dup, SQLite).Apply(); err == nil {
		t.Error("duplicate versions should fail")
	}
}

func TestFreshDatabaseIsVersionZero(t *testing.T) {
	db := openDB(t)
	r := NewRunner(db, fstest.MapFS{}, SQLite)
	version, err := r.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}
}
