package sqlite

import (
	"path/filepath"
	"testing"
)

func TestDriverInfo(t *testing.T) {
	info := GetInfo()

	if info.DriverName == "" {
		t.Error("DriverName should not be empty")
	}
	if info.DriverType == "" {
		t.Error("DriverType should not be empty")
	}
	if info.Package == "" {
		t.Error("Package should not be empty")
	}

	if info.DriverName != DriverName() {
		t.Errorf("DriverName mismatch: info=%s, func=%s", info.DriverName, DriverName())
	}
	if info.DriverType != DriverType() {
		t.Errorf("DriverType mismatch: info=%s, func=%s", info.DriverType, DriverType())
	}
	if info.IsCGO != IsCGO() {
		t.Errorf("IsCGO mismatch: info=%v, func=%v", info.IsCGO, IsCGO())
	}
}

func TestDriverTypeConsistency(t *testing.T) {
	switch DriverType() {
	case "purego":
		if IsCGO() {
			t.Error("IsCGO() = true for purego driver")
		}
		if DriverName() != "sqlite" {
			t.Errorf("purego driver name = %q, want %q", DriverName(), "sqlite")
		}
	case "cgo":
		if !IsCGO() {
			t.Error("IsCGO() = false for cgo driver")
		}
		if DriverName() != "sqlite3" {
			t.Errorf("cgo driver name = %q, want %q", DriverName(), "sqlite3")
		}
	default:
		t.Errorf("unknown driver type: %s", DriverType())
	}
}

func TestOpenRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE test (id INTEGER PRIMARY KEY, value TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO test (value) VALUES (?)`, "hello"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var value string
	if err := db.QueryRow(`SELECT value FROM test WHERE id = 1`).Scan(&value); err != nil {
		t.Fatalf("query: %v", err)
	}
	if value != "hello" {
		t.Errorf("value = %q, want %q", value, "hello")
	}
}

func TestOpenReadOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE test (id INTEGER PRIMARY KEY, value TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO test (value) VALUES (?)`, "readonly"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	rodb, err := OpenReadOnly(dbPath)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer rodb.Close()

	var value string
	if err := rodb.QueryRow(`SELECT value FROM test WHERE id = 1`).Scan(&value); err != nil {
		t.Fatalf("query: %v", err)
	}
	if value != "readonly" {
		t.Errorf("value = %q, want %q", value, "readonly")
	}

	if _, err := rodb.Exec(`INSERT INTO test (value) VALUES (?)`, "nope"); err == nil {
		t.Error("insert on a read-only database succeeded")
	}
}

func TestMustOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db := MustOpen(dbPath)
	db.Close()
}

func TestFTS5Available(t *testing.T) {
	db := MustOpen(filepath.Join(t.TempDir(), "fts.db"))
	defer db.Close()

	if _, err := db.Exec(`CREATE VIRTUAL TABLE probe USING fts5(body)`); err != nil {
		t.Fatalf("FTS5 unavailable in %s driver: %v", DriverType(), err)
	}
	if _, err := db.Exec(`INSERT INTO probe (body) VALUES ('supreme abode')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var body string
	if err := db.QueryRow(`SELECT body FROM probe WHERE probe MATCH 'abode'`).Scan(&body); err != nil {
		t.Fatalf("match query: %v", err)
	}
	if body != "supreme abode" {
		t.Errorf("body = %q", body)
	}
}
