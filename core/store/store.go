// Package store persists verified verse records to SQLite together with a
// full-text search index, run history, and fragment provenance. The verses
// table and the search index are written in one transaction, so no record
// ever exists in one without the other.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/openvedabase/gitabase/core/errors"
	"github.com/openvedabase/gitabase/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS verses (
	fingerprint TEXT PRIMARY KEY,
	book        TEXT NOT NULL,
	chapter     INTEGER NOT NULL,
	designator  TEXT NOT NULL,
	verse_first INTEGER NOT NULL,
	verse_last  INTEGER NOT NULL,
	sanskrit    TEXT NOT NULL DEFAULT '',
	glosses     TEXT NOT NULL DEFAULT '',
	translation TEXT NOT NULL,
	commentary  TEXT NOT NULL DEFAULT '',
	run_id      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	UNIQUE (book, chapter, designator)
);

CREATE VIRTUAL TABLE IF NOT EXISTS verse_search USING fts5(
	fingerprint UNINDEXED,
	sanskrit,
	glosses,
	translation,
	commentary
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	book       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	total      INTEGER NOT NULL,
	expected   INTEGER NOT NULL,
	pass       INTEGER NOT NULL,
	inserted   INTEGER NOT NULL,
	skipped    INTEGER NOT NULL,
	conflicts  INTEGER NOT NULL,
	report     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fragments (
	run_id  TEXT NOT NULL,
	id      TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	sha256  TEXT NOT NULL,
	blake3  TEXT NOT NULL,
	size    INTEGER NOT NULL,
	PRIMARY KEY (run_id, id)
);
`

// Store is a SQLite-backed verse store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the store at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating store directory %s", dir)
		}
	}

	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening store %s", path)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "configuring store %s", path)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "initializing schema in %s", path)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
