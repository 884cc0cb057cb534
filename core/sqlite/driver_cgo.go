//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
//
// Build with: CGO_ENABLED=1 go build -tags "cgo_sqlite sqlite_fts5"
// The sqlite_fts5 tag is required for the search index tables.
package sqlite

import (
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

const (
	driverName    = "sqlite3"
	driverType    = "cgo"
	driverPackage = "github.com/mattn/go-sqlite3"
)
