// Package sqlite selects the SQLite driver for the verse store.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// The registered driver name differs between the two implementations, so
// callers must open databases through Open rather than sql.Open.
package sqlite

import (
	"database/sql"
	"fmt"
)

// DriverName returns the name the active driver registered with database/sql.
func DriverName() string {
	return driverName
}

// DriverType identifies the underlying implementation, "purego" or "cgo".
func DriverType() string {
	return driverType
}

// IsCGO returns true when the mattn/go-sqlite3 implementation is active.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a SQLite database through the active driver.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// OpenReadOnly opens a SQLite database in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open(path + "?mode=ro")
}

// MustOpen opens a SQLite database and panics on error. For tests and
// initialization paths where failure is unrecoverable.
func MustOpen(dataSourceName string) *sql.DB {
	db, err := Open(dataSourceName)
	if err != nil {
		panic(fmt.Sprintf("sqlite: failed to open %s: %v", dataSourceName, err))
	}
	return db
}

// Info describes the compiled-in SQLite driver.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns the active driver configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
