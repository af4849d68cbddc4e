// Package sqlite provides embedded-database implementations of the store
// interfaces on modernc.org/sqlite (cgo-free). It backs local development
// and the store contract tests; production deployments use postgres.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Open opens (and creates if needed) the sqlite database at the given path
// and applies the connection settings the stores rely on.
//
// The pool is capped at a single connection: sqlite serializes writers
// anyway, and a single connection keeps the version-check updates free of
// SQLITE_BUSY retries.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database at %s: %w", path, err)
	}

	return db, nil
}
