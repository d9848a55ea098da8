// Package db is the on-disk side of the storefront's local storage. The
// cart and the admin session live in one SQLite file that survives restarts
// and is shared by every storefront process pointed at it.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Memory opens a private store that is discarded on Close.
const Memory = ":memory:"

// sharedPragmas let a running serve and CLI invocations write the same file
// without failing on each other's locks.
var sharedPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
}

// Open returns the local store at path. It does not create the schema; call
// EnsureSchema before use.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening local store %s: %w", path, err)
	}

	if path == Memory {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
		return db, nil
	}

	for _, p := range sharedPragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring local store %s (%s): %w", path, p, err)
		}
	}
	return db, nil
}
