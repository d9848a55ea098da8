package db

import (
	"database/sql"
	"fmt"
)

// schema holds the local storage table. Values are opaque strings; callers
// decide the encoding (JSON for the cart, raw text for the admin token).
const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// migrations run in order after the schema. Each must be idempotent.
// Append new migrations at the end.
var migrations = []string{
	// Migration 1: index for change polling by other processes.
	`CREATE INDEX IF NOT EXISTS idx_local_storage_updated_at
	     ON local_storage(updated_at)`,
}

// EnsureSchema creates the tables and applies migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
