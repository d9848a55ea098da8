package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns an empty private local store, closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	local, err := Open(Memory)
	if err != nil {
		t.Fatalf("opening local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	if err := EnsureSchema(local); err != nil {
		t.Fatalf("preparing local store: %v", err)
	}
	return local
}
