package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	database := NewTestDB(t)

	require.NoError(t, EnsureSchema(database))
	require.NoError(t, EnsureSchema(database))

	var count int
	err := database.QueryRow(`SELECT COUNT(*) FROM local_storage`).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestOpenFileIsSharedBetweenHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.sqlite3")

	cli, err := Open(path)
	require.NoError(t, err)
	defer cli.Close()
	require.NoError(t, EnsureSchema(cli))

	server, err := Open(path)
	require.NoError(t, err)
	defer server.Close()
	require.NoError(t, EnsureSchema(server))

	_, err = cli.Exec(`INSERT INTO local_storage (key, value) VALUES ('cart', '[]')`)
	require.NoError(t, err)

	var value string
	require.NoError(t, server.QueryRow(`SELECT value FROM local_storage WHERE key = 'cart'`).Scan(&value))
	require.Equal(t, "[]", value)

	var mode string
	require.NoError(t, server.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	require.Equal(t, "wal", mode)
}
