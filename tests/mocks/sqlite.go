package mocks

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// NewSQLite abre una base SQLite en un directorio temporal del test y
// ejecuta los scripts indicados.
func NewSQLite(t testing.TB, scripts ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { db.Close() })

	for _, s := range scripts {
		_, err := db.ExecContext(context.Background(), s)
		require.NoError(t, err)
	}
	return db
}
