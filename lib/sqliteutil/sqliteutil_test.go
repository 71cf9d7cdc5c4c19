package sqliteutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenDB(t *testing.T) {
	schema := `create table if not exists kv (k text primary key, v text not null);`

	for _, dsn := range []string{":memory:", filepath.Join(t.TempDir(), "sub", "test.db")} {
		db, err := OpenDB(schema, dsn)
		if err != nil {
			t.Fatal(err)
		}

		_, err = db.Exec("insert into kv (k, v) values (?, ?)", "a", "1")
		require.NoError(t, err)

		var v string
		err = db.QueryRow("select v from kv where k = ?", "a").Scan(&v)
		require.NoError(t, err)
		require.Equal(t, "1", v)
		require.NoError(t, db.Close())
	}
}

func TestOpenDBEmpty(t *testing.T) {
	_, err := OpenDB("", "")
	require.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	require.True(t, isRemote("libsql://results.turso.io"))
	require.True(t, isRemote("https://results.turso.io"))
	require.False(t, isRemote("results.db"))
	require.False(t, isRemote(":memory:"))
}
