package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func isRemote(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") ||
		strings.HasPrefix(dsn, "http://") ||
		strings.HasPrefix(dsn, "https://") ||
		strings.HasPrefix(dsn, "wss://") ||
		strings.HasPrefix(dsn, "ws://")
}

// OpenDB opens a local sqlite file (or `:memory:`) or a remote libsql
// database and applies the given schema.
func OpenDB(schema, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}

	var db *sql.DB
	var err error
	if isRemote(dsn) {
		db, err = sql.Open("libsql", dsn)
		if err != nil {
			return nil, err
		}
	} else {
		if dsn != ":memory:" {
			err = os.MkdirAll(filepath.Dir(dsn), 0755)
			if err != nil {
				return nil, err
			}
		}
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// sqlite does not handle concurrent writers, a single connection also
		// keeps `:memory:` databases alive for the lifetime of the *sql.DB.
		db.SetMaxOpenConns(1)
		if dsn != ":memory:" {
			_, err = db.Exec("PRAGMA journal_mode=WAL")
			if err != nil {
				db.Close()
				return nil, err
			}
		}
	}

	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}
