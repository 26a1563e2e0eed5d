package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// pragmas run once when a database is opened.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// DB wraps a sql.DB connection to the neurograph SQLite database.
type DB struct {
	*sql.DB
	Path string
}

// DefaultDBPath returns the default database path: ~/.neurograph/neurograph.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get home dir")
	}
	return filepath.Join(home, ".neurograph", "neurograph.db"), nil
}

// Open opens (or creates) the SQLite database at path and brings its schema
// up to date.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}
	return open(path, path, 0)
}

// OpenMemory opens a private in-memory database, for tests and offline runs.
func OpenMemory() (*DB, error) {
	// Every pooled connection would get its own empty :memory: database.
	return open(":memory:", ":memory:", 1)
}

func open(dsn, path string, maxConns int) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}

	db := &DB{DB: sqlDB, Path: path}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return db, nil
}

func (db *DB) configurePragmas() error {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return errors.Wrapf(err, "pragma %q", p)
		}
	}
	return nil
}
