package store

import (
	"github.com/pkg/errors"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "agents and experiences",
		SQL: `
CREATE TABLE agents (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE experiences (
    id         TEXT PRIMARY KEY,
    agent_id   TEXT,
    summary    TEXT NOT NULL DEFAULT '',
    importance REAL CHECK (importance IS NULL OR (importance >= 0 AND importance <= 1)),
    created_at INTEGER NOT NULL,

    FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE
);

CREATE INDEX idx_experiences_agent ON experiences(agent_id, created_at);
`,
	},
	{
		Version:     2,
		Description: "patterns and knowledge",
		SQL: `
CREATE TABLE patterns (
    id          TEXT PRIMARY KEY,
    agent_id    TEXT,
    description TEXT NOT NULL DEFAULT '',
    confidence  REAL CHECK (confidence IS NULL OR (confidence >= 0 AND confidence <= 1)),
    created_at  INTEGER NOT NULL,

    FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE
);

CREATE TABLE knowledge (
    id         TEXT PRIMARY KEY,
    agent_id   TEXT,
    content    TEXT NOT NULL DEFAULT '',
    confidence REAL CHECK (confidence IS NULL OR (confidence >= 0 AND confidence <= 1)),
    created_at INTEGER NOT NULL,

    FOREIGN KEY (agent_id) REFERENCES agents(id) ON DELETE CASCADE
);

CREATE INDEX idx_patterns_agent  ON patterns(agent_id, created_at);
CREATE INDEX idx_knowledge_agent ON knowledge(agent_id, created_at);
`,
	},
}

// migrate applies every migration newer than the recorded schema, each in
// its own transaction. A database written by a newer build is refused.
func (db *DB) migrate() error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`); err != nil {
		return errors.Wrap(err, "create schema_versions")
	}

	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	latest := migrations[len(migrations)-1].Version
	if current > latest {
		return errors.Errorf("schema version %d is newer than this build supports (%d)", current, latest)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := db.apply(m); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) apply(m migration) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin migration %d", m.Version)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(m.SQL); err != nil {
		return errors.Wrapf(err, "migration %d (%s)", m.Version, m.Description)
	}
	if _, err = tx.Exec(`INSERT INTO schema_versions (version, description) VALUES (?, ?)`,
		m.Version, m.Description); err != nil {
		return errors.Wrapf(err, "record migration %d", m.Version)
	}
	return errors.Wrapf(tx.Commit(), "commit migration %d", m.Version)
}

// SchemaVersion returns the highest applied migration, 0 for a new database.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_versions`).Scan(&version)
	return version, errors.Wrap(err, "read schema version")
}
