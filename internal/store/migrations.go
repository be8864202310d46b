package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "relationships: one row per counterpart identity",
		SQL: `
CREATE TABLE relationships (
    id               INTEGER PRIMARY KEY,
    counterpart_key  TEXT NOT NULL UNIQUE,
    display_name     TEXT,
    first_contact_at INTEGER NOT NULL,
    last_contact_at  INTEGER NOT NULL,
    total_sent       INTEGER NOT NULL DEFAULT 0,

    -- Derived, recomputed by the scoring pass
    days_since_last  INTEGER NOT NULL DEFAULT 0,
    avg_per_month    REAL NOT NULL DEFAULT 0,
    frequency        REAL NOT NULL DEFAULT 0,
    health_score     INTEGER NOT NULL DEFAULT 0,

    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL
);

CREATE INDEX idx_rel_last_contact ON relationships(last_contact_at DESC);
CREATE INDEX idx_rel_health       ON relationships(health_score DESC);
CREATE INDEX idx_rel_avg_month    ON relationships(avg_per_month DESC);
`,
	},
	{
		Version:     2,
		Description: "records: append-only outbound communication events",
		SQL: `
CREATE TABLE records (
    id              INTEGER PRIMARY KEY,
    relationship_id INTEGER NOT NULL,
    external_id     TEXT NOT NULL UNIQUE,
    thread_id       TEXT,
    subject         TEXT,
    channel         TEXT NOT NULL CHECK (channel IN ('email', 'message')),
    sent_at         INTEGER NOT NULL,
    storage_tier    TEXT NOT NULL CHECK (storage_tier IN ('full', 'summary', 'metadata')),
    content         TEXT,
    summary         TEXT,
    word_count      INTEGER NOT NULL DEFAULT 0,
    created_at      INTEGER NOT NULL,

    FOREIGN KEY (relationship_id) REFERENCES relationships(id)
);

CREATE INDEX idx_records_relationship ON records(relationship_id);
CREATE INDEX idx_records_sent_at      ON records(sent_at DESC);
`,
	},
	{
		Version:     3,
		Description: "checkpoints: resumable pipeline progress",
		SQL: `
CREATE TABLE checkpoints (
    id                INTEGER PRIMARY KEY,
    run_id            TEXT NOT NULL UNIQUE,
    run_type          TEXT NOT NULL,
    window_cursor     INTEGER NOT NULL DEFAULT 0,
    records_processed INTEGER NOT NULL DEFAULT 0,
    status            TEXT NOT NULL DEFAULT 'running' CHECK (status IN ('running', 'completed', 'error')),
    message           TEXT,
    started_at        INTEGER NOT NULL,
    ended_at          INTEGER
);

CREATE INDEX idx_ckpt_type_started ON checkpoints(run_type, started_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
