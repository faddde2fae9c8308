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
		Description: "relationships: affective state per user x character",
		SQL: `
CREATE TABLE relationships (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    character_id         TEXT NOT NULL,

    relationship_score   REAL NOT NULL DEFAULT 0,
    relationship_tier    TEXT NOT NULL DEFAULT 'acquaintance'
        CHECK (relationship_tier IN ('adversarial', 'neutral_negative', 'acquaintance', 'friend', 'close_friend', 'deeply_loving')),
    warmth_score         REAL NOT NULL DEFAULT 0,
    trust_score          REAL NOT NULL DEFAULT 0,
    playfulness_score    REAL NOT NULL DEFAULT 0,
    stability_score      REAL NOT NULL DEFAULT 0,

    familiarity_stage    TEXT NOT NULL DEFAULT 'early'
        CHECK (familiarity_stage IN ('early', 'developing', 'established')),

    is_ruptured          INTEGER NOT NULL DEFAULT 0,
    last_rupture_at      INTEGER,

    first_interaction_at INTEGER NOT NULL,
    last_interaction_at  INTEGER NOT NULL,
    total_interactions   INTEGER NOT NULL DEFAULT 0,
    created_at           INTEGER NOT NULL,

    UNIQUE (user_id, character_id)
);

CREATE INDEX idx_rel_last_interaction ON relationships(last_interaction_at);
`,
	},
	{
		Version:     2,
		Description: "relationship_events: append-only audit log of applied updates",
		SQL: `
CREATE TABLE relationship_events (
    id                 TEXT PRIMARY KEY,
    relationship_id    TEXT NOT NULL,
    source             TEXT,
    event_type         TEXT NOT NULL,
    sentiment          TEXT NOT NULL,

    prev_score         REAL NOT NULL,
    new_score          REAL NOT NULL,
    prev_tier          TEXT NOT NULL,
    new_tier           TEXT NOT NULL,

    score_change       REAL NOT NULL,
    warmth_change      REAL NOT NULL,
    trust_change       REAL NOT NULL,
    playfulness_change REAL NOT NULL,
    stability_change   REAL NOT NULL,

    ruptured           INTEGER NOT NULL DEFAULT 0,
    created_at         INTEGER NOT NULL,

    FOREIGN KEY (relationship_id) REFERENCES relationships(id)
);

CREATE INDEX idx_relevents_relationship ON relationship_events(relationship_id, created_at DESC);
`,
	},
	{
		Version:     3,
		Description: "pattern_insights: learned mood/action correlations per relationship",
		SQL: `
CREATE TABLE pattern_insights (
    id               TEXT PRIMARY KEY,
    relationship_id  TEXT NOT NULL,
    insight_type     TEXT NOT NULL DEFAULT 'pattern'
        CHECK (insight_type IN ('pattern', 'milestone', 'trigger')),
    key              TEXT NOT NULL,
    summary          TEXT,
    confidence       REAL NOT NULL DEFAULT 0.2,
    times_observed   INTEGER NOT NULL DEFAULT 1,
    last_observed_at INTEGER NOT NULL,
    created_at       INTEGER NOT NULL,

    UNIQUE (relationship_id, key),
    FOREIGN KEY (relationship_id) REFERENCES relationships(id)
);
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
