package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/lazypower/rapport/internal/relationship"
)

const relationshipColumns = `id, user_id, character_id,
	relationship_score, relationship_tier,
	warmth_score, trust_score, playfulness_score, stability_score,
	familiarity_stage, is_ruptured, last_rupture_at,
	first_interaction_at, last_interaction_at, total_interactions, created_at`

// GetRelationship returns the snapshot for a user x character pair, or
// nil if none exists.
func (db *DB) GetRelationship(ctx context.Context, userID, characterID string) (*relationship.Snapshot, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships WHERE user_id = ? AND character_id = ?
	`, userID, characterID)
	return scanRelationship(row)
}

// GetRelationshipByID returns a snapshot by its id, or nil if not found.
func (db *DB) GetRelationshipByID(ctx context.Context, id string) (*relationship.Snapshot, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships WHERE id = ?
	`, id)
	return scanRelationship(row)
}

// EnsureRelationship creates a fresh snapshot for the pair if none
// exists, then returns the stored row. The insert is a conflict-ignoring
// upsert, so concurrent first-contact calls converge on a single row.
func (db *DB) EnsureRelationship(ctx context.Context, userID, characterID string, now int64) (*relationship.Snapshot, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO relationships (id, user_id, character_id,
			relationship_score, relationship_tier,
			warmth_score, trust_score, playfulness_score, stability_score,
			familiarity_stage, is_ruptured,
			first_interaction_at, last_interaction_at, total_interactions, created_at)
		VALUES (?, ?, ?, 0, ?, 0, 0, 0, 0, ?, 0, ?, ?, 0, ?)
		ON CONFLICT (user_id, character_id) DO NOTHING
	`, uuid.NewString(), userID, characterID,
		string(relationship.TierAcquaintance), string(relationship.StageEarly),
		now, now, now)
	if err != nil {
		return nil, fmt.Errorf("ensure relationship: %w", err)
	}

	snap, err := db.GetRelationship(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("ensure relationship: row missing after upsert")
	}
	return snap, nil
}

// SaveRelationship writes the full mutable state of a snapshot.
func (db *DB) SaveRelationship(ctx context.Context, snap *relationship.Snapshot) error {
	var lastRupture sql.NullInt64
	if snap.LastRuptureAt != nil {
		lastRupture = sql.NullInt64{Int64: *snap.LastRuptureAt, Valid: true}
	}

	res, err := db.ExecContext(ctx, `
		UPDATE relationships SET
			relationship_score = ?, relationship_tier = ?,
			warmth_score = ?, trust_score = ?, playfulness_score = ?, stability_score = ?,
			familiarity_stage = ?, is_ruptured = ?, last_rupture_at = ?,
			first_interaction_at = ?, last_interaction_at = ?, total_interactions = ?
		WHERE id = ?
	`, snap.Score, string(snap.Tier),
		snap.Warmth, snap.Trust, snap.Playfulness, snap.Stability,
		string(snap.Familiarity), boolToInt(snap.IsRuptured), lastRupture,
		snap.FirstInteractionAt, snap.LastInteractionAt, snap.TotalInteractions,
		snap.ID)
	if err != nil {
		return fmt.Errorf("save relationship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save relationship: no row with id %s", snap.ID)
	}
	return nil
}

// ListInactiveSince returns snapshots whose last interaction is at or
// before the cutoff (Unix ms). Used by the decay pass.
func (db *DB) ListInactiveSince(ctx context.Context, cutoff int64) ([]relationship.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships WHERE last_interaction_at <= ?
		ORDER BY last_interaction_at
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list inactive: %w", err)
	}
	defer rows.Close()

	var snaps []relationship.Snapshot
	for rows.Next() {
		snap, err := scanRelationshipRow(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// CountRelationships returns the number of stored relationships.
func (db *DB) CountRelationships(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM relationships").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count relationships: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelationship(row *sql.Row) (*relationship.Snapshot, error) {
	snap, err := scanRelationshipRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return snap, err
}

func scanRelationshipRow(row rowScanner) (*relationship.Snapshot, error) {
	var snap relationship.Snapshot
	var tier, stage string
	var ruptured int
	var lastRupture sql.NullInt64

	err := row.Scan(&snap.ID, &snap.UserID, &snap.CharacterID,
		&snap.Score, &tier,
		&snap.Warmth, &snap.Trust, &snap.Playfulness, &snap.Stability,
		&stage, &ruptured, &lastRupture,
		&snap.FirstInteractionAt, &snap.LastInteractionAt, &snap.TotalInteractions, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan relationship: %w", err)
	}

	snap.Tier = relationship.Tier(tier)
	snap.Familiarity = relationship.FamiliarityStage(stage)
	snap.IsRuptured = ruptured != 0
	if lastRupture.Valid {
		snap.LastRuptureAt = &lastRupture.Int64
	}
	return &snap, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
