package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PatternInsight is a learned, confidence-weighted correlation between a
// user mood and an observed action, keyed per relationship.
type PatternInsight struct {
	ID             string  `json:"id"`
	RelationshipID string  `json:"relationship_id"`
	InsightType    string  `json:"insight_type"` // pattern, milestone, trigger
	Key            string  `json:"key"`
	Summary        string  `json:"summary"`
	Confidence     float64 `json:"confidence"` // [0, 1]
	TimesObserved  int     `json:"times_observed"`
	LastObservedAt int64   `json:"last_observed_at"`
	CreatedAt      int64   `json:"created_at"`
}

// UpsertInsight records one observation of a (relationship, key) pair in
// a single atomic statement. First observation inserts with the initial
// confidence; later ones bump confidence (clamped to [0, 1]), increment
// the counter, and refresh last_observed_at. The conflict clause keeps
// concurrent observers from ever producing duplicate rows — no
// delete-then-insert, no read-modify-write.
func (db *DB) UpsertInsight(ctx context.Context, relationshipID, key, summary string, initial, bump float64, observedAt int64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO pattern_insights (id, relationship_id, insight_type, key, summary,
			confidence, times_observed, last_observed_at, created_at)
		VALUES (?, ?, 'pattern', ?, ?, MIN(MAX(?, 0), 1), 1, ?, ?)
		ON CONFLICT (relationship_id, key) DO UPDATE SET
			confidence = MIN(MAX(confidence + ?, 0), 1),
			times_observed = times_observed + 1,
			last_observed_at = excluded.last_observed_at
	`, uuid.NewString(), relationshipID, key, summary,
		initial, observedAt, observedAt, bump)
	if err != nil {
		return fmt.Errorf("upsert insight: %w", err)
	}
	return nil
}

// GetInsight returns the insight for a (relationship, key) pair, or nil
// if none has been observed.
func (db *DB) GetInsight(ctx context.Context, relationshipID, key string) (*PatternInsight, error) {
	var in PatternInsight
	err := db.QueryRowContext(ctx, `
		SELECT id, relationship_id, insight_type, key, summary,
			confidence, times_observed, last_observed_at, created_at
		FROM pattern_insights WHERE relationship_id = ? AND key = ?
	`, relationshipID, key).Scan(&in.ID, &in.RelationshipID, &in.InsightType, &in.Key,
		&in.Summary, &in.Confidence, &in.TimesObserved, &in.LastObservedAt, &in.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get insight: %w", err)
	}
	return &in, nil
}

// ListInsights returns all insights for a relationship, strongest first.
func (db *DB) ListInsights(ctx context.Context, relationshipID string) ([]PatternInsight, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, relationship_id, insight_type, key, summary,
			confidence, times_observed, last_observed_at, created_at
		FROM pattern_insights WHERE relationship_id = ?
		ORDER BY confidence DESC, times_observed DESC
	`, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var insights []PatternInsight
	for rows.Next() {
		var in PatternInsight
		if err := rows.Scan(&in.ID, &in.RelationshipID, &in.InsightType, &in.Key,
			&in.Summary, &in.Confidence, &in.TimesObserved, &in.LastObservedAt, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		insights = append(insights, in)
	}
	return insights, rows.Err()
}
