package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lazypower/rapport/internal/relationship"
)

// EventLogEntry is the immutable audit record of one applied update.
// Rows are append-only; nothing in the engine deletes or edits them.
type EventLogEntry struct {
	ID             string                 `json:"id"`
	RelationshipID string                 `json:"relationship_id"`
	Source         string                 `json:"source"`
	EventType      relationship.EventType `json:"event_type"`
	Sentiment      relationship.Sentiment `json:"sentiment"`

	PrevScore float64           `json:"prev_score"`
	NewScore  float64           `json:"new_score"`
	PrevTier  relationship.Tier `json:"prev_tier"`
	NewTier   relationship.Tier `json:"new_tier"`

	Deltas relationship.Deltas `json:"deltas"`

	Ruptured  bool  `json:"ruptured"`
	CreatedAt int64 `json:"created_at"`
}

// AppendEvent stores an audit record. The caller treats failures as
// best-effort; this method just reports them.
func (db *DB) AppendEvent(ctx context.Context, e *EventLogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO relationship_events (id, relationship_id, source, event_type, sentiment,
			prev_score, new_score, prev_tier, new_tier,
			score_change, warmth_change, trust_change, playfulness_change, stability_change,
			ruptured, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.RelationshipID, e.Source, string(e.EventType), string(e.Sentiment),
		e.PrevScore, e.NewScore, string(e.PrevTier), string(e.NewTier),
		e.Deltas.Score, e.Deltas.Warmth, e.Deltas.Trust, e.Deltas.Playfulness, e.Deltas.Stability,
		boolToInt(e.Ruptured), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEvents returns the most recent log entries for a relationship,
// newest first.
func (db *DB) ListEvents(ctx context.Context, relationshipID string, limit int) ([]EventLogEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, relationship_id, source, event_type, sentiment,
			prev_score, new_score, prev_tier, new_tier,
			score_change, warmth_change, trust_change, playfulness_change, stability_change,
			ruptured, created_at
		FROM relationship_events WHERE relationship_id = ?
		ORDER BY created_at DESC, id LIMIT ?
	`, relationshipID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var entries []EventLogEntry
	for rows.Next() {
		var e EventLogEntry
		var eventType, sentiment, prevTier, newTier string
		var ruptured int
		if err := rows.Scan(&e.ID, &e.RelationshipID, &e.Source, &eventType, &sentiment,
			&e.PrevScore, &e.NewScore, &prevTier, &newTier,
			&e.Deltas.Score, &e.Deltas.Warmth, &e.Deltas.Trust, &e.Deltas.Playfulness, &e.Deltas.Stability,
			&ruptured, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.EventType = relationship.EventType(eventType)
		e.Sentiment = relationship.Sentiment(sentiment)
		e.PrevTier = relationship.Tier(prevTier)
		e.NewTier = relationship.Tier(newTier)
		e.Ruptured = ruptured != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountEvents returns the number of log entries for a relationship.
func (db *DB) CountEvents(ctx context.Context, relationshipID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM relationship_events WHERE relationship_id = ?",
		relationshipID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}
