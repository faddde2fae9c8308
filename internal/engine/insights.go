package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/lazypower/rapport/internal/store"
)

// Confidence parameters for pattern insights.
const (
	initialConfidence     = 0.2
	defaultConfidenceBump = 0.1
)

// InsightKey builds the stable lookup key for a (mood, action) pair:
// lowercased, whitespace collapsed, underscore joined. Upstream data
// arrives with varied casing and spacing; normalization here guarantees
// "Anxious" + "seeks reassurance" and "anxious" + "Seeks  Reassurance"
// land on the same insight.
func InsightKey(mood, action string) string {
	tokens := append(strings.Fields(strings.ToLower(mood)), strings.Fields(strings.ToLower(action))...)
	return strings.Join(tokens, "_")
}

// RecordObservation registers one observation of a behavioral
// correlation for a relationship. First observation creates the insight;
// subsequent ones bump confidence (clamped to [0, 1]), increment the
// observation count, and refresh the timestamp. Insights are never
// deleted here. Only called with a committed relationship id.
func (e *Engine) RecordObservation(ctx context.Context, relationshipID, key string, observedAt int64, confidenceDelta float64) error {
	if key == "" {
		return fmt.Errorf("record observation: empty key")
	}
	if confidenceDelta == 0 {
		confidenceDelta = defaultConfidenceBump
	}

	pctx, cancel := e.persistCtx(ctx)
	defer cancel()

	summary := "observed pattern: " + strings.ReplaceAll(key, "_", " ")
	if err := e.db.UpsertInsight(pctx, relationshipID, key, summary, initialConfidence, confidenceDelta, observedAt); err != nil {
		return fmt.Errorf("record observation: %w", err)
	}
	return nil
}

// Insights returns all learned insights for a relationship.
func (e *Engine) Insights(ctx context.Context, relationshipID string) ([]store.PatternInsight, error) {
	pctx, cancel := e.persistCtx(ctx)
	defer cancel()

	insights, err := e.db.ListInsights(pctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return insights, nil
}

// Events returns the most recent audit log entries for a relationship.
func (e *Engine) Events(ctx context.Context, relationshipID string, limit int) ([]store.EventLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	pctx, cancel := e.persistCtx(ctx)
	defer cancel()

	entries, err := e.db.ListEvents(pctx, relationshipID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return entries, nil
}
