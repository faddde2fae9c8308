package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lazypower/rapport/internal/relationship"
	"github.com/lazypower/rapport/internal/store"
)

// Engine failure taxonomy. Secondary writes (event log, insights) never
// surface errors; these cover the primary snapshot read/write only.
var (
	ErrNotFound    = errors.New("relationship not found")
	ErrPersistence = errors.New("persistence failure")
)

// Transition adjustments applied on top of event deltas.
const (
	ruptureStabilityPenalty = 5.0
	repairTrustBonus        = 1.5
	repairStabilityBonus    = 2.0
)

// defaultTimeout bounds every persistence call made by the engine.
const defaultTimeout = 5 * time.Second

// Engine converts discrete interaction events into persistent affective
// state. Updates to a single (userID, characterID) key are linearized
// through a per-key mutex; different keys proceed fully in parallel.
type Engine struct {
	db      *store.DB
	now     func() time.Time
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	cron *cron.Cron
}

// New creates an Engine on top of the given store.
func New(db *store.DB) *Engine {
	return &Engine{
		db:      db,
		now:     time.Now,
		timeout: defaultTimeout,
		locks:   make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the engine's clock. Tests use this to pin time.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// keyLock returns the mutex serializing updates for one relationship
// key. The map only ever grows; it is bounded by the number of distinct
// relationships touched by this process.
func (e *Engine) keyLock(userID, characterID string) *sync.Mutex {
	key := userID + "\x00" + characterID
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	return l
}

// persistCtx derives the timeout-bounded context used for store calls.
func (e *Engine) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

// GetOrCreate returns the snapshot for the pair, creating a fresh one at
// neutral state on first contact. Safe under concurrent first calls: the
// create path is an insert-if-absent upsert, never check-then-insert.
func (e *Engine) GetOrCreate(ctx context.Context, userID, characterID string) (*relationship.Snapshot, error) {
	pctx, cancel := e.persistCtx(ctx)
	defer cancel()

	snap, err := e.db.EnsureRelationship(pctx, userID, characterID, e.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return snap, nil
}

// Get returns the snapshot for the pair, or ErrNotFound.
func (e *Engine) Get(ctx context.Context, userID, characterID string) (*relationship.Snapshot, error) {
	pctx, cancel := e.persistCtx(ctx)
	defer cancel()

	snap, err := e.db.GetRelationship(pctx, userID, characterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if snap == nil {
		return nil, ErrNotFound
	}
	return snap, nil
}

// Update applies one event to the relationship and returns the new
// snapshot. The read-modify-write is serialized per key; the snapshot
// write either fully commits or the caller gets an error. Event log and
// insight writes are best-effort and never fail the transition.
func (e *Engine) Update(ctx context.Context, userID, characterID string, ev relationship.UpdateEvent) (*relationship.Snapshot, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	lock := e.keyLock(userID, characterID)
	lock.Lock()
	defer lock.Unlock()

	pctx, cancel := e.persistCtx(ctx)
	defer cancel()

	now := e.now()
	nowMs := now.UnixMilli()

	snap, err := e.db.EnsureRelationship(pctx, userID, characterID, nowMs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	deltas := ev.Overrides
	if deltas == nil {
		d := relationship.ComputeDeltas(ev.Sentiment, ev.Intensity, ev.UserMessage, ev.UserMood)
		deltas = &d
	}

	prevScore := snap.Score
	prevTier := snap.Tier

	snap.Score = relationship.Clamp(relationship.Round1(snap.Score+deltas.Score), relationship.ScoreMin, relationship.ScoreMax)
	snap.Warmth = clampDim(snap.Warmth + deltas.Warmth)
	snap.Trust = clampDim(snap.Trust + deltas.Trust)
	snap.Playfulness = clampDim(snap.Playfulness + deltas.Playfulness)
	snap.Stability = clampDim(snap.Stability + deltas.Stability)

	ruptured := false
	if relationship.IsRupture(ev, deltas.Score, prevScore, snap.Score) {
		ruptured = true
		snap.IsRuptured = true
		snap.LastRuptureAt = &nowMs
		snap.Stability = clampDim(snap.Stability - ruptureStabilityPenalty)
	} else if snap.IsRuptured && (ev.Type == relationship.EventRepair || ev.Sentiment == relationship.SentimentPositive) {
		// Repair clears the flag but the historical marker stays.
		snap.IsRuptured = false
		snap.Trust = clampDim(snap.Trust + repairTrustBonus)
		snap.Stability = clampDim(snap.Stability + repairStabilityBonus)
	}

	// Decay marks absence, not interaction; it must not reset the idle
	// clock or the interaction counter.
	if ev.Type != relationship.EventDecay {
		snap.TotalInteractions++
		snap.LastInteractionAt = nowMs
	}

	snap.Tier = relationship.ClassifyTier(snap.Score)
	snap.Familiarity = relationship.ClassifyFamiliarity(snap.TotalInteractions, snap.FirstInteractionAt, now)

	if err := e.db.SaveRelationship(pctx, snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Secondary writes below are best-effort: logged, swallowed, and
	// never allowed to undo or fail the committed snapshot.
	entry := &store.EventLogEntry{
		RelationshipID: snap.ID,
		Source:         ev.Source,
		EventType:      ev.Type,
		Sentiment:      ev.Sentiment,
		PrevScore:      prevScore,
		NewScore:       snap.Score,
		PrevTier:       prevTier,
		NewTier:        snap.Tier,
		Deltas:         *deltas,
		Ruptured:       ruptured,
		CreatedAt:      nowMs,
	}
	if err := e.db.AppendEvent(pctx, entry); err != nil {
		log.Printf("update: event log append failed for %s: %v", snap.ID, err)
	}

	if ev.UserMood != "" && ev.ActionType != "" {
		key := InsightKey(ev.UserMood, ev.ActionType)
		if err := e.RecordObservation(ctx, snap.ID, key, nowMs, defaultConfidenceBump); err != nil {
			log.Printf("update: insight upsert failed for %s (%s): %v", snap.ID, key, err)
		}
	}

	return snap, nil
}

func clampDim(v float64) float64 {
	return relationship.Clamp(relationship.Round1(v), relationship.DimensionMin, relationship.DimensionMax)
}
