package engine

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/robfig/cron/v3"

	"github.com/lazypower/rapport/internal/relationship"
)

// Decay parameters: relationships idle for more than the grace period
// lose score at decayRate per day past it, capped at maxDecayPerRun.
const (
	decayGraceDays = 7
	decayRate      = 0.1
	maxDecayPerRun = 10.0
)

// DecayInactive applies score decay to every relationship whose last
// interaction is older than the grace period. Decay is not a special
// code path: each hit synthesizes a decay event and runs it through the
// normal Update pipeline, reusing clamping, tier recomputation, and the
// event log. Returns the number of relationships decayed.
func (e *Engine) DecayInactive(ctx context.Context) (int, error) {
	now := e.now()
	cutoff := now.AddDate(0, 0, -decayGraceDays).UnixMilli()

	pctx, cancel := e.persistCtx(ctx)
	stale, err := e.db.ListInactiveSince(pctx, cutoff)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	decayed := 0
	for i := range stale {
		snap := &stale[i]
		daysIdle := float64(now.UnixMilli()-snap.LastInteractionAt) / float64(24*60*60*1000)
		drop := relationship.Round1(math.Min((daysIdle-decayGraceDays)*decayRate, maxDecayPerRun))
		if drop <= 0 {
			continue
		}

		ev := relationship.DecayEvent(-drop)
		if _, err := e.Update(ctx, snap.UserID, snap.CharacterID, ev); err != nil {
			// One stuck relationship must not starve the rest of the pass.
			log.Printf("decay: update %s/%s: %v", snap.UserID, snap.CharacterID, err)
			continue
		}
		decayed++
	}

	return decayed, nil
}

// StartDecayScheduler runs a decay pass immediately and then on the
// given cron schedule (e.g. "@daily"). Call StopDecayScheduler on
// shutdown.
func (e *Engine) StartDecayScheduler(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n, err := e.DecayInactive(context.Background()); err != nil {
			log.Printf("decay: %v", err)
		} else if n > 0 {
			log.Printf("decay: decayed %d relationships", n)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule decay: %w", err)
	}

	// Run once at startup
	go func() {
		if n, err := e.DecayInactive(context.Background()); err != nil {
			log.Printf("decay: %v", err)
		} else if n > 0 {
			log.Printf("decay: decayed %d relationships", n)
		}
	}()

	c.Start()
	e.cron = c
	return nil
}

// StopDecayScheduler halts the periodic decay job.
func (e *Engine) StopDecayScheduler() {
	if e.cron != nil {
		e.cron.Stop()
	}
}
