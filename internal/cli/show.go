package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/rapport/internal/engine"
)

var showCmd = &cobra.Command{
	Use:   "show <user-id> <character-id>",
	Short: "Print the relationship snapshot and learned patterns for a pair",
	Args:  cobra.ExactArgs(2),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openConfiguredDB()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db)
	ctx := context.Background()

	snap, err := eng.Get(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("%s ↔ %s\n", snap.UserID, snap.CharacterID)
	fmt.Printf("  tier:         %s (score %.1f)\n", snap.Tier, snap.Score)
	fmt.Printf("  familiarity:  %s (%d interactions since %s)\n",
		snap.Familiarity, snap.TotalInteractions,
		time.UnixMilli(snap.FirstInteractionAt).Format("2006-01-02"))
	fmt.Printf("  dimensions:   warmth %.1f, trust %.1f, playfulness %.1f, stability %.1f\n",
		snap.Warmth, snap.Trust, snap.Playfulness, snap.Stability)
	if snap.IsRuptured {
		fmt.Printf("  ruptured:     yes, since %s\n", time.UnixMilli(*snap.LastRuptureAt).Format(time.RFC3339))
	} else if snap.LastRuptureAt != nil {
		fmt.Printf("  ruptured:     repaired (last rupture %s)\n", time.UnixMilli(*snap.LastRuptureAt).Format(time.RFC3339))
	}

	insights, err := eng.Insights(ctx, snap.ID)
	if err != nil {
		return err
	}
	if len(insights) > 0 {
		fmt.Println("  patterns:")
		for _, in := range insights {
			fmt.Printf("    %-30s confidence %.1f, seen %dx\n", in.Key, in.Confidence, in.TimesObserved)
		}
	}
	return nil
}
