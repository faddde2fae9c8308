package relationship

import "time"

// Tier band boundaries, ascending. Bands are contiguous and
// non-overlapping: every real score maps to exactly one tier.
const (
	tierAdversarialMax  = -60.0 // score <= -60
	tierNeutralNegMax   = -20.0 // (-60, -20]
	tierFriendMin       = 20.0  // [20, 60)
	tierCloseFriendMin  = 60.0  // [60, 80)
	tierDeeplyLovingMin = 80.0  // score >= 80
)

// ClassifyTier maps a composite score to its tier band.
func ClassifyTier(score float64) Tier {
	switch {
	case score <= tierAdversarialMax:
		return TierAdversarial
	case score <= tierNeutralNegMax:
		return TierNeutralNegative
	case score < tierFriendMin:
		return TierAcquaintance
	case score < tierCloseFriendMin:
		return TierFriend
	case score < tierDeeplyLovingMin:
		return TierCloseFriend
	default:
		return TierDeeplyLoving
	}
}

// Familiarity thresholds.
const (
	earlyMaxInteractions      = 5
	earlyMinDays              = 2
	developingMaxInteractions = 25
	developingMinDays         = 14
)

// ClassifyFamiliarity derives the familiarity stage from interaction
// count and elapsed time. firstInteractionAt is Unix milliseconds; zero
// means the relationship has never been interacted with and is early.
func ClassifyFamiliarity(totalInteractions int, firstInteractionAt int64, now time.Time) FamiliarityStage {
	if firstInteractionAt == 0 {
		return StageEarly
	}
	days := now.Sub(time.UnixMilli(firstInteractionAt)).Hours() / 24

	if totalInteractions < earlyMaxInteractions || days < earlyMinDays {
		return StageEarly
	}
	if totalInteractions < developingMaxInteractions || days < developingMinDays {
		return StageDeveloping
	}
	return StageEstablished
}
