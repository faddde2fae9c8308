package relationship

import "strings"

// Rupture thresholds.
const (
	ruptureDropThreshold      = 15.0  // absolute score drop across the update
	ruptureIntensityThreshold = 7.0   // event intensity floor
	ruptureEventScoreFloor    = -10.0 // event's own negative magnitude
)

// hostileMarkers is the contempt/insult lexicon. A match on a negative
// event triggers a rupture regardless of numeric movement.
var hostileMarkers = []string{
	"i hate you", "hate you", "shut up", "you're useless", "you are useless",
	"you're worthless", "you are worthless", "you're pathetic", "stupid bot",
	"you disgust me", "leave me alone forever", "never talk to me again",
	"you're nothing", "waste of time", "you idiot",
}

// IsRupture reports whether applying ev moved the relationship into a
// ruptured state. Positive and neutral sentiment never rupture, no
// matter how large the swing or how hostile the phrasing reads.
func IsRupture(ev UpdateEvent, scoreChange, prevScore, newScore float64) bool {
	if ev.Sentiment != SentimentNegative {
		return false
	}
	if prevScore-newScore >= ruptureDropThreshold {
		return true
	}
	if ev.Intensity >= ruptureIntensityThreshold && scoreChange <= ruptureEventScoreFloor {
		return true
	}
	if ev.UserMessage != "" {
		lower := strings.ToLower(ev.UserMessage)
		for _, m := range hostileMarkers {
			if strings.Contains(lower, m) {
				return true
			}
		}
	}
	return false
}
