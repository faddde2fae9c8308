package relationship

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Base delta constants. The intensity multiplier (intensity/10) scales
// each sentiment's base contribution; message pattern detectors add
// multiplier-scaled adjustments on top.
const (
	positiveScoreBase  = 2.0
	positiveScoreScale = 3.0
	positiveWarmBase   = 1.0
	positiveWarmScale  = 2.0
	positiveTrustScale = 0.5
	positiveStabScale  = 0.5

	negativeScoreBase  = 5.0
	negativeScoreScale = 10.0
	negativeWarmBase   = 2.0
	negativeWarmScale  = 3.0
	negativeTrustBase  = 1.0
	negativeTrustScale = 2.0
	negativePlayful    = 1.0
	negativeStabBase   = 1.0
	negativeStabScale  = 1.0

	neutralEngagedScore = 0.3
	neutralEngagedWarm  = 0.2
	neutralEngagedStab  = 0.1
)

// Pattern adjustment constants, each scaled by the intensity multiplier.
const (
	complimentWarmth = 1.0
	complimentTrust  = 0.5
	apologyTrust     = 1.5
	apologyStability = 1.0
	banterPlayful    = 1.0
	banterWarmth     = 0.5
	dismissiveTrust  = 1.0
	dismissiveStab   = 1.0
)

// ComputeDeltas maps one classified interaction to per-dimension score
// changes. Pure and deterministic: no I/O, no clock, no randomness.
// All outputs are rounded to one decimal, half away from zero.
func ComputeDeltas(sentiment Sentiment, intensity float64, message, mood string) Deltas {
	m := intensity / 10

	var d Deltas
	lower := strings.ToLower(message)

	switch sentiment {
	case SentimentPositive:
		d.Score = positiveScoreBase + positiveScoreScale*m
		d.Warmth = positiveWarmBase + positiveWarmScale*m
		d.Trust = positiveTrustScale * m
		d.Stability = positiveStabScale * m
		if isBanter(lower) {
			d.Playfulness = 1.0 * m
		}
	case SentimentNegative:
		d.Score = -(negativeScoreBase + negativeScoreScale*m)
		d.Warmth = -(negativeWarmBase + negativeWarmScale*m)
		d.Trust = -(negativeTrustBase + negativeTrustScale*m)
		d.Playfulness = -negativePlayful
		d.Stability = -(negativeStabBase + negativeStabScale*m)
	case SentimentNeutral:
		if isEngaged(lower) {
			d.Score = neutralEngagedScore
			d.Warmth = neutralEngagedWarm
			d.Stability = neutralEngagedStab
		}
	}

	// Content detectors contribute additive adjustments aimed at the
	// dimension each pattern most plausibly affects.
	if message != "" {
		if isCompliment(lower) {
			d.Warmth += complimentWarmth * m
			d.Trust += complimentTrust * m
		}
		if isApology(lower) {
			d.Trust += apologyTrust * m
			d.Stability += apologyStability * m
		}
		if isBanter(lower) {
			d.Playfulness += banterPlayful * m
			d.Warmth += banterWarmth * m
		}
		if isDismissive(lower) {
			d.Trust -= dismissiveTrust * m
			d.Stability -= dismissiveStab * m
		}
	}

	d.Score = Round1(d.Score)
	d.Warmth = Round1(d.Warmth)
	d.Trust = Round1(d.Trust)
	d.Playfulness = Round1(d.Playfulness)
	d.Stability = Round1(d.Stability)
	return d
}

var complimentMarkers = []string{
	"you're amazing", "you are amazing", "love talking to you", "you're the best",
	"so smart", "so sweet", "you're wonderful", "appreciate you", "you're great",
	"thank you so much", "you always know",
}

var apologyMarkers = []string{
	"i'm sorry", "im sorry", "i am sorry", "my apologies", "i apologize",
	"forgive me", "my bad", "didn't mean to", "didnt mean to",
}

var banterMarkers = []string{
	"haha", "lol", "lmao", "just kidding", "just teasing", "😂", "🤣",
	"you're such a dork", "silly",
}

var dismissiveMarkers = []string{
	"whatever", "don't care", "dont care", "forget it", "never mind",
	"nevermind", "this is pointless", "you wouldn't understand",
	"you wouldnt understand",
}

func isCompliment(lower string) bool { return containsAny(lower, complimentMarkers) }
func isApology(lower string) bool    { return containsAny(lower, apologyMarkers) }
func isBanter(lower string) bool     { return containsAny(lower, banterMarkers) }
func isDismissive(lower string) bool { return containsAny(lower, dismissiveMarkers) }

// isEngaged reports whether a neutral message still signals engagement:
// a question, or a message long enough to show effort.
func isEngaged(lower string) bool {
	if lower == "" {
		return false
	}
	return strings.Contains(lower, "?") || utf8.RuneCountInString(lower) >= 100
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
