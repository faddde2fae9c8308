package relationship

import "testing"

func TestIsRuptureScoreDrop(t *testing.T) {
	ev := UpdateEvent{Type: EventNegative, Sentiment: SentimentNegative, Intensity: 5}

	if !IsRupture(ev, -15, 20, 5) {
		t.Error("15-point drop on negative sentiment should rupture")
	}
	if IsRupture(ev, -14, 20, 6) {
		t.Error("14-point drop should not rupture")
	}
}

func TestIsRuptureIntenseEvent(t *testing.T) {
	ev := UpdateEvent{Type: EventNegative, Sentiment: SentimentNegative, Intensity: 7}

	// Event's own magnitude triggers even when the running total barely
	// moves (e.g. score already clamped at the floor).
	if !IsRupture(ev, -10, -100, -100) {
		t.Error("intensity 7 with scoreChange -10 should rupture")
	}
	if IsRupture(ev, -9.9, -100, -100) {
		t.Error("scoreChange above -10 should not rupture on intensity alone")
	}

	ev.Intensity = 6.9
	if IsRupture(ev, -10, -100, -100) {
		t.Error("intensity below 7 should not rupture on magnitude alone")
	}
}

func TestIsRuptureHostileMessage(t *testing.T) {
	ev := UpdateEvent{
		Type:        EventNegative,
		Sentiment:   SentimentNegative,
		Intensity:   3,
		UserMessage: "honestly? I hate you, leave me alone",
	}
	if !IsRupture(ev, -2, 10, 8) {
		t.Error("hostile phrase should rupture regardless of numeric movement")
	}
}

// Positive and neutral sentiment never rupture. This exclusion is
// load-bearing: a huge positive swing or a hostile-sounding joke must
// not flip the flag.
func TestIsRuptureNeverForNonNegative(t *testing.T) {
	tests := []struct {
		name string
		ev   UpdateEvent
	}{
		{
			name: "positive with hostile phrasing",
			ev: UpdateEvent{
				Type: EventPositive, Sentiment: SentimentPositive,
				Intensity: 10, UserMessage: "I hate you... just kidding, you're the best",
			},
		},
		{
			name: "neutral high intensity",
			ev: UpdateEvent{
				Type: EventNeutral, Sentiment: SentimentNeutral,
				Intensity: 10, UserMessage: "shut up no way!!",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsRupture(tt.ev, -50, 50, 0) {
				t.Errorf("%s sentiment must never rupture", tt.ev.Sentiment)
			}
		})
	}
}
