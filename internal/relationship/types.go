package relationship

// Sentiment is the already-classified emotional polarity of an interaction.
// Classification happens upstream; the engine only consumes the label.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// EventType categorizes an update event.
type EventType string

const (
	EventPositive  EventType = "positive"
	EventNegative  EventType = "negative"
	EventNeutral   EventType = "neutral"
	EventMilestone EventType = "milestone"
	EventDecay     EventType = "decay"
	EventRepair    EventType = "repair"
)

// Tier is the categorical relationship label, a pure function of the
// composite score. Six contiguous bands, recomputed on every write.
type Tier string

const (
	TierAdversarial     Tier = "adversarial"
	TierNeutralNegative Tier = "neutral_negative"
	TierAcquaintance    Tier = "acquaintance"
	TierFriend          Tier = "friend"
	TierCloseFriend     Tier = "close_friend"
	TierDeeplyLoving    Tier = "deeply_loving"
)

// FamiliarityStage tracks how established the relationship is, derived
// from interaction count and elapsed time — independent of score.
type FamiliarityStage string

const (
	StageEarly       FamiliarityStage = "early"
	StageDeveloping  FamiliarityStage = "developing"
	StageEstablished FamiliarityStage = "established"
)

// Score bounds.
const (
	ScoreMin     = -100.0
	ScoreMax     = 100.0
	DimensionMin = -50.0
	DimensionMax = 50.0
)

// Snapshot is the persistent affective state between one user and one
// character. Timestamps are Unix milliseconds.
type Snapshot struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	CharacterID string `json:"character_id"`

	Score       float64 `json:"relationship_score"` // [-100, 100]
	Tier        Tier    `json:"relationship_tier"`
	Warmth      float64 `json:"warmth_score"`      // [-50, 50]
	Trust       float64 `json:"trust_score"`       // [-50, 50]
	Playfulness float64 `json:"playfulness_score"` // [-50, 50]
	Stability   float64 `json:"stability_score"`   // [-50, 50]

	Familiarity FamiliarityStage `json:"familiarity_stage"`

	// IsRuptured toggles back to false on repair; LastRuptureAt is a
	// permanent historical marker and is never cleared.
	IsRuptured    bool   `json:"is_ruptured"`
	LastRuptureAt *int64 `json:"last_rupture_at,omitempty"`

	FirstInteractionAt int64 `json:"first_interaction_at"`
	LastInteractionAt  int64 `json:"last_interaction_at"`
	TotalInteractions  int   `json:"total_interactions"`
	CreatedAt          int64 `json:"created_at"`
}

// Deltas holds the per-dimension score changes produced by one event.
type Deltas struct {
	Score       float64 `json:"score_change"`
	Warmth      float64 `json:"warmth_change"`
	Trust       float64 `json:"trust_change"`
	Playfulness float64 `json:"playfulness_change"`
	Stability   float64 `json:"stability_change"`
}

// UpdateEvent is one discrete interaction fed to the engine. When
// Overrides is set the event carries explicit deltas (decay events,
// milestone bonuses) and the delta calculator is bypassed; otherwise
// deltas are derived from sentiment, intensity, and message content.
type UpdateEvent struct {
	Source    string    `json:"source"`
	Type      EventType `json:"event_type"`
	Sentiment Sentiment `json:"sentiment"`
	Intensity float64   `json:"intensity"` // [0, 10]

	UserMessage string `json:"user_message,omitempty"`
	UserMood    string `json:"user_mood,omitempty"`
	ActionType  string `json:"action_type,omitempty"`

	Overrides *Deltas `json:"overrides,omitempty"`
}

var validEventTypes = map[EventType]bool{
	EventPositive:  true,
	EventNegative:  true,
	EventNeutral:   true,
	EventMilestone: true,
	EventDecay:     true,
	EventRepair:    true,
}

var validSentiments = map[Sentiment]bool{
	SentimentPositive: true,
	SentimentNeutral:  true,
	SentimentNegative: true,
}

// ValidationError reports a malformed update event.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid event: " + e.Field + ": " + e.Reason
}

// Validate checks event fields against their allowed ranges.
func (ev *UpdateEvent) Validate() error {
	if !validEventTypes[ev.Type] {
		return &ValidationError{Field: "event_type", Reason: "unknown type " + string(ev.Type)}
	}
	if !validSentiments[ev.Sentiment] {
		return &ValidationError{Field: "sentiment", Reason: "unknown sentiment " + string(ev.Sentiment)}
	}
	if ev.Intensity < 0 || ev.Intensity > 10 {
		return &ValidationError{Field: "intensity", Reason: "must be within [0, 10]"}
	}
	return nil
}

// DecayEvent builds the synthetic event applied to inactive relationships.
// Decay reuses the full update pipeline; only the score moves.
func DecayEvent(scoreChange float64) UpdateEvent {
	return UpdateEvent{
		Source:    "decay-scheduler",
		Type:      EventDecay,
		Sentiment: SentimentNeutral,
		Intensity: 0,
		Overrides: &Deltas{Score: scoreChange},
	}
}
