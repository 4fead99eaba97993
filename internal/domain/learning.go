package domain

import "time"

type Action string

const (
	ActionBuy   Action = "buy"
	ActionSell  Action = "sell"
	ActionHold  Action = "hold"
	ActionAvoid Action = "avoid"
)

// ValidActions returns all actions a prediction can carry.
func ValidActions() []Action {
	return []Action{ActionBuy, ActionSell, ActionHold, ActionAvoid}
}

func (a Action) IsValid() bool {
	for _, v := range ValidActions() {
		if a == v {
			return true
		}
	}
	return false
}

const DefaultTimeHorizon = "1y"

// Prediction is a decision produced upstream (or by the prediction engine) for an actor.
type Prediction struct {
	ActorID string        `json:"actor_id"`
	Action  Action        `json:"action"`
	Context MarketContext `json:"context"`
}

// Outcome is the realized result of a prediction.
type Outcome struct {
	Performance float64 `json:"performance"`
	TimeHorizon string  `json:"time_horizon,omitempty"`
}

// Experience is a scored (prediction, outcome) pair.
type Experience struct {
	ID            int64         `json:"id,omitempty"`
	ActorID       string        `json:"actor_id"`
	Prediction    Action        `json:"prediction"`
	ActualOutcome string        `json:"actual_outcome"`
	Accuracy      float64       `json:"accuracy"`
	Context       MarketContext `json:"context"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Decision is the forward-looking answer for "what would this actor do now".
type Decision struct {
	ActorID           string        `json:"actor_id"`
	Action            Action        `json:"predicted_action"`
	Confidence        float64       `json:"confidence"`
	Reasoning         string        `json:"reasoning"`
	KeyFactors        []string      `json:"key_factors"`
	SimilarSituations int           `json:"similar_situations"`
	Context           MarketContext `json:"context"`
}

// PatternSummary is the aggregate view of an actor's known stances.
type PatternSummary struct {
	BullishOn       []string `json:"bullish_on"`
	BearishOn       []string `json:"bearish_on"`
	BullishCount    int      `json:"bullish_count"`
	TotalMentions   int      `json:"total_mentions"`
	ConfidenceLevel float64  `json:"confidence_level"`
}
