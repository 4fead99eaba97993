package domain

import (
	"strings"
	"time"
)

// Predicates written by the learning pipeline.
const (
	PredicateHas                      = "has"
	PredicateSuccessfulPredictionOn   = "successful_prediction_on"
	PredicateUnsuccessfulPredictionOn = "unsuccessful_prediction_on"
)

// SentimentPredicate returns the predicate an actor's sentiment about a company is stored under.
func SentimentPredicate(s Sentiment) string {
	return "is_" + string(s) + "_on"
}

// IsBullishPredicate reports whether a predicate records a bullish stance.
func IsBullishPredicate(p string) bool {
	return strings.Contains(p, "bullish_on")
}

// IsBearishPredicate reports whether a predicate records a bearish stance.
func IsBearishPredicate(p string) bool {
	return strings.Contains(p, "bearish_on")
}

type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Triple is a single (subject, predicate, object) observation with its confidence.
type Triple struct {
	ID         int64         `json:"id,omitempty"`
	Subject    string        `json:"subject"`
	Predicate  string        `json:"predicate"`
	Object     string        `json:"object"`
	Confidence float64       `json:"confidence"`
	Source     string        `json:"source"`
	Context    MarketContext `json:"context"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Edge is the merged belief between a subject and an object.
// It is keyed by (Subject, Object) only; Predicate holds the latest observation.
type Edge struct {
	Subject       string        `json:"subject"`
	Object        string        `json:"object"`
	Predicate     string        `json:"predicate"`
	Confidence    float64       `json:"confidence"`
	Weight        float64       `json:"weight"`
	Source        string        `json:"source"`
	RecentSources []string      `json:"recent_sources"`
	Context       MarketContext `json:"context"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Relationship is an outgoing edge as seen from its subject.
type Relationship struct {
	Object     string    `json:"object"`
	Predicate  string    `json:"predicate"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

// SimilarSituation is an edge whose context snapshot resembles a query context.
type SimilarSituation struct {
	Subject    string        `json:"subject"`
	Object     string        `json:"object"`
	Similarity float64       `json:"similarity"`
	Context    MarketContext `json:"context"`
	Confidence float64       `json:"confidence"`
	Timestamp  time.Time     `json:"timestamp"`
}

// DecayResult summarizes one decay tick.
type DecayResult struct {
	Processed int `json:"processed"`
	Decayed   int `json:"decayed"`
	Floored   int `json:"floored"`
}

type GraphStats struct {
	Nodes int                    `json:"nodes"`
	Edges int                    `json:"edges"`
	Tiers map[ConfidenceTier]int `json:"tiers"`
}
