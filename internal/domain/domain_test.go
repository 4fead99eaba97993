package domain

import "testing"

func TestActionIsValid(t *testing.T) {
	for _, a := range ValidActions() {
		if !a.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", a)
		}
	}
	for _, a := range []Action{"", "short", "BUY"} {
		if a.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", a)
		}
	}
}

func TestSentimentPredicate(t *testing.T) {
	tests := []struct {
		sentiment Sentiment
		want      string
	}{
		{SentimentBullish, "is_bullish_on"},
		{SentimentBearish, "is_bearish_on"},
		{SentimentNeutral, "is_neutral_on"},
	}
	for _, tt := range tests {
		if got := SentimentPredicate(tt.sentiment); got != tt.want {
			t.Errorf("SentimentPredicate(%q) = %q, want %q", tt.sentiment, got, tt.want)
		}
	}
}

func TestStancePredicates(t *testing.T) {
	tests := []struct {
		predicate string
		bullish   bool
		bearish   bool
	}{
		{"is_bullish_on", true, false},
		{"was_bullish_on", true, false},
		{"is_bearish_on", false, true},
		{"is_neutral_on", false, false},
		{"successful_prediction_on", false, false},
		{"has", false, false},
	}
	for _, tt := range tests {
		if got := IsBullishPredicate(tt.predicate); got != tt.bullish {
			t.Errorf("IsBullishPredicate(%q) = %v, want %v", tt.predicate, got, tt.bullish)
		}
		if got := IsBearishPredicate(tt.predicate); got != tt.bearish {
			t.Errorf("IsBearishPredicate(%q) = %v, want %v", tt.predicate, got, tt.bearish)
		}
	}
}

func TestMarketContextClone(t *testing.T) {
	vol := 0.25
	orig := MarketContext{
		MarketPhase:        "bear_market",
		Volatility:         &vol,
		KeyThemes:          []string{"ai_hype"},
		MentionedCompanies: []string{"Apple"},
	}

	c := orig.Clone()
	c.KeyThemes[0] = "changed"
	c.MentionedCompanies[0] = "changed"
	*c.Volatility = 0.9

	if orig.KeyThemes[0] != "ai_hype" || orig.MentionedCompanies[0] != "Apple" {
		t.Error("clone aliases the original slices")
	}
	if *orig.Volatility != 0.25 {
		t.Error("clone aliases the original volatility")
	}
}

func TestMarketContextThemeSet(t *testing.T) {
	set := MarketContext{KeyThemes: []string{"a", "b", "a"}}.ThemeSet()
	if len(set) != 2 {
		t.Errorf("len(ThemeSet()) = %d, want 2", len(set))
	}
	if len(MarketContext{}.ThemeSet()) != 0 {
		t.Error("empty context should yield an empty set")
	}
}
