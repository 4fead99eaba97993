package domain

const MarketPhaseBear = "bear_market"

// MarketContext is the context snapshot attached to observations and predictions.
// Every field is optional; missing fields read as empty.
type MarketContext struct {
	MarketPhase        string   `json:"market_phase,omitempty"`
	Volatility         *float64 `json:"volatility,omitempty"`
	KeyThemes          []string `json:"key_themes,omitempty"`
	MentionedCompanies []string `json:"mentioned_companies,omitempty"`
	TimeHorizon        string   `json:"time_horizon,omitempty"`
	Accuracy           *float64 `json:"accuracy,omitempty"`
}

// Clone returns a deep copy so snapshots stored on edges never alias caller slices.
func (c MarketContext) Clone() MarketContext {
	out := c
	if c.Volatility != nil {
		v := *c.Volatility
		out.Volatility = &v
	}
	if c.Accuracy != nil {
		a := *c.Accuracy
		out.Accuracy = &a
	}
	if c.KeyThemes != nil {
		out.KeyThemes = append([]string(nil), c.KeyThemes...)
	}
	if c.MentionedCompanies != nil {
		out.MentionedCompanies = append([]string(nil), c.MentionedCompanies...)
	}
	return out
}

// ThemeSet returns the key themes as a set.
func (c MarketContext) ThemeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.KeyThemes))
	for _, t := range c.KeyThemes {
		set[t] = struct{}{}
	}
	return set
}
