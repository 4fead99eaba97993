package store

import (
	"encoding/json"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
)

const defaultListLimit = 100

// decodeContext is lenient: a missing or malformed snapshot reads as an empty context.
func decodeContext(raw string) domain.MarketContext {
	var c domain.MarketContext
	if raw == "" {
		return c
	}
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return domain.MarketContext{}
	}
	return c
}

func stampOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
