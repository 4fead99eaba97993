// Package extract turns free-text statements into candidate entities, a coarse
// sentiment, and the triples inferred from them. Matching is plain
// case-insensitive substring search over a fixed vocabulary.
package extract

import (
	"strings"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
)

// Entities holds the matches per category in vocabulary order.
type Entities struct {
	Companies []string `json:"companies"`
	Concepts  []string `json:"concepts"`
	Emotions  []string `json:"emotions"`
}

type pattern struct {
	name  string
	lower string
}

type EntityExtractor struct {
	companies []pattern
	concepts  []pattern
	emotions  []pattern
	positive  []string
	negative  []string
}

func NewEntityExtractor(v *Vocabulary) *EntityExtractor {
	if v == nil {
		v = DefaultVocabulary()
	}
	return &EntityExtractor{
		companies: compile(v.Companies),
		concepts:  compile(v.Concepts),
		emotions:  compile(v.Emotions),
		positive:  lowerAll(v.Sentiment.Positive),
		negative:  lowerAll(v.Sentiment.Negative),
	}
}

func compile(words []string) []pattern {
	out := make([]pattern, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		l := strings.ToLower(strings.TrimSpace(w))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, pattern{name: w, lower: l})
	}
	return out
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if l := strings.ToLower(strings.TrimSpace(w)); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ExtractEntities returns the vocabulary entries found in text.
func (x *EntityExtractor) ExtractEntities(text string) Entities {
	lower := strings.ToLower(text)
	return Entities{
		Companies: match(x.companies, lower),
		Concepts:  match(x.concepts, lower),
		Emotions:  match(x.emotions, lower),
	}
}

func match(patterns []pattern, lower string) []string {
	var found []string
	for _, p := range patterns {
		if strings.Contains(lower, p.lower) {
			found = append(found, p.name)
		}
	}
	return found
}

// AnalyzeSentiment counts how many positive and negative words appear in text.
// Each word counts once. Ties are neutral.
func (x *EntityExtractor) AnalyzeSentiment(text string) domain.Sentiment {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range x.positive {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range x.negative {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return domain.SentimentBullish
	case neg > pos:
		return domain.SentimentBearish
	default:
		return domain.SentimentNeutral
	}
}
