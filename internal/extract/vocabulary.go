package extract

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// Vocabulary is the keyword configuration behind extraction, sentiment and the
// actor-specific prediction multiplier.
type Vocabulary struct {
	Companies  []string          `yaml:"companies"`
	Concepts   []string          `yaml:"concepts"`
	Emotions   []string          `yaml:"emotions"`
	Sentiment  SentimentWords    `yaml:"sentiment"`
	Prediction PredictionProfile `yaml:"prediction"`
}

type SentimentWords struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// PredictionProfile controls the contextual confidence multiplier. In a bear
// market, contrarian actors get BearMarketBoost and everyone else BearMarketDiscount.
type PredictionProfile struct {
	ContrarianActors   []string `yaml:"contrarian_actors"`
	BearMarketBoost    float64  `yaml:"bear_market_boost"`
	BearMarketDiscount float64  `yaml:"bear_market_discount"`
}

func (p PredictionProfile) IsContrarian(actorID string) bool {
	for _, a := range p.ContrarianActors {
		if a == actorID {
			return true
		}
	}
	return false
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// LoadVocabulary reads a YAML vocabulary file. An empty path returns the built-in one.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVocabulary, err)
	}
	if len(v.Companies) == 0 {
		return nil, fmt.Errorf("%w: no companies", ErrInvalidVocabulary)
	}
	if v.Prediction.BearMarketBoost == 0 {
		v.Prediction.BearMarketBoost = 1.2
	}
	if v.Prediction.BearMarketDiscount == 0 {
		v.Prediction.BearMarketDiscount = 0.8
	}
	return &v, nil
}
