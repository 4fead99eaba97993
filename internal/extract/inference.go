package extract

import (
	"strings"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
)

const (
	SentimentConfidence = 0.8
	ConceptConfidence   = 0.7
)

// InferredTriple is a candidate triple before source, context and time are attached.
type InferredTriple struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Confidence float64 `json:"confidence"`
}

type RelationshipInferencer struct {
	extractor *EntityExtractor
}

func NewRelationshipInferencer(x *EntityExtractor) *RelationshipInferencer {
	return &RelationshipInferencer{extractor: x}
}

// InferRelationships emits one sentiment triple per company, and a "has" triple
// for each concept that appears immediately before a company ("moat Apple").
// Adjacency is required; anything looser is left out.
func (r *RelationshipInferencer) InferRelationships(text string, entities Entities, actorID string) []InferredTriple {
	var out []InferredTriple

	predicate := domain.SentimentPredicate(r.extractor.AnalyzeSentiment(text))
	for _, company := range entities.Companies {
		out = append(out, InferredTriple{
			Subject:    actorID,
			Predicate:  predicate,
			Object:     company,
			Confidence: SentimentConfidence,
		})
	}

	lower := strings.ToLower(text)
	for _, concept := range entities.Concepts {
		for _, company := range entities.Companies {
			phrase := strings.ToLower(concept + " " + company)
			if strings.Contains(lower, phrase) {
				out = append(out, InferredTriple{
					Subject:    company,
					Predicate:  domain.PredicateHas,
					Object:     concept,
					Confidence: ConceptConfidence,
				})
			}
		}
	}
	return out
}
