package service

import (
	"strings"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/extract"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"go.uber.org/zap"
)

const (
	DefaultPredictionConfidence = 0.5
	strongConfidenceLevel       = 0.7
	reasoningCompanyLimit       = 3

	defaultReasoning = "Based on historical patterns and current market conditions."
)

// PredictionService answers "what would this actor likely do now" from the
// actor's known stances and the situations the graph has seen before.
type PredictionService struct {
	graph   *graph.KnowledgeGraph
	profile extract.PredictionProfile
	logger  *zap.Logger
}

func NewPredictionService(g *graph.KnowledgeGraph, profile extract.PredictionProfile, logger *zap.Logger) *PredictionService {
	if profile.BearMarketBoost == 0 {
		profile.BearMarketBoost = 1.2
	}
	if profile.BearMarketDiscount == 0 {
		profile.BearMarketDiscount = 0.8
	}
	return &PredictionService{graph: g, profile: profile, logger: logger}
}

// PredictInvestorBehavior never fails. An actor with no known relationships
// gets "hold" at DefaultPredictionConfidence.
func (s *PredictionService) PredictInvestorBehavior(actorID string, mctx domain.MarketContext) domain.Decision {
	similar := s.graph.FindSimilarSituations(mctx, graph.DefaultTopK)
	rels := s.graph.GetRelationships(actorID, "")

	if len(rels) == 0 {
		s.logger.Debug("no knowledge for actor, using neutral prediction", zap.String("actor_id", actorID))
		return domain.Decision{
			ActorID:           actorID,
			Action:            domain.ActionHold,
			Confidence:        DefaultPredictionConfidence,
			Reasoning:         defaultReasoning,
			KeyFactors:        []string{},
			SimilarSituations: len(similar),
			Context:           mctx,
		}
	}

	patterns := AnalyzePatterns(rels)
	confidence := clampUnit(patterns.ConfidenceLevel * s.contextMultiplier(actorID, mctx))

	return domain.Decision{
		ActorID:           actorID,
		Action:            RecommendAction(patterns, mctx),
		Confidence:        confidence,
		Reasoning:         generateReasoning(patterns, mctx),
		KeyFactors:        keyFactors(patterns, similar, mctx),
		SimilarSituations: len(similar),
		Context:           mctx,
	}
}

// AnalyzePatterns counts bullish and bearish stances among an actor's relationships.
// confidence_level = min(1, 2*bullish/total), or 0.5 with no relationships.
func AnalyzePatterns(rels []domain.Relationship) domain.PatternSummary {
	p := domain.PatternSummary{ConfidenceLevel: DefaultPredictionConfidence}
	for _, r := range rels {
		switch {
		case domain.IsBullishPredicate(r.Predicate):
			p.BullishOn = append(p.BullishOn, r.Object)
			p.BullishCount++
		case domain.IsBearishPredicate(r.Predicate):
			p.BearishOn = append(p.BearishOn, r.Object)
		}
		p.TotalMentions++
	}
	if p.TotalMentions > 0 {
		p.ConfidenceLevel = min(1.0, float64(p.BullishCount)/float64(p.TotalMentions)*2)
	}
	return p
}

// RecommendAction walks the mentioned companies in order; the first one the
// actor is bullish on gives "buy", bearish gives "avoid". Otherwise "hold".
func RecommendAction(p domain.PatternSummary, mctx domain.MarketContext) domain.Action {
	for _, company := range mctx.MentionedCompanies {
		if contains(p.BullishOn, company) {
			return domain.ActionBuy
		}
		if contains(p.BearishOn, company) {
			return domain.ActionAvoid
		}
	}
	return domain.ActionHold
}

func (s *PredictionService) contextMultiplier(actorID string, mctx domain.MarketContext) float64 {
	if mctx.MarketPhase != domain.MarketPhaseBear {
		return 1.0
	}
	if s.profile.IsContrarian(actorID) {
		return s.profile.BearMarketBoost
	}
	return s.profile.BearMarketDiscount
}

func generateReasoning(p domain.PatternSummary, mctx domain.MarketContext) string {
	var parts []string
	if len(p.BullishOn) > 0 {
		companies := p.BullishOn
		if len(companies) > reasoningCompanyLimit {
			companies = companies[:reasoningCompanyLimit]
		}
		parts = append(parts, "History shows bullish stance on "+strings.Join(companies, ", "))
	}
	if p.ConfidenceLevel > strongConfidenceLevel {
		parts = append(parts, "Strong historical confidence in this type of situation")
	}
	if mctx.MarketPhase == domain.MarketPhaseBear {
		parts = append(parts, "Current bear market creates opportunity for value investors")
	}
	if len(parts) == 0 {
		return defaultReasoning
	}
	return strings.Join(parts, ". ")
}

func keyFactors(p domain.PatternSummary, similar []domain.SimilarSituation, mctx domain.MarketContext) []string {
	factors := []string{}
	if len(p.BullishOn) > 0 {
		factors = append(factors, "bullish_history")
	}
	if len(p.BearishOn) > 0 {
		factors = append(factors, "bearish_history")
	}
	if len(similar) > 0 {
		factors = append(factors, "similar_situations")
	}
	if mctx.MarketPhase == domain.MarketPhaseBear {
		factors = append(factors, "bear_market")
	}
	return factors
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
