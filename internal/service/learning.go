package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/extract"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"go.uber.org/zap"
)

const (
	ReinforceThreshold = 0.8
	WeakenThreshold    = 0.3

	ReinforceConfidence = 0.9
	WeakenConfidence    = 0.7

	OutcomeSource = "learning_outcome"
)

// KnowledgeLog is the subset of the persistence adapter the learning path writes to.
type KnowledgeLog interface {
	domain.TripleLog
	domain.ExperienceLog
}

// LearningService owns the write path into the knowledge graph: statements,
// outcomes, and the reinforcement they trigger. The graph is shared with the
// prediction engine and passed in by the host.
type LearningService struct {
	graph      *graph.KnowledgeGraph
	extractor  *extract.EntityExtractor
	inferencer *extract.RelationshipInferencer
	log        KnowledgeLog
	history    *experienceHistory
	logger     *zap.Logger

	now func() time.Time
}

func NewLearningService(
	g *graph.KnowledgeGraph,
	extractor *extract.EntityExtractor,
	log KnowledgeLog,
	historyCapacity int,
	logger *zap.Logger,
) *LearningService {
	return &LearningService{
		graph:      g,
		extractor:  extractor,
		inferencer: extract.NewRelationshipInferencer(extractor),
		log:        log,
		history:    newExperienceHistory(historyCapacity),
		logger:     logger,
		now:        time.Now,
	}
}

// LearnFromQuote extracts entities from a statement, infers triples, merges
// them into the graph and appends them to the durable log. The returned error,
// if any, wraps ErrPersistence; the graph is already updated.
func (s *LearningService) LearnFromQuote(ctx context.Context, actorID, text string, mctx domain.MarketContext) ([]domain.Triple, error) {
	entities := s.extractor.ExtractEntities(text)
	inferred := s.inferencer.InferRelationships(text, entities, actorID)

	now := s.now()
	source := fmt.Sprintf("quote_%s_%s", actorID, now.Format("20060102"))

	triples := make([]domain.Triple, 0, len(inferred))
	var errs []error
	for _, rel := range inferred {
		t := domain.Triple{
			Subject:    rel.Subject,
			Predicate:  rel.Predicate,
			Object:     rel.Object,
			Confidence: rel.Confidence,
			Source:     source,
			Context:    mctx.Clone(),
			Timestamp:  now,
		}
		if err := s.addAndPersist(ctx, &t); err != nil {
			errs = append(errs, err)
		}
		triples = append(triples, t)
	}

	s.logger.Debug("learned from quote",
		zap.String("actor_id", actorID),
		zap.Int("companies", len(entities.Companies)),
		zap.Int("triples", len(triples)))

	return triples, persistenceError(errs)
}

// EvaluateAccuracy scores a predicted action against realized performance
// (a fraction, 0.10 = +10%). A non-finite performance scores 0.
func EvaluateAccuracy(action domain.Action, performance float64) float64 {
	switch {
	case math.IsNaN(performance) || math.IsInf(performance, 0):
		return 0
	case action == domain.ActionBuy && performance > 0.05:
		return 1.0
	case action == domain.ActionSell && performance < -0.05:
		return 1.0
	case action == domain.ActionAvoid && performance < -0.1:
		return 0.8
	}
	return math.Max(0, 1-10*math.Abs(performance))
}

// LearnFromOutcome scores a prediction, records the experience in memory and in
// the durable log, then reinforces or weakens related knowledge. The experience
// is returned even when persistence fails.
func (s *LearningService) LearnFromOutcome(ctx context.Context, pred domain.Prediction, outcome domain.Outcome) (*domain.Experience, error) {
	if pred.ActorID == "" {
		return nil, ErrActorIDMissing
	}
	if math.IsNaN(outcome.Performance) || math.IsInf(outcome.Performance, 0) {
		return nil, ErrInvalidPerformance
	}

	exp := domain.Experience{
		ActorID:       pred.ActorID,
		Prediction:    pred.Action,
		ActualOutcome: strconv.FormatFloat(outcome.Performance, 'f', -1, 64),
		Accuracy:      EvaluateAccuracy(pred.Action, outcome.Performance),
		Context:       pred.Context.Clone(),
		Timestamp:     s.now(),
	}
	if exp.Context.TimeHorizon == "" {
		exp.Context.TimeHorizon = outcome.TimeHorizon
		if exp.Context.TimeHorizon == "" {
			exp.Context.TimeHorizon = domain.DefaultTimeHorizon
		}
	}

	var errs []error
	if s.log != nil {
		if err := s.log.AppendExperience(ctx, &exp); err != nil {
			s.logger.Warn("failed to persist learning experience",
				zap.String("actor_id", exp.ActorID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	s.history.append(exp)

	if _, err := s.UpdateRelatedKnowledge(ctx, exp); err != nil {
		errs = append(errs, err)
	}

	s.logger.Info("learned from outcome",
		zap.String("actor_id", exp.ActorID),
		zap.String("prediction", string(exp.Prediction)),
		zap.Float64("performance", outcome.Performance),
		zap.Float64("accuracy", exp.Accuracy))

	return &exp, persistenceError(errs)
}

// UpdateRelatedKnowledge reinforces (accuracy > 0.8) or weakens (accuracy < 0.3)
// the actor's edge to every company mentioned in the experience context.
// Accuracies in [0.3, 0.8] change nothing.
func (s *LearningService) UpdateRelatedKnowledge(ctx context.Context, exp domain.Experience) ([]domain.Triple, error) {
	var (
		predicate  string
		confidence float64
	)
	switch {
	case exp.Accuracy > ReinforceThreshold:
		predicate, confidence = domain.PredicateSuccessfulPredictionOn, ReinforceConfidence
	case exp.Accuracy < WeakenThreshold:
		predicate, confidence = domain.PredicateUnsuccessfulPredictionOn, WeakenConfidence
	default:
		return nil, nil
	}

	accuracy := exp.Accuracy
	var (
		triples []domain.Triple
		errs    []error
	)
	for _, company := range exp.Context.MentionedCompanies {
		t := domain.Triple{
			Subject:    exp.ActorID,
			Predicate:  predicate,
			Object:     company,
			Confidence: confidence,
			Source:     OutcomeSource,
			Context:    domain.MarketContext{Accuracy: &accuracy},
			Timestamp:  exp.Timestamp,
		}
		if err := s.addAndPersist(ctx, &t); err != nil {
			errs = append(errs, err)
		}
		triples = append(triples, t)
	}
	return triples, persistenceError(errs)
}

func (s *LearningService) addAndPersist(ctx context.Context, t *domain.Triple) error {
	s.graph.AddKnowledge(*t)
	if s.log == nil {
		return nil
	}
	if err := s.log.AppendTriple(ctx, t); err != nil {
		s.logger.Warn("failed to persist knowledge triple",
			zap.String("subject", t.Subject),
			zap.String("predicate", t.Predicate),
			zap.String("object", t.Object),
			zap.Error(err))
		return err
	}
	return nil
}

// History returns the in-memory experience window, oldest first.
func (s *LearningService) History() []domain.Experience {
	return s.history.items()
}

func (s *LearningService) HistoryLen() int {
	return s.history.len()
}

// RecentExperiences returns up to limit experiences from the in-memory window,
// newest first, optionally restricted to one actor.
func (s *LearningService) RecentExperiences(actorID string, limit int) []domain.Experience {
	items := s.history.items()
	out := []domain.Experience{}
	for i := len(items) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if actorID != "" && items[i].ActorID != actorID {
			continue
		}
		out = append(out, items[i])
	}
	return out
}

type LearningStats struct {
	domain.GraphStats
	HistorySize       int   `json:"history_size"`
	HistoryCapacity   int   `json:"history_capacity"`
	LoggedTriples     int64 `json:"logged_triples"`
	LoggedExperiences int64 `json:"logged_experiences"`
}

// Stats reports graph size, the experience window, and durable log counts.
// Counts from an unreachable log are left at zero and the error is returned.
func (s *LearningService) Stats(ctx context.Context) (*LearningStats, error) {
	stats := &LearningStats{
		GraphStats:      s.graph.Stats(),
		HistorySize:     s.history.len(),
		HistoryCapacity: s.history.capacity(),
	}
	if s.log == nil {
		return stats, nil
	}

	var errs []error
	n, err := s.log.CountTriples(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	stats.LoggedTriples = n
	n, err = s.log.CountExperiences(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	stats.LoggedExperiences = n
	return stats, persistenceError(errs)
}

// Ping reports whether the durable log is reachable. Running without a log,
// or on a log that cannot be pinged, counts as healthy.
func (s *LearningService) Ping(ctx context.Context) error {
	if p, ok := s.log.(domain.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	return nil
}

type RestoreResult struct {
	Triples     int `json:"triples"`
	Experiences int `json:"experiences"`
}

// Restore rebuilds the graph by replaying every logged triple in append order
// and refills the experience window with the newest logged experiences.
// Nothing is written back to the log.
func (s *LearningService) Restore(ctx context.Context) (*RestoreResult, error) {
	res := &RestoreResult{}
	if s.log == nil {
		return res, nil
	}

	triples, err := s.log.ListTriples(ctx)
	if err != nil {
		return nil, fmt.Errorf("list triples: %w", err)
	}
	for _, t := range triples {
		s.graph.AddKnowledge(t)
	}
	res.Triples = len(triples)

	experiences, err := s.log.ListExperiences(ctx, "", s.history.capacity())
	if err != nil {
		return res, fmt.Errorf("list experiences: %w", err)
	}
	for i := len(experiences) - 1; i >= 0; i-- {
		s.history.append(experiences[i])
	}
	res.Experiences = len(experiences)

	s.logger.Info("knowledge graph restored",
		zap.Int("triples", res.Triples),
		zap.Int("experiences", res.Experiences))
	return res, nil
}

func persistenceError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, errors.Join(errs...))
}
