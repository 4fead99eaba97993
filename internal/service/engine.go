package service

import (
	"context"
	"fmt"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/extract"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/store"
	"go.uber.org/zap"
)

type EngineConfig struct {
	Store           store.Options
	Breaker         store.BreakerConfig
	VocabularyPath  string
	Graph           graph.Config
	HistoryCapacity int
	ReplayOnStart   bool
}

// Engine is the fully wired learning system: one shared graph, the durable
// log behind a circuit breaker, and the services built on top of them.
type Engine struct {
	Graph      *graph.KnowledgeGraph
	Log        domain.KnowledgeLog
	Vocabulary *extract.Vocabulary
	Learning   *LearningService
	Prediction *PredictionService
	Decay      *DecayService

	logger *zap.Logger
}

func OpenEngine(ctx context.Context, cfg EngineConfig, logger *zap.Logger) (*Engine, error) {
	vocab, err := extract.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return nil, err
	}

	backend, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open knowledge log: %w", err)
	}
	log := store.NewBreakerLog(backend, cfg.Breaker, logger)

	g := graph.NewKnowledgeGraph(cfg.Graph)
	e := &Engine{
		Graph:      g,
		Log:        log,
		Vocabulary: vocab,
		Learning:   NewLearningService(g, extract.NewEntityExtractor(vocab), log, cfg.HistoryCapacity, logger),
		Prediction: NewPredictionService(g, vocab.Prediction, logger),
		Decay:      NewDecayService(g, logger),
		logger:     logger,
	}

	if cfg.ReplayOnStart {
		if _, err := e.Learning.Restore(ctx); err != nil {
			_ = log.Close()
			return nil, fmt.Errorf("restore knowledge graph: %w", err)
		}
	}

	logger.Info("learning engine ready",
		zap.String("store_driver", cfg.Store.Driver),
		zap.Int("edges", g.Stats().Edges))
	return e, nil
}

func (e *Engine) Close() error {
	return e.Log.Close()
}
