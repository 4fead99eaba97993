package service

import (
	"sync"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"go.uber.org/zap"
)

const defaultDecayInterval = 24 * time.Hour

// DecayService runs the confidence decay tick on a schedule. Decay is never
// applied on reads or writes; RunDecay can also be triggered directly.
type DecayService struct {
	graph  *graph.KnowledgeGraph
	logger *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDecayService(g *graph.KnowledgeGraph, logger *zap.Logger) *DecayService {
	return &DecayService{
		graph:    g,
		logger:   logger,
		interval: defaultDecayInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *DecayService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

func (s *DecayService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("decay worker started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				s.RunDecay()
			case <-s.stopCh:
				s.logger.Info("decay worker stopped")
				return
			}
		}
	}()
}

func (s *DecayService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *DecayService) RunDecay() domain.DecayResult {
	result := s.graph.Decay()
	if result.Decayed > 0 {
		s.logger.Info("decay complete",
			zap.Int("processed", result.Processed),
			zap.Int("decayed", result.Decayed),
			zap.Int("floored", result.Floored))
	}
	return result
}
