package store

import (
	"context"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type BreakerConfig struct {
	MaxConsecutiveFailures uint32
	Timeout                time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxConsecutiveFailures: 5, Timeout: 30 * time.Second}
}

// BreakerLog guards writes to a KnowledgeLog with a circuit breaker so a failing
// backend is skipped quickly instead of adding I/O latency to every update.
// Reads go straight through.
type BreakerLog struct {
	domain.KnowledgeLog
	cb *gobreaker.CircuitBreaker
}

func NewBreakerLog(log domain.KnowledgeLog, cfg BreakerConfig, logger *zap.Logger) *BreakerLog {
	if cfg.MaxConsecutiveFailures == 0 {
		cfg.MaxConsecutiveFailures = DefaultBreakerConfig().MaxConsecutiveFailures
	}
	st := gobreaker.Settings{
		Name:    "knowledge-log",
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("persistence circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &BreakerLog{KnowledgeLog: log, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerLog) AppendTriple(ctx context.Context, t *domain.Triple) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.KnowledgeLog.AppendTriple(ctx, t)
	})
	return err
}

func (b *BreakerLog) AppendExperience(ctx context.Context, e *domain.Experience) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.KnowledgeLog.AppendExperience(ctx, e)
	})
	return err
}

// Ping bypasses the breaker so health checks see the backend directly.
func (b *BreakerLog) Ping(ctx context.Context) error {
	if p, ok := b.KnowledgeLog.(domain.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (b *BreakerLog) State() gobreaker.State {
	return b.cb.State()
}
