package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openers(t *testing.T) map[string]func() domain.KnowledgeLog {
	return map[string]func() domain.KnowledgeLog{
		"sqlite": func() domain.KnowledgeLog {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "learning.db"))
			require.NoError(t, err)
			return s
		},
		"badger": func() domain.KnowledgeLog {
			s, err := NewBadgerStore("")
			require.NoError(t, err)
			return s
		},
	}
}

func TestKnowledgeLog_Triples(t *testing.T) {
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			log := open()
			defer log.Close()
			ctx := context.Background()
			vol := 0.8

			ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			first := &domain.Triple{
				Subject: "Warren Buffett", Predicate: "is_bullish_on", Object: "Apple",
				Confidence: 0.8, Source: "quote_Warren Buffett_20240501", Timestamp: ts,
				Context: domain.MarketContext{MarketPhase: "bull_market", KeyThemes: []string{"technology"}, Volatility: &vol},
			}
			second := &domain.Triple{
				Subject: "Apple", Predicate: "has", Object: "moat",
				Confidence: 0.7, Source: "quote_Warren Buffett_20240501", Timestamp: ts.Add(time.Second),
			}
			require.NoError(t, log.AppendTriple(ctx, first))
			require.NoError(t, log.AppendTriple(ctx, second))
			assert.Greater(t, second.ID, first.ID)

			got, err := log.ListTriples(ctx)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "Apple", got[0].Object)
			assert.Equal(t, "moat", got[1].Object)
			assert.Equal(t, []string{"technology"}, got[0].Context.KeyThemes)
			require.NotNil(t, got[0].Context.Volatility)
			assert.Equal(t, 0.8, *got[0].Context.Volatility)
			assert.True(t, ts.Equal(got[0].Timestamp))

			n, err := log.CountTriples(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)
		})
	}
}

func TestKnowledgeLog_Experiences(t *testing.T) {
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			log := open()
			defer log.Close()
			ctx := context.Background()

			for i := 0; i < 5; i++ {
				actor := "Warren Buffett"
				if i%2 == 1 {
					actor = "Peter Lynch"
				}
				e := &domain.Experience{
					ActorID: actor, Prediction: domain.ActionBuy,
					ActualOutcome: fmt.Sprintf("0.%d", i), Accuracy: float64(i) / 10,
					Context:   domain.MarketContext{MentionedCompanies: []string{"AAPL"}},
					Timestamp: time.Now(),
				}
				require.NoError(t, log.AppendExperience(ctx, e))
				assert.NotZero(t, e.ID)
			}

			all, err := log.ListExperiences(ctx, "", 10)
			require.NoError(t, err)
			require.Len(t, all, 5)
			assert.Equal(t, "0.4", all[0].ActualOutcome, "newest first")

			lynch, err := log.ListExperiences(ctx, "Peter Lynch", 10)
			require.NoError(t, err)
			require.Len(t, lynch, 2)
			assert.Equal(t, "0.3", lynch[0].ActualOutcome)
			assert.Equal(t, []string{"AAPL"}, lynch[0].Context.MentionedCompanies)

			limited, err := log.ListExperiences(ctx, "", 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			n, err := log.CountExperiences(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(5), n)
		})
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learning.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendTriple(ctx, &domain.Triple{Subject: "A", Predicate: "p", Object: "B", Confidence: 0.5, Source: "s"}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.CountTriples(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDecodeContext_Lenient(t *testing.T) {
	assert.Equal(t, domain.MarketContext{}, decodeContext(""))
	assert.Equal(t, domain.MarketContext{}, decodeContext("{not json"))
	assert.Equal(t, "bear_market", decodeContext(`{"market_phase":"bear_market","extra":1}`).MarketPhase)
}

type failingLog struct {
	domain.KnowledgeLog
	calls int
}

var errDiskFull = errors.New("disk full")

func (f *failingLog) AppendTriple(ctx context.Context, t *domain.Triple) error {
	f.calls++
	return errDiskFull
}

func (f *failingLog) AppendExperience(ctx context.Context, e *domain.Experience) error {
	f.calls++
	return errDiskFull
}

func TestBreakerLog_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &failingLog{}
	b := NewBreakerLog(inner, BreakerConfig{MaxConsecutiveFailures: 3, Timeout: time.Minute}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := b.AppendTriple(ctx, &domain.Triple{})
		assert.ErrorIs(t, err, errDiskFull)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.AppendExperience(ctx, &domain.Experience{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls, "open breaker must not reach the backend")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "cassandra"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(context.Background(), Options{Driver: DriverPostgres})
	assert.Error(t, err)
}

func TestOpen_SQLiteDefault(t *testing.T) {
	log, err := Open(context.Background(), Options{SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	defer log.Close()
	_, ok := log.(*SQLiteStore)
	assert.True(t, ok)
}

func TestPing_FailsAfterClose(t *testing.T) {
	ctx := context.Background()
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			log := open()
			p, ok := log.(domain.Pinger)
			require.True(t, ok)
			require.NoError(t, p.Ping(ctx))

			b := NewBreakerLog(log, DefaultBreakerConfig(), zap.NewNop())
			require.NoError(t, b.Ping(ctx))

			require.NoError(t, log.Close())
			assert.Error(t, p.Ping(ctx))
			assert.Error(t, b.Ping(ctx), "breaker forwards ping to the backend")
		})
	}
}

func TestBreakerLog_PingWithoutPinger(t *testing.T) {
	b := NewBreakerLog(&failingLog{}, DefaultBreakerConfig(), zap.NewNop())
	assert.NoError(t, b.Ping(context.Background()))
}
