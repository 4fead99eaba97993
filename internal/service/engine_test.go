package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_ReplaysLogOnReopen(t *testing.T) {
	ctx := context.Background()
	cfg := EngineConfig{
		Store:           store.Options{Driver: store.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "kg.db")},
		Breaker:         store.DefaultBreakerConfig(),
		Graph:           graph.DefaultConfig(),
		HistoryCapacity: 10,
		ReplayOnStart:   true,
	}

	e, err := OpenEngine(ctx, cfg, testLogger())
	require.NoError(t, err)

	_, err = e.Learning.LearnFromQuote(ctx, "Warren Buffett", "I love Apple", domain.MarketContext{MarketPhase: "bull_market"})
	require.NoError(t, err)
	_, err = e.Learning.LearnFromQuote(ctx, "Warren Buffett", "Apple is wonderful", domain.MarketContext{})
	require.NoError(t, err)
	_, err = e.Learning.LearnFromOutcome(ctx,
		domain.Prediction{ActorID: "Warren Buffett", Action: domain.ActionHold}, domain.Outcome{Performance: 0.02})
	require.NoError(t, err)

	want, ok := e.Graph.Edge("Warren Buffett", "Apple")
	require.True(t, ok)
	require.NoError(t, e.Close())

	reopened, err := OpenEngine(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Graph.Edge("Warren Buffett", "Apple")
	require.True(t, ok)
	assert.InDelta(t, want.Confidence, got.Confidence, 1e-9)
	assert.InDelta(t, want.Weight, got.Weight, 1e-9)
	assert.Equal(t, want.Predicate, got.Predicate)
	assert.Equal(t, 1, reopened.Learning.HistoryLen())

	d := reopened.Prediction.PredictInvestorBehavior("Warren Buffett",
		domain.MarketContext{MentionedCompanies: []string{"Apple"}})
	assert.Equal(t, domain.ActionBuy, d.Action)
}

func TestEngine_NoReplay(t *testing.T) {
	ctx := context.Background()
	cfg := EngineConfig{
		Store: store.Options{Driver: store.DriverBadger},
		Graph: graph.DefaultConfig(),
	}

	e, err := OpenEngine(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 0, e.Graph.Stats().Edges)
	assert.NotNil(t, e.Vocabulary)
}

func TestEngine_BadVocabulary(t *testing.T) {
	_, err := OpenEngine(context.Background(), EngineConfig{VocabularyPath: "/does/not/exist.yaml"}, testLogger())
	assert.Error(t, err)
}
