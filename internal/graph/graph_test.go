package graph

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triple(s, p, o string, c float64, src string) domain.Triple {
	return domain.Triple{Subject: s, Predicate: p, Object: o, Confidence: c, Source: src}
}

func TestAddKnowledge_CreatesEdgeWithWeightEqualToConfidence(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())

	e := g.AddKnowledge(triple("A", "likes", "B", 0.8, "src1"))

	assert.Equal(t, 0.8, e.Confidence)
	assert.Equal(t, 0.8, e.Weight)
	assert.Equal(t, "src1", e.Source)
	assert.Equal(t, []string{"src1"}, e.RecentSources)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestAddKnowledge_MergeVector(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())

	g.AddKnowledge(triple("A", "likes", "B", 0.8, "src1"))
	e := g.AddKnowledge(triple("A", "likes", "B", 0.6, "src2"))

	assert.InDelta(t, 1.4, e.Weight, 1e-9)
	assert.InDelta(t, 0.714286, e.Confidence, 1e-6)
	assert.Equal(t, []string{"src1", "src2"}, e.RecentSources)
}

func TestAddKnowledge_PredicateOverwrittenOnSamePair(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	g.AddKnowledge(triple("Warren Buffett", "is_bullish_on", "Apple", 0.8, "q1"))
	second := triple("Warren Buffett", "successful_prediction_on", "Apple", 0.9, "learning_outcome")
	second.Timestamp = ts
	second.Context = domain.MarketContext{MarketPhase: "bear_market"}
	e := g.AddKnowledge(second)

	assert.Equal(t, "successful_prediction_on", e.Predicate)
	assert.Equal(t, "bear_market", e.Context.MarketPhase)
	assert.Equal(t, ts, e.UpdatedAt)
	assert.Equal(t, 1, g.Stats().Edges)
	assert.Empty(t, g.GetRelationships("Warren Buffett", "is_bullish_on"))
}

func TestAddKnowledge_ConfidenceStaysInUnitInterval(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())
	r := rand.New(rand.NewSource(42))

	prevWeight := 0.0
	for i := 0; i < 500; i++ {
		e := g.AddKnowledge(triple("A", "p", "B", r.Float64(), fmt.Sprintf("s%d", i)))
		require.GreaterOrEqual(t, e.Confidence, 0.0)
		require.LessOrEqual(t, e.Confidence, 1.0)
		require.GreaterOrEqual(t, e.Weight, prevWeight)
		prevWeight = e.Weight
		if i%50 == 0 {
			g.Decay()
		}
	}
}

func TestAddKnowledge_ClampsOutOfRangeConfidence(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())

	assert.Equal(t, 1.0, g.AddKnowledge(triple("A", "p", "B", 1.7, "s")).Confidence)
	assert.Equal(t, 0.0, g.AddKnowledge(triple("C", "p", "D", -0.2, "s")).Confidence)
}

func TestAddKnowledge_ZeroWeightMergeKeepsConfidence(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())

	g.AddKnowledge(triple("A", "p", "B", 0, "s1"))
	e := g.AddKnowledge(triple("A", "p", "B", 0, "s2"))

	assert.Equal(t, 0.0, e.Confidence)
	assert.Equal(t, 0.0, e.Weight)
}

func TestAddKnowledge_RecentSourcesBounded(t *testing.T) {
	g := NewKnowledgeGraph(Config{MaxRecentSources: 3})

	var e domain.Edge
	for i := 0; i < 5; i++ {
		e = g.AddKnowledge(triple("A", "p", "B", 0.5, fmt.Sprintf("s%d", i)))
	}

	assert.Equal(t, []string{"s2", "s3", "s4"}, e.RecentSources)
	assert.Equal(t, "s0", e.Source)
}

func TestAddKnowledge_SelfLoopsAndCycles(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())

	g.AddKnowledge(triple("A", "p", "A", 0.5, "s"))
	g.AddKnowledge(triple("A", "p", "B", 0.5, "s"))
	g.AddKnowledge(triple("B", "p", "A", 0.5, "s"))

	stats := g.Stats()
	assert.Equal(t, 2, stats.Nodes)
	assert.Equal(t, 3, stats.Edges)
	assert.Equal(t, 3, stats.Tiers[domain.TierWeak])
	assert.Len(t, g.GetRelationships("A", ""), 2)
}

func TestDecay(t *testing.T) {
	g := NewKnowledgeGraph(Config{DecayFactor: 0.5, MinConfidence: 0.1})
	g.AddKnowledge(triple("A", "p", "B", 0.8, "s"))
	g.AddKnowledge(triple("A", "p", "C", 0.15, "s"))

	res := g.Decay()

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Floored)

	ab, ok := g.Edge("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 0.4, ab.Confidence, 1e-9)
	assert.InDelta(t, 0.8, ab.Weight, 1e-9, "decay must not touch weight")

	ac, ok := g.Edge("A", "C")
	require.True(t, ok)
	assert.Equal(t, 0.1, ac.Confidence)

	for i := 0; i < 20; i++ {
		g.Decay()
	}
	assert.Equal(t, 2, g.Stats().Edges, "decay never deletes edges")
	assert.Equal(t, 2, g.Stats().Tiers[domain.TierFaded])
}

func TestGetRelationships(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())
	g.AddKnowledge(triple("Warren Buffett", "is_bullish_on", "Apple", 0.8, "q1"))
	g.AddKnowledge(triple("Warren Buffett", "is_bearish_on", "Tesla", 0.8, "q2"))
	g.AddKnowledge(triple("Apple", "has", "moat", 0.7, "q1"))

	all := g.GetRelationships("Warren Buffett", "")
	require.Len(t, all, 2)
	assert.Equal(t, "Apple", all[0].Object)
	assert.Equal(t, "Tesla", all[1].Object)
	assert.Equal(t, "q1", all[0].Source)

	bullish := g.GetRelationships("Warren Buffett", "is_bullish_on")
	require.Len(t, bullish, 1)
	assert.Equal(t, "Apple", bullish[0].Object)

	assert.Empty(t, g.GetRelationships("Warren Buffett", "unknown_predicate"))
	assert.Empty(t, g.GetRelationships("Nobody", ""))
}

func TestFindSimilarSituations(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())
	add := func(obj, phase string, themes ...string) {
		tr := triple("X", "p", obj, 0.5, "s")
		tr.Context = domain.MarketContext{MarketPhase: phase, KeyThemes: themes}
		g.AddKnowledge(tr)
	}
	add("phase-only", "bear_market")                            // 0.3, dropped
	add("one-theme", "bull_market", "ai")                        // 0.7
	add("theme-and-phase", "bear_market", "ai")                  // 1.0
	add("two-themes", "bull_market", "ai", "inflation")          // 1.4
	add("nothing", "bull_market", "consumer")                    // 0.0, dropped
	add("one-theme-again", "neutral", "inflation")               // 0.7
	add("two-themes-phase", "bear_market", "inflation", "ai")    // 1.7

	current := domain.MarketContext{MarketPhase: "bear_market", KeyThemes: []string{"ai", "inflation"}}

	got := g.FindSimilarSituations(current, 10)
	require.Len(t, got, 5)
	var objects []string
	for i, s := range got {
		assert.Greater(t, s.Similarity, 0.3)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Similarity, s.Similarity)
		}
		objects = append(objects, s.Object)
	}
	assert.Equal(t, []string{"two-themes-phase", "two-themes", "theme-and-phase", "one-theme", "one-theme-again"}, objects)

	top2 := g.FindSimilarSituations(current, 2)
	require.Len(t, top2, 2)
	assert.InDelta(t, 1.7, top2[0].Similarity, 1e-9)

	assert.Len(t, g.FindSimilarSituations(current, 0), DefaultTopK)
}

func TestFindSimilarSituations_MissingFieldsNeverMatchPhaseOnly(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())
	g.AddKnowledge(triple("A", "p", "B", 0.5, "s"))

	assert.Empty(t, g.FindSimilarSituations(domain.MarketContext{}, 5))
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())
	tr := triple("A", "p", "B", 0.5, "s")
	tr.Context = domain.MarketContext{KeyThemes: []string{"ai"}}
	g.AddKnowledge(tr)

	tr.Context.KeyThemes[0] = "mutated"
	e, _ := g.Edge("A", "B")
	assert.Equal(t, []string{"ai"}, e.Context.KeyThemes)

	e.RecentSources[0] = "mutated"
	again, _ := g.Edge("A", "B")
	assert.Equal(t, "s", again.RecentSources[0])
}

func TestConcurrentWritersDoNotLoseWeight(t *testing.T) {
	g := NewKnowledgeGraph(DefaultConfig())

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				g.AddKnowledge(triple("A", "p", "B", 0.5, "s"))
				_ = g.GetRelationships("A", "")
				_ = g.FindSimilarSituations(domain.MarketContext{}, 5)
			}
		}()
	}
	wg.Wait()

	e, ok := g.Edge("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 400.0, e.Weight, 1e-6)
	assert.InDelta(t, 0.5, e.Confidence, 1e-9)
}
