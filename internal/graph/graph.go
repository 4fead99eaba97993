// Package graph holds the in-memory knowledge graph: directed belief edges between
// entities, merged by a confidence-weighted rule and decayed on an explicit tick.
package graph

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
)

const (
	DefaultDecayFactor      = 0.995
	DefaultMinConfidence    = 0.1
	DefaultMaxRecentSources = 20
	DefaultTopK             = 5

	themeWeight         = 0.7
	phaseWeight         = 0.3
	similarityThreshold = 0.3
)

type Config struct {
	DecayFactor      float64
	MinConfidence    float64
	MaxRecentSources int
}

func DefaultConfig() Config {
	return Config{
		DecayFactor:      DefaultDecayFactor,
		MinConfidence:    DefaultMinConfidence,
		MaxRecentSources: DefaultMaxRecentSources,
	}
}

type edgeKey struct {
	subject string
	object  string
}

// KnowledgeGraph is safe for concurrent use. All writers take the exclusive lock;
// readers take the shared lock and receive copies, so a (confidence, weight) pair
// is never observed half-updated.
type KnowledgeGraph struct {
	mu    sync.RWMutex
	edges []*domain.Edge // encounter order
	index map[edgeKey]int
	out   map[string][]int
	nodes map[string]struct{}

	cfg Config
	now func() time.Time
}

func NewKnowledgeGraph(cfg Config) *KnowledgeGraph {
	if cfg.DecayFactor <= 0 || cfg.DecayFactor > 1 {
		cfg.DecayFactor = DefaultDecayFactor
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		cfg.MinConfidence = DefaultMinConfidence
	}
	if cfg.MaxRecentSources <= 0 {
		cfg.MaxRecentSources = DefaultMaxRecentSources
	}
	return &KnowledgeGraph{
		index: make(map[edgeKey]int),
		out:   make(map[string][]int),
		nodes: make(map[string]struct{}),
		cfg:   cfg,
		now:   time.Now,
	}
}

// AddKnowledge merges a triple into the edge for (subject, object) and returns a
// copy of the resulting edge.
//
// On merge:
//
//	confidence = (c_old*w_old + c_in*c_in) / (w_old + c_in)
//	weight     = w_old + c_in
//
// The incoming confidence is its own weight. Predicate, context and timestamp are
// replaced by the incoming observation even when the predicate differs.
func (g *KnowledgeGraph) AddKnowledge(t domain.Triple) domain.Edge {
	conf := clamp01(t.Confidence)
	ts := t.Timestamp
	if ts.IsZero() {
		ts = g.now()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := edgeKey{subject: t.Subject, object: t.Object}
	if i, ok := g.index[key]; ok {
		e := g.edges[i]
		total := e.Weight + conf
		if total > 0 {
			e.Confidence = clamp01((e.Confidence*e.Weight + conf*conf) / total)
		}
		e.Weight = total
		e.Predicate = t.Predicate
		e.Context = t.Context.Clone()
		e.UpdatedAt = ts
		e.RecentSources = appendBounded(e.RecentSources, t.Source, g.cfg.MaxRecentSources)
		return copyEdge(e)
	}

	e := &domain.Edge{
		Subject:       t.Subject,
		Object:        t.Object,
		Predicate:     t.Predicate,
		Confidence:    conf,
		Weight:        conf,
		Source:        t.Source,
		RecentSources: []string{t.Source},
		Context:       t.Context.Clone(),
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	g.edges = append(g.edges, e)
	idx := len(g.edges) - 1
	g.index[key] = idx
	g.out[t.Subject] = append(g.out[t.Subject], idx)
	g.nodes[t.Subject] = struct{}{}
	g.nodes[t.Object] = struct{}{}
	return copyEdge(e)
}

// Decay applies confidence = max(min_confidence, confidence*decay_factor) to every
// edge. Edges are never removed and weights are untouched.
func (g *KnowledgeGraph) Decay() domain.DecayResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	var res domain.DecayResult
	for _, e := range g.edges {
		res.Processed++
		next := e.Confidence * g.cfg.DecayFactor
		if next < g.cfg.MinConfidence {
			next = g.cfg.MinConfidence
			res.Floored++
		}
		if next != e.Confidence {
			res.Decayed++
		}
		e.Confidence = next
	}
	return res
}

// GetRelationships returns the outgoing edges of entity in encounter order,
// filtered by predicate when predicate is non-empty. Unknown entities yield nil.
func (g *KnowledgeGraph) GetRelationships(entity, predicate string) []domain.Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var rels []domain.Relationship
	for _, i := range g.out[entity] {
		e := g.edges[i]
		if predicate != "" && e.Predicate != predicate {
			continue
		}
		rels = append(rels, domain.Relationship{
			Object:     e.Object,
			Predicate:  e.Predicate,
			Confidence: e.Confidence,
			Source:     e.Source,
			Timestamp:  e.UpdatedAt,
		})
	}
	return rels
}

// FindSimilarSituations scores every edge's context snapshot against current:
//
//	similarity = 0.7*|themes ∩ past themes| + 0.3*(phases equal)
//
// Scores at or below 0.3 are dropped. Results are sorted by similarity, highest
// first, ties keeping encounter order, and truncated to topK (DefaultTopK when
// topK <= 0).
func (g *KnowledgeGraph) FindSimilarSituations(current domain.MarketContext, topK int) []domain.SimilarSituation {
	if topK <= 0 {
		topK = DefaultTopK
	}
	themes := current.ThemeSet()

	g.mu.RLock()
	var found []domain.SimilarSituation
	for _, e := range g.edges {
		sim := similarity(themes, current.MarketPhase, e.Context)
		if sim <= similarityThreshold {
			continue
		}
		found = append(found, domain.SimilarSituation{
			Subject:    e.Subject,
			Object:     e.Object,
			Similarity: sim,
			Context:    e.Context.Clone(),
			Confidence: e.Confidence,
			Timestamp:  e.UpdatedAt,
		})
	}
	g.mu.RUnlock()

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Similarity > found[j].Similarity
	})
	if len(found) > topK {
		found = found[:topK]
	}
	return found
}

func similarity(themes map[string]struct{}, phase string, past domain.MarketContext) float64 {
	overlap := 0
	for t := range past.ThemeSet() {
		if _, ok := themes[t]; ok {
			overlap++
		}
	}
	phaseMatch := 0.0
	if past.MarketPhase == phase {
		phaseMatch = 1.0
	}
	return float64(overlap)*themeWeight + phaseMatch*phaseWeight
}

// Edge returns a copy of the edge for (subject, object).
func (g *KnowledgeGraph) Edge(subject, object string) (domain.Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i, ok := g.index[edgeKey{subject: subject, object: object}]
	if !ok {
		return domain.Edge{}, false
	}
	return copyEdge(g.edges[i]), true
}

// Edges returns a snapshot of every edge in encounter order.
func (g *KnowledgeGraph) Edges() []domain.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]domain.Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = copyEdge(e)
	}
	return out
}

func (g *KnowledgeGraph) Stats() domain.GraphStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	confidences := make([]float64, len(g.edges))
	for i, e := range g.edges {
		confidences[i] = e.Confidence
	}
	return domain.GraphStats{
		Nodes: len(g.nodes),
		Edges: len(g.edges),
		Tiers: domain.TierCounts(confidences),
	}
}

func copyEdge(e *domain.Edge) domain.Edge {
	c := *e
	c.RecentSources = append([]string(nil), e.RecentSources...)
	c.Context = e.Context.Clone()
	return c
}

func appendBounded(list []string, v string, max int) []string {
	list = append(list, v)
	if len(list) > max {
		list = append(list[:0:0], list[len(list)-max:]...)
	}
	return list
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
