package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
	"github.com/go-chi/chi/v5"
)

type GraphHandler struct {
	graph       *graph.KnowledgeGraph
	decaySvc    *service.DecayService
	learningSvc *service.LearningService
}

func NewGraphHandler(g *graph.KnowledgeGraph, decaySvc *service.DecayService, learningSvc *service.LearningService) *GraphHandler {
	return &GraphHandler{
		graph:       g,
		decaySvc:    decaySvc,
		learningSvc: learningSvc,
	}
}

type relationshipResponse struct {
	domain.Relationship
	Tier       domain.ConfidenceTier `json:"tier"`
	TierReason string                `json:"tier_reason"`
}

type getRelationshipsResponse struct {
	Actor         string                 `json:"actor"`
	Relationships []relationshipResponse `json:"relationships"`
	Count         int                    `json:"count"`
}

// GetRelationships handles GET /v1/actors/{actor}/relationships
func (h *GraphHandler) GetRelationships(w http.ResponseWriter, r *http.Request) {
	actor := chi.URLParam(r, "actor")

	tier := r.URL.Query().Get("tier")
	if tier != "" && !domain.ValidTier(tier) {
		writeError(w, http.StatusBadRequest, "tier must be one of strong, moderate, weak, faded")
		return
	}

	rels := h.graph.GetRelationships(actor, r.URL.Query().Get("predicate"))
	out := make([]relationshipResponse, 0, len(rels))
	for _, rel := range rels {
		t := domain.ComputeTier(rel.Confidence)
		if tier != "" && t != domain.ConfidenceTier(tier) {
			continue
		}
		out = append(out, relationshipResponse{
			Relationship: rel,
			Tier:         t,
			TierReason:   domain.TierReason(rel.Confidence),
		})
	}

	writeJSON(w, http.StatusOK, getRelationshipsResponse{
		Actor:         actor,
		Relationships: out,
		Count:         len(out),
	})
}

type findSimilarRequest struct {
	Context domain.MarketContext `json:"context"`
	TopK    int                  `json:"top_k"`
}

type findSimilarResponse struct {
	Situations []domain.SimilarSituation `json:"situations"`
	Count      int                       `json:"count"`
}

// FindSimilar handles POST /v1/situations/similar
func (h *GraphHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req findSimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	found := h.graph.FindSimilarSituations(req.Context, req.TopK)
	if found == nil {
		found = []domain.SimilarSituation{}
	}

	writeJSON(w, http.StatusOK, findSimilarResponse{
		Situations: found,
		Count:      len(found),
	})
}

// TriggerDecay handles POST /v1/graph/decay
func (h *GraphHandler) TriggerDecay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.decaySvc.RunDecay())
}

type statsResponse struct {
	*service.LearningStats
	Warnings []string `json:"warnings,omitempty"`
}

// Stats handles GET /v1/graph/stats
func (h *GraphHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.learningSvc.Stats(r.Context())
	writeJSON(w, http.StatusOK, statsResponse{
		LearningStats: stats,
		Warnings:      warnings(err),
	})
}
