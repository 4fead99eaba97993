package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
)

const maxExperienceLimit = 1000

type LearningHandler struct {
	learningSvc *service.LearningService
}

func NewLearningHandler(learningSvc *service.LearningService) *LearningHandler {
	return &LearningHandler{learningSvc: learningSvc}
}

type learnQuoteRequest struct {
	ActorID string               `json:"actor_id"`
	Text    string               `json:"text"`
	Context domain.MarketContext `json:"context"`
}

type learnQuoteResponse struct {
	Triples  []domain.Triple `json:"triples"`
	Count    int             `json:"count"`
	Warnings []string        `json:"warnings,omitempty"`
}

// LearnQuote handles POST /v1/quotes
func (h *LearningHandler) LearnQuote(w http.ResponseWriter, r *http.Request) {
	var req learnQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ActorID == "" {
		writeError(w, http.StatusBadRequest, "actor_id is required")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	triples, err := h.learningSvc.LearnFromQuote(r.Context(), req.ActorID, req.Text, req.Context)
	if err != nil && !service.IsWarning(err) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, learnQuoteResponse{
		Triples:  triples,
		Count:    len(triples),
		Warnings: warnings(err),
	})
}

type recordOutcomeRequest struct {
	Prediction domain.Prediction `json:"prediction"`
	Outcome    domain.Outcome    `json:"outcome"`
}

type recordOutcomeResponse struct {
	Experience *domain.Experience `json:"experience"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// RecordOutcome handles POST /v1/outcomes
func (h *LearningHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var req recordOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Prediction.Action.IsValid() {
		writeError(w, http.StatusBadRequest, "prediction.action must be one of buy, sell, hold, avoid")
		return
	}

	exp, err := h.learningSvc.LearnFromOutcome(r.Context(), req.Prediction, req.Outcome)
	if err != nil && !service.IsWarning(err) {
		if errors.Is(err, service.ErrActorIDMissing) || errors.Is(err, service.ErrInvalidPerformance) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, recordOutcomeResponse{
		Experience: exp,
		Warnings:   warnings(err),
	})
}

type listExperiencesResponse struct {
	Experiences []domain.Experience `json:"experiences"`
	Count       int                 `json:"count"`
}

// ListExperiences handles GET /v1/experiences
func (h *LearningHandler) ListExperiences(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxExperienceLimit)
	}

	exps := h.learningSvc.RecentExperiences(r.URL.Query().Get("actor"), limit)
	writeJSON(w, http.StatusOK, listExperiencesResponse{
		Experiences: exps,
		Count:       len(exps),
	})
}
