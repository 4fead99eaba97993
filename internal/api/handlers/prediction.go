package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
)

type PredictionHandler struct {
	predictionSvc *service.PredictionService
}

func NewPredictionHandler(predictionSvc *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionSvc: predictionSvc}
}

type predictRequest struct {
	ActorID string               `json:"actor_id"`
	Context domain.MarketContext `json:"context"`
}

// Predict handles POST /v1/predictions
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ActorID == "" {
		writeError(w, http.StatusBadRequest, "actor_id is required")
		return
	}

	writeJSON(w, http.StatusOK, h.predictionSvc.PredictInvestorBehavior(req.ActorID, req.Context))
}
