package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"fraud-risk-engine/internal/application/dto"
)

// FraudScorer is the application use case behind the scoring endpoints
type FraudScorer interface {
	Execute(ctx context.Context, req dto.ScoreTransactionRequest) (*dto.ScoreResponse, error)
	ExecuteBatch(ctx context.Context, req dto.BatchScoreRequest) (*dto.BatchScoreResponse, error)
}

// FraudHandler handles fraud scoring requests
type FraudHandler struct {
	scorer FraudScorer
	logger *zap.Logger
}

// NewFraudHandler creates a new fraud handler
func NewFraudHandler(scorer FraudScorer, logger *zap.Logger) *FraudHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FraudHandler{scorer: scorer, logger: logger}
}

// Score handles POST /api/v1/fraud/score
func (h *FraudHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.scorer.Execute(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ScoreBatch handles POST /api/v1/fraud/score/batch
func (h *FraudHandler) ScoreBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.scorer.ExecuteBatch(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
