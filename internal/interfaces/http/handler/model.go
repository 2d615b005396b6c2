package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"fraud-risk-engine/internal/application/dto"
	"fraud-risk-engine/internal/infrastructure/ml"
)

// Model is the trained classifier as seen by the admin endpoints
type Model interface {
	Initialize(ctx context.Context) error
	Ready() bool
	ModelVersion() string
	LastReport() *ml.TrainingReport
}

// ModelHandler exposes classifier status and training
type ModelHandler struct {
	model  Model
	logger *zap.Logger
}

// NewModelHandler creates a new model handler
func NewModelHandler(model Model, logger *zap.Logger) *ModelHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelHandler{model: model, logger: logger}
}

// Status handles GET /api/v1/model
func (h *ModelHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

// Initialize handles POST /api/v1/model/initialize. It returns once the
// model is trained; a model that is already trained is left as is.
func (h *ModelHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	if err := h.model.Initialize(r.Context()); err != nil {
		h.logger.Error("model initialization request failed", zap.Error(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.status())
}

func (h *ModelHandler) status() *dto.ModelStatusResponse {
	return dto.NewModelStatusResponse(h.model.Ready(), h.model.ModelVersion(), h.model.LastReport())
}
