package dto

import (
	"time"

	"github.com/google/uuid"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
	"fraud-risk-engine/internal/infrastructure/ml"
)

// ScoreResponse is the outcome of scoring one transaction
type ScoreResponse struct {
	DecisionID    uuid.UUID `json:"decision_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	UserID        uuid.UUID `json:"user_id"`

	IsFraud          bool              `json:"is_fraud"`
	Verdict          string            `json:"verdict"`
	FraudProbability float64           `json:"fraud_probability"`
	Threshold        float64           `json:"threshold"`
	RiskLevel        fraud.RiskLevel   `json:"risk_level"`
	RiskFactors      []string          `json:"risk_factors"`
	Factors          fraud.RiskFactors `json:"factors"`
	Velocity         int               `json:"velocity"`

	ModelVersion string    `json:"model_version"`
	LatencyMs    int64     `json:"latency_ms"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// NewScoreResponse builds the response for a scored transaction
func NewScoreResponse(tx *transaction.Transaction, d *fraud.Decision, latency time.Duration) *ScoreResponse {
	return &ScoreResponse{
		DecisionID:       d.ID,
		TransactionID:    tx.ID,
		UserID:           tx.UserID,
		IsFraud:          d.IsFraud,
		Verdict:          d.Verdict(),
		FraudProbability: d.Probability,
		Threshold:        d.Threshold,
		RiskLevel:        d.RiskLevel,
		RiskFactors:      d.Reasons,
		Factors:          d.Factors,
		Velocity:         tx.Velocity,
		ModelVersion:     d.ModelVersion,
		LatencyMs:        latency.Milliseconds(),
		ProcessedAt:      d.ProcessedAt,
	}
}

// BatchScoreRequest holds up to the configured maximum of transactions
type BatchScoreRequest struct {
	Transactions []ScoreTransactionRequest `json:"transactions"`
}

// BatchItemResult is the outcome for one item of a batch. Exactly one of
// Result and Error is set.
type BatchItemResult struct {
	Index  int            `json:"index"`
	Result *ScoreResponse `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// BatchSummary summarizes batch scoring results
type BatchSummary struct {
	Total        int   `json:"total"`
	Flagged      int   `json:"flagged"`
	Legitimate   int   `json:"legitimate"`
	Failed       int   `json:"failed"`
	AvgLatencyMs int64 `json:"avg_latency_ms"`
}

// BatchScoreResponse contains per-item results in request order
type BatchScoreResponse struct {
	Results []BatchItemResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}

// ModelStatusResponse describes the active classifier
type ModelStatusResponse struct {
	Ready         bool               `json:"ready"`
	ModelVersion  string             `json:"model_version"`
	FeatureSchema string             `json:"feature_schema"`
	Features      []string           `json:"features"`
	LastTraining  *ml.TrainingReport `json:"last_training,omitempty"`
}

// NewModelStatusResponse builds the model status from the classifier's state
func NewModelStatusResponse(ready bool, version string, report *ml.TrainingReport) *ModelStatusResponse {
	return &ModelStatusResponse{
		Ready:         ready,
		ModelVersion:  version,
		FeatureSchema: fraud.FeatureSchemaVersion,
		Features:      fraud.FeatureNames[:],
		LastTraining:  report,
	}
}
