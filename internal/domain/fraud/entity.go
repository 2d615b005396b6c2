package fraud

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel represents the severity of fraud risk
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// RiskLevelFor buckets a probability into a risk level
func RiskLevelFor(probability float64) RiskLevel {
	switch {
	case probability >= 0.80:
		return RiskLevelCritical
	case probability >= 0.60:
		return RiskLevelHigh
	case probability >= 0.30:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// Decision is the outcome of scoring one transaction.
// It is produced fresh per call; the caller owns persistence.
type Decision struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	UserID        uuid.UUID `json:"user_id"`

	IsFraud     bool        `json:"is_fraud"`
	Probability float64     `json:"probability"` // capped at 0.99
	Threshold   float64     `json:"threshold"`
	Reasons     []string    `json:"risk_factors"`
	Factors     RiskFactors `json:"factors"`
	RiskLevel   RiskLevel   `json:"risk_level"`

	ModelVersion string    `json:"model_version"`
	ProcessedAt  time.Time `json:"processed_at"`
	LatencyMs    int64     `json:"latency_ms"`
}

// NewDecision creates a decision for a transaction
func NewDecision(transactionID, userID uuid.UUID) *Decision {
	return &Decision{
		ID:            uuid.New(),
		TransactionID: transactionID,
		UserID:        userID,
		Reasons:       make([]string, 0),
		ProcessedAt:   time.Now(),
	}
}

// Verdict returns "fraud" or "legitimate"
func (d *Decision) Verdict() string {
	if d.IsFraud {
		return "fraud"
	}
	return "legitimate"
}
