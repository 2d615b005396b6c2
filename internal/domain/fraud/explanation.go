package fraud

import (
	"fraud-risk-engine/internal/domain/transaction"
)

// Reasons rendered by Explain
const (
	ReasonHighAmount          = "High transaction amount"
	ReasonUnusualHours        = "Transaction at unusual hours"
	ReasonLateNight           = "Late night transaction"
	ReasonHighRiskCategory    = "High-risk transaction category"
	ReasonRoundAmount         = "Suspicious round amount"
	ReasonHighVelocity        = "High transaction velocity"
	ReasonUnfamiliarMerchant  = "Unfamiliar merchant"
	ReasonUnrecognizedDevice  = "Unrecognized device"
	ReasonBehavioralDeviation = "Deviation from usual spending behavior"
	ReasonModelOnly           = "Flagged by ML model based on complex pattern analysis"
)

// Explain lists the heuristics that fired, highest priority first.
// The result always has at least one entry.
func Explain(tx *transaction.Transaction, rf RiskFactors) []string {
	reasons := make([]string, 0, 4)

	if tx.Amount.GreaterThan(amountCritical) {
		reasons = append(reasons, ReasonHighAmount)
	}

	switch {
	case tx.TimeOfDay >= 0 && tx.TimeOfDay < 6:
		reasons = append(reasons, ReasonUnusualHours)
	case tx.TimeOfDay >= 22:
		reasons = append(reasons, ReasonLateNight)
	}

	if rf.CategoryRisk == 1 {
		reasons = append(reasons, ReasonHighRiskCategory)
	}
	if rf.RoundAmountRisk == 1 && tx.Amount.GreaterThanOrEqual(smallSpend) {
		reasons = append(reasons, ReasonRoundAmount)
	}
	if rf.VelocityRisk > 0.7 {
		reasons = append(reasons, ReasonHighVelocity)
	}
	if rf.MerchantRisk > 0.5 {
		reasons = append(reasons, ReasonUnfamiliarMerchant)
	}
	if rf.DeviceRisk > 0.5 {
		reasons = append(reasons, ReasonUnrecognizedDevice)
	}
	if rf.PatternRisk > 0.5 {
		reasons = append(reasons, ReasonBehavioralDeviation)
	}

	if len(reasons) == 0 {
		return []string{ReasonModelOnly}
	}
	return reasons
}
