package fraud

import (
	"math"

	"github.com/shopspring/decimal"

	"fraud-risk-engine/internal/domain/transaction"
)

// ProbabilityCap is the highest probability ever reported to a caller
const ProbabilityCap = 0.99

// ThresholdPolicy derives the per-transaction probability cutoff.
// Adjustments are summed in decimal so results such as 0.8 or 0.5 are exact.
type ThresholdPolicy struct {
	Base decimal.Decimal
	Min  decimal.Decimal
	Max  decimal.Decimal
}

var (
	stepLarge  = decimal.RequireFromString("0.1")
	stepSmall  = decimal.RequireFromString("0.05")
	stepRapid  = decimal.RequireFromString("0.15")
	smallSpend = decimal.NewFromInt(100)
)

// DefaultThresholdPolicy starts at 0.7 and clamps to [0.5, 0.9]
func DefaultThresholdPolicy() ThresholdPolicy {
	return ThresholdPolicy{
		Base: decimal.RequireFromString("0.7"),
		Min:  decimal.RequireFromString("0.5"),
		Max:  decimal.RequireFromString("0.9"),
	}
}

// NewThresholdPolicy builds a policy from configured float values
func NewThresholdPolicy(base, minimum, maximum float64) ThresholdPolicy {
	return ThresholdPolicy{
		Base: decimal.NewFromFloat(base),
		Min:  decimal.NewFromFloat(minimum),
		Max:  decimal.NewFromFloat(maximum),
	}
}

// Threshold returns the cutoff for tx. Strong risk signals lower it so the
// transaction is easier to flag; small or familiar spending raises it.
func (p ThresholdPolicy) Threshold(tx *transaction.Transaction, rf RiskFactors) float64 {
	t := p.Base

	if tx.Amount.GreaterThan(amountCritical) {
		t = t.Sub(stepLarge)
	}
	if rf.CategoryRisk == 1 {
		t = t.Sub(stepLarge)
	}
	if rf.VelocityRisk > 0.7 {
		t = t.Sub(stepRapid)
	}
	if rf.TimeRisk > 0.6 {
		t = t.Sub(stepLarge)
	}

	if tx.Amount.LessThan(smallSpend) {
		t = t.Add(stepLarge)
	}
	if rf.MerchantRisk < 0.3 {
		t = t.Add(stepSmall)
	}
	if rf.DeviceRisk < 0.3 {
		t = t.Add(stepSmall)
	}

	if t.LessThan(p.Min) {
		t = p.Min
	}
	if t.GreaterThan(p.Max) {
		t = p.Max
	}
	return t.InexactFloat64()
}

// CapProbability bounds a raw model probability to [0, ProbabilityCap]
func CapProbability(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > ProbabilityCap {
		return ProbabilityCap
	}
	return p
}
