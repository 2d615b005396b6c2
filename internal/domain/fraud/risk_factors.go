package fraud

import (
	"math"

	"github.com/shopspring/decimal"

	"fraud-risk-engine/internal/domain/transaction"
)

// RiskFactors holds the nine interpretable heuristic scores for one transaction.
// Every field is in [0,1].
type RiskFactors struct {
	AmountRisk      float64 `json:"amount_risk"`
	TimeRisk        float64 `json:"time_risk"`
	CategoryRisk    float64 `json:"category_risk"`
	RoundAmountRisk float64 `json:"round_amount_risk"`
	VelocityRisk    float64 `json:"velocity_risk"`
	MerchantRisk    float64 `json:"merchant_risk"`
	DeviceRisk      float64 `json:"device_risk"`
	LocationRisk    float64 `json:"location_risk"`
	PatternRisk     float64 `json:"pattern_risk"`
}

// Clamp returns a copy with every field forced into [0,1]. NaN becomes 0.
func (rf RiskFactors) Clamp() RiskFactors {
	return RiskFactors{
		AmountRisk:      clampUnit(rf.AmountRisk),
		TimeRisk:        clampUnit(rf.TimeRisk),
		CategoryRisk:    clampUnit(rf.CategoryRisk),
		RoundAmountRisk: clampUnit(rf.RoundAmountRisk),
		VelocityRisk:    clampUnit(rf.VelocityRisk),
		MerchantRisk:    clampUnit(rf.MerchantRisk),
		DeviceRisk:      clampUnit(rf.DeviceRisk),
		LocationRisk:    clampUnit(rf.LocationRisk),
		PatternRisk:     clampUnit(rf.PatternRisk),
	}
}

// Values returns the factors in feature vector order
func (rf RiskFactors) Values() [9]float64 {
	return [9]float64{
		rf.CategoryRisk,
		rf.RoundAmountRisk,
		rf.VelocityRisk,
		rf.MerchantRisk,
		rf.DeviceRisk,
		rf.LocationRisk,
		rf.PatternRisk,
		rf.AmountRisk,
		rf.TimeRisk,
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var (
	amountCritical = decimal.NewFromInt(5000)
	amountHigh     = decimal.NewFromInt(1000)
	amountElevated = decimal.NewFromInt(500)
	roundUnit      = decimal.NewFromInt(100)
)

// AmountRisk scores the raw amount in steps at 500, 1000 and 5000
func AmountRisk(amount decimal.Decimal) float64 {
	switch {
	case amount.GreaterThan(amountCritical):
		return 1.0
	case amount.GreaterThan(amountHigh):
		return 0.6
	case amount.GreaterThan(amountElevated):
		return 0.3
	default:
		return 0.1
	}
}

// TimeRisk scores the hour of day. Early morning is riskier than late night.
func TimeRisk(hour int) float64 {
	switch {
	case hour >= 0 && hour < 6:
		return 0.8
	case hour >= 22:
		return 0.6
	default:
		return 0.1
	}
}

// CategoryRisk is 1 for the cash-out categories and 0 otherwise
func CategoryRisk(category transaction.Category) float64 {
	if category.IsHighRisk() {
		return 1.0
	}
	return 0
}

// RoundAmountRisk is 1 when the amount is an exact multiple of 100
func RoundAmountRisk(amount decimal.Decimal) float64 {
	if amount.Mod(roundUnit).IsZero() {
		return 1.0
	}
	return 0
}

// LocationRisk is 0.5 for an unresolved location and 0.1 otherwise
func LocationRisk(location string) float64 {
	if transaction.IsUnresolvedLocation(location) {
		return 0.5
	}
	return 0.1
}
