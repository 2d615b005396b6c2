package ml

import (
	"math"

	"github.com/shopspring/decimal"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
)

// FeatureExtractor implements fraud.FeatureExtractor
type FeatureExtractor struct{}

// NewFeatureExtractor creates a new feature extractor
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{}
}

// Extract validates tx and builds its model input vector
func (e *FeatureExtractor) Extract(tx *transaction.Transaction, rf fraud.RiskFactors) (fraud.FeatureVector, error) {
	if tx == nil {
		return fraud.FeatureVector{}, fraud.NewValidationError("transaction", "is required")
	}
	if !tx.Amount.IsPositive() {
		return fraud.FeatureVector{}, fraud.NewValidationError("amount", "must be positive")
	}
	if f := tx.Amount.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return fraud.FeatureVector{}, fraud.NewValidationError("amount", "must be finite")
	}
	if tx.TimeOfDay < 0 || tx.TimeOfDay > 23 {
		return fraud.FeatureVector{}, fraud.NewValidationError("time_of_day", "must be between 0 and 23")
	}
	if tx.DayOfWeek < 0 || tx.DayOfWeek > 6 {
		return fraud.FeatureVector{}, fraud.NewValidationError("day_of_week", "must be between 0 and 6")
	}

	return BuildVector(tx.Amount, tx.TimeOfDay, tx.DayOfWeek, rf), nil
}

// BuildVector lays out the normalized transaction fields and risk factors in
// schema order. The dataset generator uses it too, so training and inference
// see identical feature semantics.
func BuildVector(amount decimal.Decimal, hour, day int, rf fraud.RiskFactors) fraud.FeatureVector {
	var v fraud.FeatureVector
	v[fraud.FeatureAmount] = amount.InexactFloat64() / fraud.AmountScale
	v[fraud.FeatureTimeOfDay] = float64(hour) / 24
	v[fraud.FeatureDayOfWeek] = float64(day) / 7
	v[fraud.FeatureCategoryRisk] = rf.CategoryRisk
	v[fraud.FeatureRoundAmountRisk] = rf.RoundAmountRisk
	v[fraud.FeatureVelocityRisk] = rf.VelocityRisk
	v[fraud.FeatureMerchantRisk] = rf.MerchantRisk
	v[fraud.FeatureDeviceRisk] = rf.DeviceRisk
	v[fraud.FeatureLocationRisk] = rf.LocationRisk
	v[fraud.FeaturePatternRisk] = rf.PatternRisk
	v[fraud.FeatureAmountRisk] = rf.AmountRisk
	v[fraud.FeatureTimeRisk] = rf.TimeRisk
	return v
}
