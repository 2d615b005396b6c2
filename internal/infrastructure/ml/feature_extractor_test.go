package ml

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
)

func sampleTx(amount string) *transaction.Transaction {
	ts := time.Date(2024, 8, 14, 21, 0, 0, 0, time.UTC) // Wednesday
	return transaction.NewTransaction(uuid.New(), decimal.RequireFromString(amount), ts, "Gadget World", transaction.CategoryElectronics)
}

func TestFeatureExtractor_Extract(t *testing.T) {
	rf := fraud.RiskFactors{
		AmountRisk: 0.3, TimeRisk: 0.1, CategoryRisk: 1, RoundAmountRisk: 0,
		VelocityRisk: 0.2, MerchantRisk: 0.7, DeviceRisk: 0.6, LocationRisk: 0.1, PatternRisk: 0.5,
	}

	v, err := NewFeatureExtractor().Extract(sampleTx("750"), rf)
	require.NoError(t, err)

	assert.InDelta(t, 0.075, v[fraud.FeatureAmount], 1e-12)
	assert.InDelta(t, 21.0/24, v[fraud.FeatureTimeOfDay], 1e-12)
	assert.InDelta(t, 3.0/7, v[fraud.FeatureDayOfWeek], 1e-12)
	assert.Equal(t, 1.0, v[fraud.FeatureCategoryRisk])
	assert.Equal(t, 0.0, v[fraud.FeatureRoundAmountRisk])
	assert.Equal(t, 0.2, v[fraud.FeatureVelocityRisk])
	assert.Equal(t, 0.7, v[fraud.FeatureMerchantRisk])
	assert.Equal(t, 0.6, v[fraud.FeatureDeviceRisk])
	assert.Equal(t, 0.1, v[fraud.FeatureLocationRisk])
	assert.Equal(t, 0.5, v[fraud.FeaturePatternRisk])
	assert.Equal(t, 0.3, v[fraud.FeatureAmountRisk])
	assert.Equal(t, 0.1, v[fraud.FeatureTimeRisk])
}

func TestFeatureExtractor_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*transaction.Transaction)
		field  string
	}{
		{"zero amount", func(tx *transaction.Transaction) { tx.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(tx *transaction.Transaction) { tx.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"non-finite amount", func(tx *transaction.Transaction) { tx.Amount = decimal.New(1, 400) }, "amount"},
		{"hour too large", func(tx *transaction.Transaction) { tx.TimeOfDay = 24 }, "time_of_day"},
		{"negative hour", func(tx *transaction.Transaction) { tx.TimeOfDay = -1 }, "time_of_day"},
		{"day too large", func(tx *transaction.Transaction) { tx.DayOfWeek = 7 }, "day_of_week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := sampleTx("10")
			tt.mutate(tx)

			_, err := NewFeatureExtractor().Extract(tx, fraud.RiskFactors{})
			require.Error(t, err)
			assert.ErrorIs(t, err, fraud.ErrValidation)

			var verr *fraud.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFeatureExtractor_Deterministic(t *testing.T) {
	tx := sampleTx("123.45")
	rf := fraud.RiskFactors{AmountRisk: 0.1, PatternRisk: 0.3}
	e := NewFeatureExtractor()

	a, err := e.Extract(tx, rf)
	require.NoError(t, err)
	b, err := e.Extract(tx, rf)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
