package fraud

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fraud-risk-engine/internal/domain/transaction"
)

func TestAmountRisk(t *testing.T) {
	tests := []struct {
		amount string
		want   float64
	}{
		{"10", 0.1},
		{"500", 0.1},
		{"500.01", 0.3},
		{"1000", 0.3},
		{"1000.01", 0.6},
		{"5000", 0.6},
		{"5000.01", 1.0},
		{"9999", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountRisk(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestAmountRisk_Monotonic(t *testing.T) {
	prev := 0.0
	for cents := int64(1); cents <= 1_000_000; cents += 2500 {
		risk := AmountRisk(decimal.New(cents, -2))
		assert.GreaterOrEqual(t, risk, prev)
		prev = risk
	}
}

func TestTimeRisk(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		got := TimeRisk(hour)
		switch {
		case hour < 6:
			assert.Equal(t, 0.8, got, "hour %d", hour)
		case hour >= 22:
			assert.Equal(t, 0.6, got, "hour %d", hour)
		default:
			assert.Equal(t, 0.1, got, "hour %d", hour)
		}
	}
}

func TestCategoryRisk(t *testing.T) {
	assert.Equal(t, 1.0, CategoryRisk(transaction.CategoryCryptocurrency))
	assert.Equal(t, 1.0, CategoryRisk(transaction.CategoryGaming))
	assert.Equal(t, 0.0, CategoryRisk(transaction.CategoryGroceries))
}

func TestRoundAmountRisk(t *testing.T) {
	assert.Equal(t, 1.0, RoundAmountRisk(decimal.RequireFromString("100")))
	assert.Equal(t, 1.0, RoundAmountRisk(decimal.RequireFromString("2500.00")))
	assert.Equal(t, 0.0, RoundAmountRisk(decimal.RequireFromString("50")))
	assert.Equal(t, 0.0, RoundAmountRisk(decimal.RequireFromString("100.01")))
}

func TestLocationRisk(t *testing.T) {
	assert.Equal(t, 0.5, LocationRisk(""))
	assert.Equal(t, 0.5, LocationRisk("unknown"))
	assert.Equal(t, 0.5, LocationRisk(" Unknown "))
	assert.Equal(t, 0.1, LocationRisk("Berlin, DE"))
}

func TestRiskFactors_Clamp(t *testing.T) {
	rf := RiskFactors{
		AmountRisk:   1.7,
		TimeRisk:     -0.2,
		PatternRisk:  math.NaN(),
		VelocityRisk: 0.4,
	}.Clamp()

	assert.Equal(t, 1.0, rf.AmountRisk)
	assert.Equal(t, 0.0, rf.TimeRisk)
	assert.Equal(t, 0.0, rf.PatternRisk)
	assert.Equal(t, 0.4, rf.VelocityRisk)
}
