package rules

import (
	"time"

	"github.com/shopspring/decimal"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
)

// Config controls the history windows the analyzer looks at
type Config struct {
	MerchantLookback int           // most recent entries checked for a known merchant
	DeviceLookback   int           // most recent entries checked for a known device
	PatternLookback  int           // most recent entries used for the behavioral baseline
	VelocityWindow   time.Duration // trailing window counted for velocity
	VelocityCap      int           // count at which velocity risk saturates
}

// DefaultConfig returns the standard analyzer windows
func DefaultConfig() Config {
	return Config{
		MerchantLookback: 20,
		DeviceLookback:   10,
		PatternLookback:  10,
		VelocityWindow:   time.Hour,
		VelocityCap:      3,
	}
}

const (
	familiarMerchantRisk   = 0.1
	unfamiliarMerchantRisk = 0.7
	familiarDeviceRisk     = 0.1
	unfamiliarDeviceRisk   = 0.6
	newUserPatternRisk     = 0.3
)

var amountDeviationLimit = decimal.NewFromInt(5)

// Analyzer implements fraud.RiskAnalyzer.
// It is stateless and safe for concurrent use.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates a risk factor analyzer
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.MerchantLookback <= 0 {
		cfg.MerchantLookback = def.MerchantLookback
	}
	if cfg.DeviceLookback <= 0 {
		cfg.DeviceLookback = def.DeviceLookback
	}
	if cfg.PatternLookback <= 0 {
		cfg.PatternLookback = def.PatternLookback
	}
	if cfg.VelocityWindow <= 0 {
		cfg.VelocityWindow = def.VelocityWindow
	}
	if cfg.VelocityCap <= 0 {
		cfg.VelocityCap = def.VelocityCap
	}
	return &Analyzer{cfg: cfg}
}

// Analyze computes all nine risk factors for tx against one history snapshot
func (a *Analyzer) Analyze(tx *transaction.Transaction, history transaction.History) fraud.RiskFactors {
	rf := fraud.RiskFactors{
		AmountRisk:      fraud.AmountRisk(tx.Amount),
		TimeRisk:        fraud.TimeRisk(tx.TimeOfDay),
		CategoryRisk:    fraud.CategoryRisk(tx.Category),
		RoundAmountRisk: fraud.RoundAmountRisk(tx.Amount),
		VelocityRisk:    a.velocityRisk(tx, history),
		MerchantRisk:    a.merchantRisk(tx, history),
		DeviceRisk:      a.deviceRisk(tx, history),
		LocationRisk:    fraud.LocationRisk(tx.Location),
		PatternRisk:     a.patternRisk(tx, history),
	}
	return rf.Clamp()
}

// velocityRisk counts history inside the trailing window ending at the
// transaction's own timestamp, saturating at VelocityCap
func (a *Analyzer) velocityRisk(tx *transaction.Transaction, history transaction.History) float64 {
	count := len(history.Within(tx.Timestamp, a.cfg.VelocityWindow))
	if count > a.cfg.VelocityCap {
		count = a.cfg.VelocityCap
	}
	return float64(count) / float64(a.cfg.VelocityCap)
}

func (a *Analyzer) merchantRisk(tx *transaction.Transaction, history transaction.History) float64 {
	for _, prev := range history.Last(a.cfg.MerchantLookback) {
		if prev.Merchant == tx.Merchant {
			return familiarMerchantRisk
		}
	}
	return unfamiliarMerchantRisk
}

func (a *Analyzer) deviceRisk(tx *transaction.Transaction, history transaction.History) float64 {
	for _, prev := range history.Last(a.cfg.DeviceLookback) {
		if prev.DeviceID == tx.DeviceID {
			return familiarDeviceRisk
		}
	}
	return unfamiliarDeviceRisk
}

// patternRisk compares tx with the user's recent baseline: a large amount
// deviation, an hour never seen, or a category never seen each add risk
func (a *Analyzer) patternRisk(tx *transaction.Transaction, history transaction.History) float64 {
	if history.IsEmpty() {
		return newUserPatternRisk
	}

	recent := history.Last(a.cfg.PatternLookback)
	total := decimal.Zero
	hours := make(map[int]struct{}, len(recent))
	categories := make(map[transaction.Category]struct{}, len(recent))
	for _, prev := range recent {
		total = total.Add(prev.Amount)
		hours[prev.TimeOfDay] = struct{}{}
		categories[prev.Category] = struct{}{}
	}

	risk := 0.0

	mean := total.Div(decimal.NewFromInt(int64(len(recent))))
	if mean.IsPositive() {
		deviation := tx.Amount.Sub(mean).Abs().Div(mean)
		if deviation.GreaterThan(amountDeviationLimit) {
			risk += 0.4
		}
	}
	if _, seen := hours[tx.TimeOfDay]; !seen {
		risk += 0.3
	}
	if _, seen := categories[tx.Category]; !seen {
		risk += 0.2
	}

	if risk > 1 {
		risk = 1
	}
	return risk
}
