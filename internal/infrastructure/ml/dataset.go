package ml

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"

	"fraud-risk-engine/internal/domain/fraud"
)

const (
	// DefaultLegitSamples and DefaultFraudSamples give a 70/30 class split
	DefaultLegitSamples = 700
	DefaultFraudSamples = 300
)

// Dataset holds labeled feature vectors. Features and Labels always have equal length.
type Dataset struct {
	Features []fraud.FeatureVector
	Labels   []float64
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Positives counts fraud samples
func (d *Dataset) Positives() int {
	n := 0
	for _, y := range d.Labels {
		if y >= 0.5 {
			n++
		}
	}
	return n
}

// Shuffle permutes samples in place, keeping features and labels aligned
func (d *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(d.Len(), func(i, j int) {
		d.Features[i], d.Features[j] = d.Features[j], d.Features[i]
		d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
	})
}

// Split holds out the trailing fraction of samples for validation
func (d *Dataset) Split(validation float64) (train, val *Dataset) {
	n := d.Len()
	cut := n - int(math.Round(float64(n)*validation))
	if cut < 0 {
		cut = 0
	}
	if cut > n {
		cut = n
	}
	return &Dataset{Features: d.Features[:cut], Labels: d.Labels[:cut]},
		&Dataset{Features: d.Features[cut:], Labels: d.Labels[cut:]}
}

// Matrix returns the selected rows as a design matrix and a label column
func (d *Dataset) Matrix(rows []int) (*mat.Dense, *mat.Dense) {
	x := mat.NewDense(len(rows), fraud.FeatureCount, nil)
	y := mat.NewDense(len(rows), 1, nil)
	for i, idx := range rows {
		x.SetRow(i, d.Features[idx][:])
		y.Set(i, 0, d.Labels[idx])
	}
	return x, y
}

// DatasetGenerator produces a synthetic labeled training set.
// Not safe for concurrent use; each training run owns its generator.
type DatasetGenerator struct {
	rng *rand.Rand
}

// NewDatasetGenerator creates a generator with a fixed seed
func NewDatasetGenerator(seed int64) *DatasetGenerator {
	return &DatasetGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Reseed restarts the pseudo-random sequence
func (g *DatasetGenerator) Reseed(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
}

var nightHours = []int{22, 23, 0, 1, 2, 3, 4, 5}

// Generate returns nLegit legitimate samples followed by nFraud fraudulent ones.
// Non-positive counts contribute no samples.
func (g *DatasetGenerator) Generate(nLegit, nFraud int) *Dataset {
	nLegit = max(nLegit, 0)
	nFraud = max(nFraud, 0)

	ds := &Dataset{
		Features: make([]fraud.FeatureVector, 0, nLegit+nFraud),
		Labels:   make([]float64, 0, nLegit+nFraud),
	}
	for i := 0; i < nLegit; i++ {
		ds.Features = append(ds.Features, g.legit())
		ds.Labels = append(ds.Labels, 0)
	}
	for i := 0; i < nFraud; i++ {
		ds.Features = append(ds.Features, g.fraudulent())
		ds.Labels = append(ds.Labels, 1)
	}
	return ds
}

func (g *DatasetGenerator) legit() fraud.FeatureVector {
	amount := g.uniform(10, 500)
	if g.rng.Float64() < 0.05 {
		amount = math.Max(100, math.Round(amount/100)*100)
	}
	hour := 8 + g.rng.Intn(13)

	return g.sample(amount, hour, 0.10, fraud.RiskFactors{
		VelocityRisk: g.uniform(0, 0.3),
		MerchantRisk: g.uniform(0.1, 0.3),
		DeviceRisk:   g.uniform(0.1, 0.3),
		LocationRisk: g.uniform(0.1, 0.2),
		PatternRisk:  g.uniform(0, 0.3),
	})
}

func (g *DatasetGenerator) fraudulent() fraud.FeatureVector {
	amount := g.uniform(1000, 10000)
	if g.rng.Float64() < 0.40 {
		amount = math.Round(amount/100) * 100
	}
	hour := g.rng.Intn(24)
	if g.rng.Float64() < 0.70 {
		hour = nightHours[g.rng.Intn(len(nightHours))]
	}

	return g.sample(amount, hour, 0.60, fraud.RiskFactors{
		VelocityRisk: g.uniform(0.5, 1.0),
		MerchantRisk: g.uniform(0.5, 0.9),
		DeviceRisk:   g.uniform(0.5, 0.9),
		LocationRisk: g.uniform(0.3, 0.6),
		PatternRisk:  g.uniform(0.4, 1.0),
	})
}

// sample fills in the rule-derived factors exactly as the analyzer would
func (g *DatasetGenerator) sample(rawAmount float64, hour int, highRiskShare float64, rf fraud.RiskFactors) fraud.FeatureVector {
	amount := decimal.NewFromFloat(rawAmount).Round(2)
	if g.rng.Float64() < highRiskShare {
		rf.CategoryRisk = 1
	}
	rf.AmountRisk = fraud.AmountRisk(amount)
	rf.TimeRisk = fraud.TimeRisk(hour)
	rf.RoundAmountRisk = fraud.RoundAmountRisk(amount)
	return BuildVector(amount, hour, g.rng.Intn(7), rf.Clamp())
}

func (g *DatasetGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
