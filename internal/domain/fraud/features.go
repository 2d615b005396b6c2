package fraud

// FeatureSchemaVersion identifies the layout of FeatureVector.
// Changing the order or length of the vector requires retraining and a new version.
const FeatureSchemaVersion = "v1"

// FeatureCount is the fixed length of a feature vector
const FeatureCount = 12

// Feature vector positions
const (
	FeatureAmount = iota
	FeatureTimeOfDay
	FeatureDayOfWeek
	FeatureCategoryRisk
	FeatureRoundAmountRisk
	FeatureVelocityRisk
	FeatureMerchantRisk
	FeatureDeviceRisk
	FeatureLocationRisk
	FeaturePatternRisk
	FeatureAmountRisk
	FeatureTimeRisk
)

// AmountScale normalizes the raw amount into roughly [0,1]
const AmountScale = 10000.0

// FeatureNames lists the features in vector order
var FeatureNames = [FeatureCount]string{
	"amount",
	"time_of_day",
	"day_of_week",
	"category_risk",
	"round_amount_risk",
	"velocity_risk",
	"merchant_risk",
	"device_risk",
	"location_risk",
	"pattern_risk",
	"amount_risk",
	"time_risk",
}

// FeatureVector is the classifier input: three normalized transaction fields
// followed by the nine risk factors
type FeatureVector [FeatureCount]float64

// Slice returns the vector as a slice, for numeric backends that want one
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}
