package fraud

import (
	"context"

	"fraud-risk-engine/internal/domain/transaction"
)

// RiskAnalyzer computes heuristic risk factors from a transaction and a history snapshot
type RiskAnalyzer interface {
	Analyze(tx *transaction.Transaction, history transaction.History) RiskFactors
}

// FeatureExtractor builds the classifier input vector
type FeatureExtractor interface {
	Extract(tx *transaction.Transaction, rf RiskFactors) (FeatureVector, error)
}

// Classifier is a trainable probability model over feature vectors
type Classifier interface {
	// Initialize trains and caches the model once. Safe to call concurrently.
	Initialize(ctx context.Context) error

	// Predict returns a fraud probability in [0,1], or ErrNotInitialized
	Predict(features FeatureVector) (float64, error)

	// Ready reports whether a trained model is cached
	Ready() bool

	// ModelVersion identifies the cached model
	ModelVersion() string
}
