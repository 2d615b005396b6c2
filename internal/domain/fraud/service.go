package fraud

import (
	"context"
	"fmt"
	"time"

	"fraud-risk-engine/internal/domain/transaction"
)

// DefaultElevatedRiskProbability is the probability at or above which reasons are
// attached even when the transaction is not flagged
const DefaultElevatedRiskProbability = 0.5

// Service is the risk-scoring engine. It holds no per-call state; the only
// shared resource is the classifier's cached model.
type Service struct {
	analyzer   RiskAnalyzer
	extractor  FeatureExtractor
	classifier Classifier

	policy   ThresholdPolicy
	elevated float64
}

// NewService creates the scoring engine with the default threshold policy
func NewService(analyzer RiskAnalyzer, extractor FeatureExtractor, classifier Classifier) *Service {
	return &Service{
		analyzer:   analyzer,
		extractor:  extractor,
		classifier: classifier,
		policy:     DefaultThresholdPolicy(),
		elevated:   DefaultElevatedRiskProbability,
	}
}

// SetThresholdPolicy replaces the threshold policy
func (s *Service) SetThresholdPolicy(policy ThresholdPolicy) {
	s.policy = policy
}

// SetElevatedRiskProbability changes when reasons are attached to unflagged decisions
func (s *Service) SetElevatedRiskProbability(p float64) {
	s.elevated = p
}

// Initialize trains the classifier if it has not been trained yet
func (s *Service) Initialize(ctx context.Context) error {
	return s.classifier.Initialize(ctx)
}

// Ready reports whether the engine can score
func (s *Service) Ready() bool {
	return s.classifier.Ready()
}

// ModelVersion identifies the model used for scoring
func (s *Service) ModelVersion() string {
	return s.classifier.ModelVersion()
}

// Score produces a decision for tx given the user's prior transactions.
// history is snapshotted once, before any risk factor is computed.
func (s *Service) Score(ctx context.Context, tx *transaction.Transaction, history []*transaction.Transaction) (*Decision, error) {
	start := time.Now()

	if tx == nil {
		return nil, NewValidationError("transaction", "is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := transaction.NewHistory(history)
	rf := s.analyzer.Analyze(tx, snapshot).Clamp()

	features, err := s.extractor.Extract(tx, rf)
	if err != nil {
		return nil, err
	}

	raw, err := s.classifier.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("failed to predict: %w", err)
	}

	threshold := s.policy.Threshold(tx, rf)

	decision := NewDecision(tx.ID, tx.UserID)
	decision.IsFraud = raw > threshold
	decision.Probability = CapProbability(raw)
	decision.Threshold = threshold
	decision.Factors = rf
	decision.RiskLevel = RiskLevelFor(decision.Probability)
	decision.ModelVersion = s.classifier.ModelVersion()

	if decision.IsFraud || decision.Probability >= s.elevated {
		decision.Reasons = Explain(tx, rf)
	}

	decision.ProcessedAt = time.Now()
	decision.LatencyMs = time.Since(start).Milliseconds()
	return decision, nil
}
