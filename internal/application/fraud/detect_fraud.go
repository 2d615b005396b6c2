package fraud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fraud-risk-engine/internal/application/dto"
	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
	"fraud-risk-engine/internal/pkg/metrics"
)

// Engine scores transactions against the trained classifier
type Engine interface {
	Initialize(ctx context.Context) error
	Ready() bool
	Score(ctx context.Context, tx *transaction.Transaction, history []*transaction.Transaction) (*fraud.Decision, error)
}

// AlertPublisher is notified about every flagged transaction
type AlertPublisher interface {
	PublishFraudAlert(ctx context.Context, tx *transaction.Transaction, d *fraud.Decision) error
}

// Recorder receives scoring metrics
type Recorder interface {
	ObserveDecision(verdict string, probability float64, duration time.Duration)
	ObserveScoringError(kind string)
}

// Options tunes the use case
type Options struct {
	AnalysisTimeout  time.Duration
	MaxBatchSize     int
	BatchConcurrency int
	// LazyInit trains the classifier on the first request when it is not ready
	LazyInit bool
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		AnalysisTimeout:  5 * time.Second,
		MaxBatchSize:     100,
		BatchConcurrency: 8,
		LazyInit:         true,
	}
}

// DetectFraudUseCase scores incoming transactions and records them with their verdict
type DetectFraudUseCase struct {
	engine    Engine
	txService *transaction.Service
	publisher AlertPublisher
	recorder  Recorder
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// NewDetectFraudUseCase creates a new detect fraud use case.
// publisher and recorder may be nil.
func NewDetectFraudUseCase(
	engine Engine,
	txService *transaction.Service,
	publisher AlertPublisher,
	recorder Recorder,
	logger *zap.Logger,
	opts Options,
) *DetectFraudUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = defaults.MaxBatchSize
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaults.BatchConcurrency
	}
	return &DetectFraudUseCase{
		engine:    engine,
		txService: txService,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Execute scores one transaction, persists it with its verdict and
// publishes an alert when it is flagged
func (uc *DetectFraudUseCase) Execute(ctx context.Context, req dto.ScoreTransactionRequest) (*dto.ScoreResponse, error) {
	start := time.Now()

	tx, err := req.ToTransaction(uc.now())
	if err != nil {
		uc.observeError(metrics.ErrorKindValidation)
		return nil, err
	}

	if uc.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.AnalysisTimeout)
		defer cancel()
	}

	if uc.opts.LazyInit && !uc.engine.Ready() {
		if err := uc.engine.Initialize(ctx); err != nil {
			uc.observeError(classify(err))
			uc.logFailure("model initialization failed", tx, err)
			return nil, err
		}
	}

	velocity, err := uc.txService.CountTransactionsInWindow(ctx, tx.UserID, tx.Timestamp, transaction.VelocityWindow)
	if err != nil {
		uc.observeError(metrics.ErrorKindStore)
		uc.logFailure("failed to count recent transactions", tx, err)
		return nil, fmt.Errorf("failed to count recent transactions: %w", err)
	}
	tx.Velocity = int(velocity)

	history, err := uc.txService.ListUserTransactions(ctx, tx.UserID)
	if err != nil {
		uc.observeError(metrics.ErrorKindStore)
		uc.logFailure("failed to load transaction history", tx, err)
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}

	decision, err := uc.engine.Score(ctx, tx, history)
	if err != nil {
		uc.observeError(classify(err))
		uc.logFailure("scoring failed", tx, err)
		return nil, err
	}

	tx.ApplyVerdict(decision.IsFraud, decimal.NewFromFloat(decision.Probability), string(decision.RiskLevel), decision.Reasons)
	if err := uc.txService.RecordTransaction(ctx, tx); err != nil {
		uc.observeError(metrics.ErrorKindStore)
		uc.logFailure("failed to persist scored transaction", tx, err)
		return nil, err
	}

	if decision.IsFraud && uc.publisher != nil {
		// the verdict stands even when the alert cannot be delivered
		if err := uc.publisher.PublishFraudAlert(ctx, tx, decision); err != nil {
			uc.logFailure("failed to publish fraud alert", tx, err)
		}
	}

	elapsed := time.Since(start)
	if uc.recorder != nil {
		uc.recorder.ObserveDecision(decision.Verdict(), decision.Probability, elapsed)
	}
	uc.logger.Debug("transaction scored",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", tx.UserID.String()),
		zap.Bool("is_fraud", decision.IsFraud),
		zap.Float64("probability", decision.Probability),
		zap.Float64("threshold", decision.Threshold),
		zap.Duration("latency", elapsed),
	)

	return dto.NewScoreResponse(tx, decision, elapsed), nil
}

// ExecuteBatch scores the transactions concurrently. Item failures are
// reported in the item; only an invalid batch or a cancelled context fails
// the whole call.
func (uc *DetectFraudUseCase) ExecuteBatch(ctx context.Context, req dto.BatchScoreRequest) (*dto.BatchScoreResponse, error) {
	n := len(req.Transactions)
	if n == 0 {
		return nil, fraud.NewValidationError("transactions", "must not be empty")
	}
	if n > uc.opts.MaxBatchSize {
		return nil, fraud.NewValidationError("transactions", fmt.Sprintf("must contain at most %d items", uc.opts.MaxBatchSize))
	}

	results := make([]dto.BatchItemResult, n)

	var g errgroup.Group
	g.SetLimit(uc.opts.BatchConcurrency)
	for i := range req.Transactions {
		g.Go(func() error {
			results[i].Index = i
			res, err := uc.Execute(ctx, req.Transactions[i])
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := dto.BatchSummary{Total: n}
	var totalLatency int64
	for _, r := range results {
		switch {
		case r.Result == nil:
			summary.Failed++
		case r.Result.IsFraud:
			summary.Flagged++
			totalLatency += r.Result.LatencyMs
		default:
			summary.Legitimate++
			totalLatency += r.Result.LatencyMs
		}
	}
	if scored := summary.Flagged + summary.Legitimate; scored > 0 {
		summary.AvgLatencyMs = totalLatency / int64(scored)
	}

	return &dto.BatchScoreResponse{Results: results, Summary: summary}, nil
}

func (uc *DetectFraudUseCase) observeError(kind string) {
	if uc.recorder != nil {
		uc.recorder.ObserveScoringError(kind)
	}
}

func (uc *DetectFraudUseCase) logFailure(msg string, tx *transaction.Transaction, err error) {
	uc.logger.Warn(msg,
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", tx.UserID.String()),
		zap.Error(err),
	)
}

// classify maps an engine error onto a metrics error kind
func classify(err error) string {
	switch {
	case errors.Is(err, fraud.ErrValidation):
		return metrics.ErrorKindValidation
	case errors.Is(err, fraud.ErrNotInitialized):
		return metrics.ErrorKindNotReady
	case errors.Is(err, fraud.ErrInitialization):
		return metrics.ErrorKindInitialization
	case errors.Is(err, transaction.ErrStoreUnavailable):
		return metrics.ErrorKindStore
	default:
		return metrics.ErrorKindInternal
	}
}
