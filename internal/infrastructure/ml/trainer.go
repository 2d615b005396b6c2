package ml

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"fraud-risk-engine/internal/domain/fraud"
)

// TrainConfig controls one fit
type TrainConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	LogEvery     int
}

// TrainingReport summarizes a completed fit
type TrainingReport struct {
	Epochs             int           `json:"epochs"`
	TrainSamples       int           `json:"train_samples"`
	ValidationSamples  int           `json:"validation_samples"`
	TrainLoss          float64       `json:"train_loss"`
	TrainAccuracy      float64       `json:"train_accuracy"`
	ValidationLoss     float64       `json:"validation_loss"`
	ValidationAccuracy float64       `json:"validation_accuracy"`
	Duration           time.Duration `json:"duration"`
	CompletedAt        time.Time     `json:"completed_at"`
}

// Fit trains the network with shuffled mini-batches and Adam.
// ctx is checked between batches; cancellation aborts the fit.
func (n *Network) Fit(ctx context.Context, train, val *Dataset, cfg TrainConfig, rng *rand.Rand, logger *zap.Logger) (*TrainingReport, error) {
	if train.Len() == 0 {
		return nil, fraud.ErrEmptyDataset
	}
	if cfg.Epochs <= 0 || cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid training config: epochs=%d batch_size=%d", cfg.Epochs, cfg.BatchSize)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logEvery := cfg.LogEvery
	if logEvery <= 0 {
		logEvery = 10
	}

	start := time.Now()
	opt := newAdam(n, cfg.LearningRate)
	order := make([]int, train.Len())
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		for lo := 0; lo < len(order); lo += cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("training interrupted at epoch %d: %w", epoch, err)
			}
			hi := min(lo+cfg.BatchSize, len(order))
			x, y := train.Matrix(order[lo:hi])
			p := n.forwardTrain(x, rng)
			opt.apply(n, n.backward(p, y))
		}

		if epoch%logEvery == 0 || epoch == cfg.Epochs {
			loss, acc := n.evaluate(train)
			logger.Debug("training progress",
				zap.Int("epoch", epoch),
				zap.Int("epochs", cfg.Epochs),
				zap.Float64("loss", loss),
				zap.Float64("accuracy", acc),
			)
		}
	}

	report := &TrainingReport{
		Epochs:            cfg.Epochs,
		TrainSamples:      train.Len(),
		ValidationSamples: val.Len(),
		CompletedAt:       time.Now(),
	}
	report.TrainLoss, report.TrainAccuracy = n.evaluate(train)
	report.ValidationLoss, report.ValidationAccuracy = n.evaluate(val)
	report.Duration = time.Since(start)
	return report, nil
}
