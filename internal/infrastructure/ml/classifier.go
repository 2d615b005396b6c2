package ml

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fraud-risk-engine/internal/domain/fraud"
)

// Config holds classifier training settings
type Config struct {
	Epochs          int
	BatchSize       int
	LearningRate    float64
	ValidationSplit float64
	LegitSamples    int
	FraudSamples    int
	Seed            int64
	InitTimeout     time.Duration
	ModelVersion    string
}

// DefaultConfig returns the standard training settings
func DefaultConfig() Config {
	return Config{
		Epochs:          50,
		BatchSize:       32,
		LearningRate:    0.001,
		ValidationSplit: 0.2,
		LegitSamples:    DefaultLegitSamples,
		FraudSamples:    DefaultFraudSamples,
		Seed:            42,
		InitTimeout:     2 * time.Minute,
		ModelVersion:    "mlp-1",
	}
}

// DatasetSource supplies the training set for one initialization attempt
type DatasetSource func(ctx context.Context, cfg Config) (*Dataset, error)

// SyntheticSource generates the training set with a seeded DatasetGenerator
func SyntheticSource(_ context.Context, cfg Config) (*Dataset, error) {
	return NewDatasetGenerator(cfg.Seed).Generate(cfg.LegitSamples, cfg.FraudSamples), nil
}

// TrainingObserver is told about every initialization attempt
type TrainingObserver interface {
	ObserveTraining(success bool, duration time.Duration, report *TrainingReport)
}

// Option configures a ClassifierService
type Option func(*ClassifierService)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *ClassifierService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDatasetSource replaces the synthetic training data
func WithDatasetSource(source DatasetSource) Option {
	return func(s *ClassifierService) {
		if source != nil {
			s.source = source
		}
	}
}

// WithObserver reports training attempts, typically to metrics
func WithObserver(observer TrainingObserver) Option {
	return func(s *ClassifierService) {
		s.observer = observer
	}
}

const initKey = "initialize"

// ClassifierService implements fraud.Classifier. It owns one network, trained
// at most once per process and shared read-only by every Predict call.
type ClassifierService struct {
	cfg      Config
	logger   *zap.Logger
	source   DatasetSource
	observer TrainingObserver

	group singleflight.Group

	mu      sync.RWMutex
	model   *Network
	report  *TrainingReport
	version string
}

// NewClassifierService creates an untrained classifier
func NewClassifierService(cfg Config, opts ...Option) *ClassifierService {
	def := DefaultConfig()
	if cfg.InitTimeout <= 0 {
		cfg.InitTimeout = def.InitTimeout
	}
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = def.ModelVersion
	}

	s := &ClassifierService{
		cfg:    cfg,
		logger: zap.NewNop(),
		source: SyntheticSource,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize trains and caches the model unless one is already cached.
// Concurrent callers share one training run. A caller whose ctx ends stops
// waiting, but the run continues under its own InitTimeout for the others.
func (s *ClassifierService) Initialize(ctx context.Context) error {
	if s.Ready() {
		return nil
	}

	ch := s.group.DoChan(initKey, func() (interface{}, error) {
		if s.Ready() {
			return nil, nil
		}
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.InitTimeout)
		defer cancel()
		return nil, s.train(runCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ClassifierService) train(ctx context.Context) (err error) {
	start := time.Now()
	var report *TrainingReport
	defer func() {
		if s.observer != nil {
			s.observer.ObserveTraining(err == nil, time.Since(start), report)
		}
	}()

	s.logger.Info("training fraud model",
		zap.Int("legit_samples", s.cfg.LegitSamples),
		zap.Int("fraud_samples", s.cfg.FraudSamples),
		zap.Int("epochs", s.cfg.Epochs),
	)

	ds, err := s.source(ctx, s.cfg)
	if err != nil {
		return s.fail(fmt.Errorf("%w: generate dataset: %w", fraud.ErrInitialization, err))
	}
	if ds == nil || ds.Len() == 0 {
		return s.fail(fmt.Errorf("%w: %w", fraud.ErrInitialization, fraud.ErrEmptyDataset))
	}
	if len(ds.Features) != len(ds.Labels) {
		return s.fail(fmt.Errorf("%w: %d feature rows for %d labels", fraud.ErrInitialization, len(ds.Features), len(ds.Labels)))
	}

	rng := rand.New(rand.NewSource(s.cfg.Seed))
	// the generator emits classes in blocks, so shuffle before holding out validation rows
	ds.Shuffle(rng)
	trainSet, valSet := ds.Split(s.cfg.ValidationSplit)

	net := NewNetwork(DefaultArchitecture, rng)
	report, err = net.Fit(ctx, trainSet, valSet, TrainConfig{
		Epochs:       s.cfg.Epochs,
		BatchSize:    s.cfg.BatchSize,
		LearningRate: s.cfg.LearningRate,
	}, rng, s.logger)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", fraud.ErrInitialization, err))
	}

	s.mu.Lock()
	s.model = net
	s.report = report
	s.version = fmt.Sprintf("%s+features.%s", s.cfg.ModelVersion, fraud.FeatureSchemaVersion)
	s.mu.Unlock()

	s.logger.Info("fraud model trained",
		zap.String("model_version", s.ModelVersion()),
		zap.Int("train_samples", report.TrainSamples),
		zap.Float64("train_loss", report.TrainLoss),
		zap.Float64("validation_loss", report.ValidationLoss),
		zap.Float64("validation_accuracy", report.ValidationAccuracy),
		zap.Duration("duration", report.Duration),
	)
	return nil
}

func (s *ClassifierService) fail(err error) error {
	s.logger.Error("fraud model initialization failed", zap.Error(err))
	return err
}

// Predict returns the fraud probability for a feature vector
func (s *ClassifierService) Predict(features fraud.FeatureVector) (float64, error) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()

	if model == nil {
		return 0, fraud.ErrNotInitialized
	}
	return model.Predict(features), nil
}

// Ready reports whether a trained model is cached
func (s *ClassifierService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// ModelVersion returns the cached model's version, or "" before training
func (s *ClassifierService) ModelVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LastReport returns the report of the successful training run, if any
func (s *ClassifierService) LastReport() *TrainingReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return nil
	}
	r := *s.report
	return &r
}
