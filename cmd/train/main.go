// Command train fits the fraud classifier once with the configured ML
// settings and prints the training report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fraud-risk-engine/internal/infrastructure/ml"
	"fraud-risk-engine/internal/pkg/config"
	"fraud-risk-engine/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	epochs := flag.Int("epochs", 0, "Override ml.epochs")
	seed := flag.Int64("seed", 0, "Override ml.seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *epochs > 0 {
		cfg.ML.Epochs = *epochs
	}
	if *seed != 0 {
		cfg.ML.Seed = *seed
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	classifier := ml.NewClassifierService(ml.Config{
		Epochs:          cfg.ML.Epochs,
		BatchSize:       cfg.ML.BatchSize,
		LearningRate:    cfg.ML.LearningRate,
		ValidationSplit: cfg.ML.ValidationSplit,
		LegitSamples:    cfg.ML.LegitSamples,
		FraudSamples:    cfg.ML.FraudSamples,
		Seed:            cfg.ML.Seed,
		InitTimeout:     cfg.ML.InitTimeout,
		ModelVersion:    cfg.ML.ModelVersion,
	}, ml.WithLogger(log))

	if err := classifier.Initialize(ctx); err != nil {
		log.Error("training failed", zap.Error(err))
		stop()
		os.Exit(1)
	}

	out := struct {
		ModelVersion string             `json:"model_version"`
		Report       *ml.TrainingReport `json:"report"`
	}{classifier.ModelVersion(), classifier.LastReport()}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error("failed to write report", zap.Error(err))
	}
}
