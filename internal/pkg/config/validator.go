package config

import (
	"errors"
	"fmt"
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	switch c.Store.Backend {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.BreakerFailureRatio <= 0 || c.Store.BreakerFailureRatio > 1 {
		return errors.New("breaker_failure_ratio must be in (0, 1]")
	}

	f := c.Fraud
	for name, value := range map[string]float64{
		"base_threshold":            f.BaseThreshold,
		"min_threshold":             f.MinThreshold,
		"max_threshold":             f.MaxThreshold,
		"elevated_risk_probability": f.ElevatedRiskProbability,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if f.MinThreshold > f.BaseThreshold {
		return errors.New("min_threshold must not exceed base_threshold")
	}
	if f.BaseThreshold > f.MaxThreshold {
		return errors.New("base_threshold must not exceed max_threshold")
	}
	if f.VelocityWindow <= 0 {
		return errors.New("velocity_window must be positive")
	}
	if f.MaxBatchSize <= 0 || f.BatchConcurrency <= 0 {
		return errors.New("max_batch_size and batch_concurrency must be positive")
	}

	m := c.ML
	if m.Epochs <= 0 {
		return errors.New("ml epochs must be positive")
	}
	if m.BatchSize <= 0 {
		return errors.New("ml batch_size must be positive")
	}
	if m.LearningRate <= 0 {
		return errors.New("ml learning_rate must be positive")
	}
	if m.ValidationSplit < 0 || m.ValidationSplit >= 1 {
		return errors.New("ml validation_split must be in [0, 1)")
	}
	if m.LegitSamples < 0 || m.FraudSamples < 0 {
		return errors.New("ml sample counts must not be negative")
	}
	if m.InitTimeout <= 0 {
		return errors.New("ml init_timeout must be positive")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
