package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. FRAUD_SERVER_PORT
const EnvPrefix = "FRAUD"

// Load reads configuration from an optional file and environment variables.
// Values not set anywhere keep their DefaultConfig value.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()

	// Env lookups only resolve keys viper already knows about
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	// Server
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	// Database
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.name", cfg.Database.Name)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.max_open_conns", cfg.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", cfg.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", cfg.Database.ConnMaxLifetime)
	v.SetDefault("database.auto_migrate", cfg.Database.AutoMigrate)

	// Redis
	v.SetDefault("redis.host", cfg.Redis.Host)
	v.SetDefault("redis.port", cfg.Redis.Port)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.pool_size", cfg.Redis.PoolSize)
	v.SetDefault("redis.dial_timeout", cfg.Redis.DialTimeout)
	v.SetDefault("redis.read_timeout", cfg.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", cfg.Redis.WriteTimeout)
	v.SetDefault("redis.key_prefix", cfg.Redis.KeyPrefix)

	// Kafka
	v.SetDefault("kafka.brokers", cfg.Kafka.Brokers)
	v.SetDefault("kafka.fraud_alerts_topic", cfg.Kafka.FraudAlertsTopic)
	v.SetDefault("kafka.write_timeout", cfg.Kafka.WriteTimeout)

	// Store
	v.SetDefault("store.backend", cfg.Store.Backend)
	v.SetDefault("store.breaker_min_requests", cfg.Store.BreakerMinRequests)
	v.SetDefault("store.breaker_failure_ratio", cfg.Store.BreakerFailureRatio)
	v.SetDefault("store.breaker_open_timeout", cfg.Store.BreakerOpenTimeout)

	// Fraud
	v.SetDefault("fraud.base_threshold", cfg.Fraud.BaseThreshold)
	v.SetDefault("fraud.min_threshold", cfg.Fraud.MinThreshold)
	v.SetDefault("fraud.max_threshold", cfg.Fraud.MaxThreshold)
	v.SetDefault("fraud.elevated_risk_probability", cfg.Fraud.ElevatedRiskProbability)
	v.SetDefault("fraud.velocity_window", cfg.Fraud.VelocityWindow)
	v.SetDefault("fraud.merchant_lookback", cfg.Fraud.MerchantLookback)
	v.SetDefault("fraud.device_lookback", cfg.Fraud.DeviceLookback)
	v.SetDefault("fraud.pattern_lookback", cfg.Fraud.PatternLookback)
	v.SetDefault("fraud.max_batch_size", cfg.Fraud.MaxBatchSize)
	v.SetDefault("fraud.batch_concurrency", cfg.Fraud.BatchConcurrency)
	v.SetDefault("fraud.analysis_timeout", cfg.Fraud.AnalysisTimeout)

	// ML
	v.SetDefault("ml.model_version", cfg.ML.ModelVersion)
	v.SetDefault("ml.epochs", cfg.ML.Epochs)
	v.SetDefault("ml.batch_size", cfg.ML.BatchSize)
	v.SetDefault("ml.learning_rate", cfg.ML.LearningRate)
	v.SetDefault("ml.validation_split", cfg.ML.ValidationSplit)
	v.SetDefault("ml.legit_samples", cfg.ML.LegitSamples)
	v.SetDefault("ml.fraud_samples", cfg.ML.FraudSamples)
	v.SetDefault("ml.seed", cfg.ML.Seed)
	v.SetDefault("ml.init_timeout", cfg.ML.InitTimeout)
	v.SetDefault("ml.eager_init", cfg.ML.EagerInit)

	// Metrics
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)

	// Log
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
