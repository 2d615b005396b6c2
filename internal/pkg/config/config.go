package config

import (
	"time"
)

// Store backends for the transaction history
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Store    StoreConfig    `mapstructure:"store"`
	Fraud    FraudConfig    `mapstructure:"fraud"`
	ML       MLConfig       `mapstructure:"ml"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka configuration. Alerts are disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers          []string      `mapstructure:"brokers"`
	FraudAlertsTopic string        `mapstructure:"fraud_alerts_topic"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
}

// Enabled reports whether alert publishing is configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// StoreConfig selects the transaction store backend
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // memory, redis or postgres

	// Circuit breaker around remote backends
	BreakerMinRequests  uint32        `mapstructure:"breaker_min_requests"`
	BreakerFailureRatio float64       `mapstructure:"breaker_failure_ratio"`
	BreakerOpenTimeout  time.Duration `mapstructure:"breaker_open_timeout"`
}

// FraudConfig holds the decision policy
type FraudConfig struct {
	// Adaptive threshold
	BaseThreshold float64 `mapstructure:"base_threshold"`
	MinThreshold  float64 `mapstructure:"min_threshold"`
	MaxThreshold  float64 `mapstructure:"max_threshold"`

	// Probability at or above which reasons are attached to legitimate verdicts
	ElevatedRiskProbability float64 `mapstructure:"elevated_risk_probability"`

	// Rule lookbacks
	VelocityWindow   time.Duration `mapstructure:"velocity_window"`
	MerchantLookback int           `mapstructure:"merchant_lookback"`
	DeviceLookback   int           `mapstructure:"device_lookback"`
	PatternLookback  int           `mapstructure:"pattern_lookback"`

	// Batch scoring
	MaxBatchSize     int `mapstructure:"max_batch_size"`
	BatchConcurrency int `mapstructure:"batch_concurrency"`

	// Per-request scoring timeout
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout"`
}

// MLConfig holds classifier training configuration
type MLConfig struct {
	ModelVersion    string        `mapstructure:"model_version"`
	Epochs          int           `mapstructure:"epochs"`
	BatchSize       int           `mapstructure:"batch_size"`
	LearningRate    float64       `mapstructure:"learning_rate"`
	ValidationSplit float64       `mapstructure:"validation_split"`
	LegitSamples    int           `mapstructure:"legit_samples"`
	FraudSamples    int           `mapstructure:"fraud_samples"`
	Seed            int64         `mapstructure:"seed"`
	InitTimeout     time.Duration `mapstructure:"init_timeout"`
	EagerInit       bool          `mapstructure:"eager_init"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "risk_engine",
			Password:        "",
			Name:            "risk_scoring",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         6379,
			Password:     "",
			DB:           0,
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			KeyPrefix:    "fraud",
		},
		Kafka: KafkaConfig{
			Brokers:          []string{},
			FraudAlertsTopic: "fraud-alerts",
			WriteTimeout:     5 * time.Second,
		},
		Store: StoreConfig{
			Backend:             StoreMemory,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
			BreakerOpenTimeout:  30 * time.Second,
		},
		Fraud: FraudConfig{
			BaseThreshold:           0.7,
			MinThreshold:            0.5,
			MaxThreshold:            0.9,
			ElevatedRiskProbability: 0.5,
			VelocityWindow:          time.Hour,
			MerchantLookback:        20,
			DeviceLookback:          10,
			PatternLookback:         10,
			MaxBatchSize:            100,
			BatchConcurrency:        8,
			AnalysisTimeout:         5 * time.Second,
		},
		ML: MLConfig{
			ModelVersion:    "mlp-1",
			Epochs:          50,
			BatchSize:       32,
			LearningRate:    0.001,
			ValidationSplit: 0.2,
			LegitSamples:    700,
			FraudSamples:    300,
			Seed:            42,
			InitTimeout:     2 * time.Minute,
			EagerInit:       true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
