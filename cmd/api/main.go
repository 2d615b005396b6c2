package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	fraudapp "fraud-risk-engine/internal/application/fraud"
	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
	"fraud-risk-engine/internal/infrastructure/breaker"
	"fraud-risk-engine/internal/infrastructure/cache/redis"
	"fraud-risk-engine/internal/infrastructure/database/memory"
	"fraud-risk-engine/internal/infrastructure/database/postgres"
	"fraud-risk-engine/internal/infrastructure/http/router"
	"fraud-risk-engine/internal/infrastructure/messaging/kafka"
	"fraud-risk-engine/internal/infrastructure/ml"
	"fraud-risk-engine/internal/infrastructure/rules"
	"fraud-risk-engine/internal/interfaces/http/handler"
	"fraud-risk-engine/internal/pkg/config"
	"fraud-risk-engine/internal/pkg/logger"
	"fraud-risk-engine/internal/pkg/metrics"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("fraud risk engine stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting fraud risk engine",
		zap.String("version", version),
		zap.String("store", cfg.Store.Backend),
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
	)

	collector := metrics.NewCollector()

	// Transaction store
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	txService := transaction.NewService(st.repo)

	// Scoring engine
	classifier := ml.NewClassifierService(classifierConfig(cfg.ML),
		ml.WithLogger(log.Named("classifier")),
		ml.WithObserver(collector),
	)
	analyzer := rules.NewAnalyzer(rules.Config{
		MerchantLookback: cfg.Fraud.MerchantLookback,
		DeviceLookback:   cfg.Fraud.DeviceLookback,
		PatternLookback:  cfg.Fraud.PatternLookback,
		VelocityWindow:   cfg.Fraud.VelocityWindow,
	})
	engine := fraud.NewService(analyzer, ml.NewFeatureExtractor(), classifier)
	engine.SetThresholdPolicy(fraud.NewThresholdPolicy(cfg.Fraud.BaseThreshold, cfg.Fraud.MinThreshold, cfg.Fraud.MaxThreshold))
	engine.SetElevatedRiskProbability(cfg.Fraud.ElevatedRiskProbability)

	// Alerts
	var publisher interface {
		fraudapp.AlertPublisher
		Close() error
	} = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = kafka.NewAlertPublisher(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.FraudAlertsTopic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, log.Named("alerts"))
		log.Info("fraud alerts enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.FraudAlertsTopic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close alert publisher", zap.Error(err))
		}
	}()

	detectFraud := fraudapp.NewDetectFraudUseCase(engine, txService, publisher, collector, log.Named("scoring"), fraudapp.Options{
		AnalysisTimeout:  cfg.Fraud.AnalysisTimeout,
		MaxBatchSize:     cfg.Fraud.MaxBatchSize,
		BatchConcurrency: cfg.Fraud.BatchConcurrency,
		LazyInit:         !cfg.ML.EagerInit,
	})

	if cfg.ML.EagerInit {
		go func() {
			if err := classifier.Initialize(ctx); err != nil {
				log.Error("eager model initialization failed; retry via POST /api/v1/model/initialize", zap.Error(err))
			}
		}()
	}

	handlers := router.Handlers{
		Fraud:       handler.NewFraudHandler(detectFraud, log),
		Model:       handler.NewModelHandler(classifier, log),
		Transaction: handler.NewTransactionHandler(txService, log),
		Health:      handler.NewHealthHandler(classifier, st.checks, version),
	}
	if cfg.Metrics.Enabled {
		handlers.Metrics = collector.Handler()
		handlers.MetricsPath = cfg.Metrics.Path
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.NewRouter(handlers, log.Named("http")),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}

type store struct {
	repo   transaction.Repository
	checks map[string]handler.HealthChecker
	close  func()
}

// openStore connects the configured backend. Remote backends sit behind a
// circuit breaker so an outage fails requests fast.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store, error) {
	breakerSettings := breaker.DefaultSettings("transaction-store-" + cfg.Store.Backend)
	breakerSettings.MinRequests = cfg.Store.BreakerMinRequests
	breakerSettings.FailureRatio = cfg.Store.BreakerFailureRatio
	breakerSettings.OpenTimeout = cfg.Store.BreakerOpenTimeout

	switch cfg.Store.Backend {
	case config.StoreRedis:
		client, err := redis.NewClient(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("connected to redis", zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
		repo := redis.NewTransactionStore(client, cfg.Redis.KeyPrefix)
		return &store{
			repo:   breaker.NewRepository(repo, breakerSettings, log),
			checks: map[string]handler.HealthChecker{"redis": client},
			close:  func() { _ = client.Close() },
		}, nil

	case config.StorePostgres:
		client, err := postgres.NewClient(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.Name,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := client.Migrate(ctx); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("failed to migrate postgres: %w", err)
			}
		}
		log.Info("connected to postgres", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
		repo := postgres.NewTransactionRepository(client)
		return &store{
			repo:   breaker.NewRepository(repo, breakerSettings, log),
			checks: map[string]handler.HealthChecker{"database": client},
			close:  func() { _ = client.Close() },
		}, nil

	default:
		repo := memory.NewTransactionRepository()
		return &store{
			repo:   repo,
			checks: map[string]handler.HealthChecker{"store": repo},
			close:  func() {},
		}, nil
	}
}

func classifierConfig(m config.MLConfig) ml.Config {
	return ml.Config{
		Epochs:          m.Epochs,
		BatchSize:       m.BatchSize,
		LearningRate:    m.LearningRate,
		ValidationSplit: m.ValidationSplit,
		LegitSamples:    m.LegitSamples,
		FraudSamples:    m.FraudSamples,
		Seed:            m.Seed,
		InitTimeout:     m.InitTimeout,
		ModelVersion:    m.ModelVersion,
	}
}
