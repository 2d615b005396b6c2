package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
)

// FraudAlert is the message published for every flagged transaction
type FraudAlert struct {
	AlertID       uuid.UUID            `json:"alert_id"`
	DecisionID    uuid.UUID            `json:"decision_id"`
	TransactionID uuid.UUID            `json:"transaction_id"`
	UserID        uuid.UUID            `json:"user_id"`
	Amount        string               `json:"amount"`
	Merchant      string               `json:"merchant"`
	Category      transaction.Category `json:"category"`
	Probability   float64              `json:"fraud_probability"`
	Threshold     float64              `json:"threshold"`
	RiskLevel     fraud.RiskLevel      `json:"risk_level"`
	Reasons       []string             `json:"risk_factors"`
	ModelVersion  string               `json:"model_version"`
	OccurredAt    time.Time            `json:"occurred_at"`
	PublishedAt   time.Time            `json:"published_at"`
}

// NewFraudAlert builds the alert payload for a decision
func NewFraudAlert(tx *transaction.Transaction, d *fraud.Decision) FraudAlert {
	return FraudAlert{
		AlertID:       uuid.New(),
		DecisionID:    d.ID,
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Amount:        tx.Amount.StringFixed(2),
		Merchant:      tx.Merchant,
		Category:      tx.Category,
		Probability:   d.Probability,
		Threshold:     d.Threshold,
		RiskLevel:     d.RiskLevel,
		Reasons:       d.Reasons,
		ModelVersion:  d.ModelVersion,
		OccurredAt:    tx.Timestamp,
		PublishedAt:   time.Now().UTC(),
	}
}

// messageWriter is the part of kafkago.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config holds the alert producer settings
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// AlertPublisher writes fraud alerts to a Kafka topic, keyed by user so a
// user's alerts stay ordered within a partition.
type AlertPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewAlertPublisher creates a publisher backed by a kafka-go writer
func NewAlertPublisher(cfg Config, logger *zap.Logger) *AlertPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  5,
		RequiredAcks: kafkago.RequireAll,
	}
	return newAlertPublisher(w, cfg.Topic, logger)
}

func newAlertPublisher(w messageWriter, topic string, logger *zap.Logger) *AlertPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertPublisher{writer: w, topic: topic, logger: logger}
}

// PublishFraudAlert publishes an alert for a flagged decision
func (p *AlertPublisher) PublishFraudAlert(ctx context.Context, tx *transaction.Transaction, d *fraud.Decision) error {
	alert := NewFraudAlert(tx, d)
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode fraud alert: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(tx.UserID.String()),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "model-version", Value: []byte(d.ModelVersion)},
		},
		Time: alert.PublishedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish fraud alert",
			zap.String("topic", p.topic),
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish fraud alert: %w", err)
	}

	p.logger.Debug("fraud alert published",
		zap.String("topic", p.topic),
		zap.String("alert_id", alert.AlertID.String()),
	)
	return nil
}

// Close flushes and closes the underlying writer
func (p *AlertPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops alerts. Used when no brokers are configured.
type NoopPublisher struct{}

// PublishFraudAlert does nothing
func (NoopPublisher) PublishFraudAlert(context.Context, *transaction.Transaction, *fraud.Decision) error {
	return nil
}

// Close does nothing
func (NoopPublisher) Close() error { return nil }
