package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func flagged() (*transaction.Transaction, *fraud.Decision) {
	tx := transaction.NewTransaction(uuid.New(), decimal.NewFromInt(7500),
		time.Date(2024, 3, 12, 2, 30, 0, 0, time.UTC), "Crypto Exchange", transaction.CategoryCryptocurrency)
	d := fraud.NewDecision(tx.ID, tx.UserID)
	d.IsFraud = true
	d.Probability = 0.97
	d.Threshold = 0.5
	d.RiskLevel = fraud.RiskLevelCritical
	d.Reasons = []string{fraud.ReasonHighAmount, fraud.ReasonLateNight}
	d.ModelVersion = "mlp-1+features.v1"
	return tx, d
}

func TestAlertPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := newAlertPublisher(w, "fraud-alerts", nil)
	tx, d := flagged()

	require.NoError(t, p.PublishFraudAlert(context.Background(), tx, d))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, tx.UserID.String(), string(msg.Key))

	var alert FraudAlert
	require.NoError(t, json.Unmarshal(msg.Value, &alert))
	assert.Equal(t, d.ID, alert.DecisionID)
	assert.Equal(t, tx.ID, alert.TransactionID)
	assert.Equal(t, "7500.00", alert.Amount)
	assert.Equal(t, fraud.RiskLevelCritical, alert.RiskLevel)
	assert.Equal(t, d.Reasons, alert.Reasons)
	assert.InDelta(t, 0.97, alert.Probability, 1e-9)
}

func TestAlertPublisher_WriteError(t *testing.T) {
	brokerErr := errors.New("leader not available")
	p := newAlertPublisher(&recordingWriter{err: brokerErr}, "fraud-alerts", nil)
	tx, d := flagged()

	err := p.PublishFraudAlert(context.Background(), tx, d)
	assert.ErrorIs(t, err, brokerErr)
}

func TestAlertPublisher_Close(t *testing.T) {
	w := &recordingWriter{}
	p := newAlertPublisher(w, "fraud-alerts", nil)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	tx, d := flagged()
	var p NoopPublisher
	assert.NoError(t, p.PublishFraudAlert(context.Background(), tx, d))
	assert.NoError(t, p.Close())
}
