package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
)

func validRequest() ScoreTransactionRequest {
	return ScoreTransactionRequest{
		UserID:   uuid.NewString(),
		Amount:   "149.99",
		Merchant: "Corner Grocery",
		Category: string(transaction.CategoryGroceries),
		DeviceID: "device-1",
		Location: "Austin, US",
	}
}

func TestToTransaction(t *testing.T) {
	now := time.Date(2024, 3, 12, 14, 5, 0, 0, time.UTC)
	req := validRequest()

	tx, err := req.ToTransaction(now)
	require.NoError(t, err)
	assert.Equal(t, req.UserID, tx.UserID.String())
	assert.Equal(t, "149.99", tx.Amount.String())
	assert.Equal(t, now, tx.Timestamp)
	assert.Equal(t, 14, tx.TimeOfDay)
	assert.Equal(t, int(time.Tuesday), tx.DayOfWeek)
	assert.Equal(t, "device-1", tx.DeviceID)
	assert.NotEqual(t, uuid.Nil, tx.ID)
}

func TestToTransaction_Overrides(t *testing.T) {
	req := validRequest()
	id := uuid.New()
	ts := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	hour, day := 3, 5
	req.TransactionID = id.String()
	req.Timestamp = &ts
	req.TimeOfDay = &hour
	req.DayOfWeek = &day

	tx, err := req.ToTransaction(time.Now())
	require.NoError(t, err)
	assert.Equal(t, id, tx.ID)
	assert.Equal(t, ts, tx.Timestamp)
	assert.Equal(t, 3, tx.TimeOfDay)
	assert.Equal(t, 5, tx.DayOfWeek)
}

func TestToTransaction_Invalid(t *testing.T) {
	hour := 24

	tests := []struct {
		name   string
		mutate func(*ScoreTransactionRequest)
		field  string
	}{
		{"missing user", func(r *ScoreTransactionRequest) { r.UserID = "" }, "user_id"},
		{"bad user", func(r *ScoreTransactionRequest) { r.UserID = "abc" }, "user_id"},
		{"bad transaction id", func(r *ScoreTransactionRequest) { r.TransactionID = "42" }, "transaction_id"},
		{"missing amount", func(r *ScoreTransactionRequest) { r.Amount = "" }, "amount"},
		{"non numeric amount", func(r *ScoreTransactionRequest) { r.Amount = "ten" }, "amount"},
		{"zero amount", func(r *ScoreTransactionRequest) { r.Amount = "0" }, "amount"},
		{"negative amount", func(r *ScoreTransactionRequest) { r.Amount = "-5.00" }, "amount"},
		{"missing merchant", func(r *ScoreTransactionRequest) { r.Merchant = "" }, "merchant"},
		{"unknown category", func(r *ScoreTransactionRequest) { r.Category = "Weapons" }, "category"},
		{"hour out of range", func(r *ScoreTransactionRequest) { r.TimeOfDay = &hour }, "time_of_day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := req.ToTransaction(time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, fraud.ErrValidation)

			var ve *fraud.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNewModelStatusResponse(t *testing.T) {
	status := NewModelStatusResponse(false, "mlp-1+features.v1", nil)
	assert.False(t, status.Ready)
	assert.Equal(t, fraud.FeatureSchemaVersion, status.FeatureSchema)
	assert.Len(t, status.Features, fraud.FeatureCount)
	assert.Nil(t, status.LastTraining)
}
