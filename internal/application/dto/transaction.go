package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fraud-risk-engine/internal/domain/fraud"
	"fraud-risk-engine/internal/domain/transaction"
)

// ScoreTransactionRequest is one transaction submitted for scoring
type ScoreTransactionRequest struct {
	TransactionID string     `json:"transaction_id,omitempty" validate:"omitempty,uuid"`
	UserID        string     `json:"user_id" validate:"required,uuid"`
	Amount        string     `json:"amount" validate:"required,numeric"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Merchant      string     `json:"merchant" validate:"required,max=255"`
	Category      string     `json:"category" validate:"required"`

	// Override the values derived from timestamp
	TimeOfDay *int `json:"time_of_day,omitempty" validate:"omitempty,min=0,max=23"`
	DayOfWeek *int `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`

	CardID   string `json:"card_id,omitempty" validate:"max=128"`
	DeviceID string `json:"device_id,omitempty" validate:"max=128"`
	Location string `json:"location,omitempty" validate:"max=255"`
}

// ToTransaction validates the request and builds the domain transaction.
// A missing timestamp means now.
func (r *ScoreTransactionRequest) ToTransaction(now time.Time) (*transaction.Transaction, error) {
	if err := validateStruct(r); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return nil, fraud.NewValidationError("user_id", "must be a UUID")
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, fraud.NewValidationError("amount", "must be a decimal number")
	}
	if !amount.IsPositive() {
		return nil, fraud.NewValidationError("amount", "must be positive")
	}
	category := transaction.Category(r.Category)
	if !category.IsValid() {
		return nil, fraud.NewValidationError("category", "is not a known category")
	}

	ts := now
	if r.Timestamp != nil {
		ts = *r.Timestamp
	}

	tx := transaction.NewTransaction(userID, amount, ts, r.Merchant, category)
	if r.TransactionID != "" {
		id, err := uuid.Parse(r.TransactionID)
		if err != nil {
			return nil, fraud.NewValidationError("transaction_id", "must be a UUID")
		}
		tx.ID = id
	}
	if r.TimeOfDay != nil {
		tx.TimeOfDay = *r.TimeOfDay
	}
	if r.DayOfWeek != nil {
		tx.DayOfWeek = *r.DayOfWeek
	}
	tx.CardID = r.CardID
	tx.DeviceID = r.DeviceID
	tx.Location = r.Location
	return tx, nil
}

// TransactionListResponse lists a user's stored transactions
type TransactionListResponse struct {
	UserID       uuid.UUID                  `json:"user_id"`
	Count        int                        `json:"count"`
	Transactions []*transaction.Transaction `json:"transactions"`
}
