package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fraud-risk-engine/internal/domain/transaction"
)

// TransactionModel is the database model for transactions
type TransactionModel struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID        `gorm:"type:uuid;index:idx_transactions_user_time,priority:1;not null"`
	Amount           decimal.Decimal  `gorm:"type:decimal(20,4);not null"`
	OccurredAt       time.Time        `gorm:"index:idx_transactions_user_time,priority:2;not null"`
	TimeOfDay        int              `gorm:"not null"`
	DayOfWeek        int              `gorm:"not null"`
	Merchant         string           `gorm:"type:varchar(255)"`
	Category         string           `gorm:"type:varchar(32);not null"`
	CardID           string           `gorm:"type:varchar(100)"`
	DeviceID         string           `gorm:"type:varchar(100)"`
	Location         string           `gorm:"type:varchar(255)"`
	Velocity         int              `gorm:"not null"`
	FraudProbability *decimal.Decimal `gorm:"type:decimal(5,4)"`
	IsFraud          bool             `gorm:"index;not null"`
	RiskLevel        string           `gorm:"type:varchar(20)"`
	FraudReasons     string           `gorm:"type:jsonb"`
	CreatedAt        time.Time        `gorm:"not null"`
}

// TableName returns the table name for transactions
func (TransactionModel) TableName() string {
	return "transactions"
}

// TransactionRepository implements transaction.Repository
type TransactionRepository struct {
	client *Client
	db     *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(client *Client) *TransactionRepository {
	return &TransactionRepository{client: client, db: client.DB()}
}

// Create stores a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	model, err := transactionToModel(tx)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// ListByUserID retrieves a user's transactions, oldest first
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	var models []TransactionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at ASC").
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	transactions := make([]*transaction.Transaction, len(models))
	for i := range models {
		transactions[i] = modelToTransaction(&models[i])
	}
	return transactions, nil
}

// CountByUserIDAndTimeRange counts transactions with start < occurred_at <= end
func (r *TransactionRepository) CountByUserIDAndTimeRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&TransactionModel{}).
		Where("user_id = ? AND occurred_at > ? AND occurred_at <= ?", userID, start, end).
		Count(&count).Error
	return count, err
}

// DeleteAll removes every stored transaction
func (r *TransactionRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&TransactionModel{}).Error
}

// Ping checks the database connection
func (r *TransactionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func transactionToModel(tx *transaction.Transaction) (*TransactionModel, error) {
	reasons := tx.FraudReasons
	if reasons == nil {
		reasons = []string{}
	}
	encoded, err := json.Marshal(reasons)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fraud reasons: %w", err)
	}

	return &TransactionModel{
		ID:               tx.ID,
		UserID:           tx.UserID,
		Amount:           tx.Amount,
		OccurredAt:       tx.Timestamp,
		TimeOfDay:        tx.TimeOfDay,
		DayOfWeek:        tx.DayOfWeek,
		Merchant:         tx.Merchant,
		Category:         string(tx.Category),
		CardID:           tx.CardID,
		DeviceID:         tx.DeviceID,
		Location:         tx.Location,
		Velocity:         tx.Velocity,
		FraudProbability: tx.FraudProbability,
		IsFraud:          tx.IsFraud,
		RiskLevel:        tx.RiskLevel,
		FraudReasons:     string(encoded),
		CreatedAt:        tx.CreatedAt,
	}, nil
}

func modelToTransaction(m *TransactionModel) *transaction.Transaction {
	var reasons []string
	if m.FraudReasons != "" {
		// a malformed column leaves the reasons empty rather than failing the read
		_ = json.Unmarshal([]byte(m.FraudReasons), &reasons)
	}
	if len(reasons) == 0 {
		reasons = nil
	}

	return &transaction.Transaction{
		ID:               m.ID,
		UserID:           m.UserID,
		Amount:           m.Amount,
		Timestamp:        m.OccurredAt,
		TimeOfDay:        m.TimeOfDay,
		DayOfWeek:        m.DayOfWeek,
		Merchant:         m.Merchant,
		Category:         transaction.Category(m.Category),
		CardID:           m.CardID,
		DeviceID:         m.DeviceID,
		Location:         m.Location,
		Velocity:         m.Velocity,
		FraudProbability: m.FraudProbability,
		IsFraud:          m.IsFraud,
		RiskLevel:        m.RiskLevel,
		FraudReasons:     reasons,
		CreatedAt:        m.CreatedAt,
	}
}
