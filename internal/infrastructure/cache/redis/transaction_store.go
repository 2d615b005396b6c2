package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"fraud-risk-engine/internal/domain/transaction"
)

const (
	defaultKeyPrefix = "fraud"
	usersKeySuffix   = "users"
)

// TransactionStore implements transaction.Repository on Redis.
// Each user's history is a sorted set scored by the transaction timestamp in
// unix microseconds, which float64 scores represent exactly. A set of user
// IDs lets DeleteAll find every history key.
type TransactionStore struct {
	client *Client
	prefix string
}

// NewTransactionStore creates a Redis-backed transaction store
func NewTransactionStore(client *Client, prefix string) *TransactionStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &TransactionStore{client: client, prefix: prefix}
}

// transactionRecord is the JSON member stored in the sorted set
type transactionRecord struct {
	ID               uuid.UUID            `json:"id"`
	UserID           uuid.UUID            `json:"user_id"`
	Amount           decimal.Decimal      `json:"amount"`
	Timestamp        time.Time            `json:"timestamp"`
	TimeOfDay        int                  `json:"time_of_day"`
	DayOfWeek        int                  `json:"day_of_week"`
	Merchant         string               `json:"merchant"`
	Category         transaction.Category `json:"category"`
	CardID           string               `json:"card_id,omitempty"`
	DeviceID         string               `json:"device_id,omitempty"`
	Location         string               `json:"location,omitempty"`
	Velocity         int                  `json:"velocity"`
	FraudProbability *decimal.Decimal     `json:"fraud_probability,omitempty"`
	IsFraud          bool                 `json:"is_fraud"`
	RiskLevel        string               `json:"risk_level,omitempty"`
	FraudReasons     []string             `json:"fraud_reasons,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

func (s *TransactionStore) userKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:txn:user:%s", s.prefix, userID.String())
}

func (s *TransactionStore) usersKey() string {
	return s.prefix + ":txn:" + usersKeySuffix
}

func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}

// Create stores a new transaction
func (s *TransactionStore) Create(ctx context.Context, tx *transaction.Transaction) error {
	member, err := json.Marshal(toRecord(tx))
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}

	pipe := s.client.rdb.TxPipeline()
	pipe.ZAdd(ctx, s.userKey(tx.UserID), redis.Z{Score: score(tx.Timestamp), Member: member})
	pipe.SAdd(ctx, s.usersKey(), tx.UserID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// ListByUserID returns a user's transactions, oldest first
func (s *TransactionStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	members, err := s.client.rdb.ZRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]*transaction.Transaction, 0, len(members))
	for _, member := range members {
		var rec transactionRecord
		if err := json.Unmarshal([]byte(member), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		txs = append(txs, rec.toTransaction())
	}
	return txs, nil
}

// CountByUserIDAndTimeRange counts transactions with start < timestamp <= end
func (s *TransactionStore) CountByUserIDAndTimeRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (int64, error) {
	lo := "(" + strconv.FormatInt(start.UnixMicro(), 10)
	hi := strconv.FormatInt(end.UnixMicro(), 10)

	count, err := s.client.rdb.ZCount(ctx, s.userKey(userID), lo, hi).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction count: %w", err)
	}
	return count, nil
}

// DeleteAll removes every user history and the user index
func (s *TransactionStore) DeleteAll(ctx context.Context) error {
	users, err := s.client.rdb.SMembers(ctx, s.usersKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	keys := make([]string, 0, len(users)+1)
	for _, u := range users {
		id, err := uuid.Parse(u)
		if err != nil {
			continue
		}
		keys = append(keys, s.userKey(id))
	}
	keys = append(keys, s.usersKey())

	if err := s.client.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *TransactionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func toRecord(tx *transaction.Transaction) transactionRecord {
	return transactionRecord{
		ID:               tx.ID,
		UserID:           tx.UserID,
		Amount:           tx.Amount,
		Timestamp:        tx.Timestamp,
		TimeOfDay:        tx.TimeOfDay,
		DayOfWeek:        tx.DayOfWeek,
		Merchant:         tx.Merchant,
		Category:         tx.Category,
		CardID:           tx.CardID,
		DeviceID:         tx.DeviceID,
		Location:         tx.Location,
		Velocity:         tx.Velocity,
		FraudProbability: tx.FraudProbability,
		IsFraud:          tx.IsFraud,
		RiskLevel:        tx.RiskLevel,
		FraudReasons:     tx.FraudReasons,
		CreatedAt:        tx.CreatedAt,
	}
}

func (r transactionRecord) toTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		ID:               r.ID,
		UserID:           r.UserID,
		Amount:           r.Amount,
		Timestamp:        r.Timestamp,
		TimeOfDay:        r.TimeOfDay,
		DayOfWeek:        r.DayOfWeek,
		Merchant:         r.Merchant,
		Category:         r.Category,
		CardID:           r.CardID,
		DeviceID:         r.DeviceID,
		Location:         r.Location,
		Velocity:         r.Velocity,
		FraudProbability: r.FraudProbability,
		IsFraud:          r.IsFraud,
		RiskLevel:        r.RiskLevel,
		FraudReasons:     r.FraudReasons,
		CreatedAt:        r.CreatedAt,
	}
}
