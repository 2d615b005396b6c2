package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fraud-risk-engine/internal/domain/transaction"
)

// TransactionRepository implements transaction.Repository in process memory.
// Reads return copies so callers never share entries with the store.
type TransactionRepository struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID][]*transaction.Transaction
}

// NewTransactionRepository creates an empty in-memory store
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{byUser: make(map[uuid.UUID][]*transaction.Transaction)}
}

// Create stores a new transaction
func (r *TransactionRepository) Create(_ context.Context, tx *transaction.Transaction) error {
	stored := clone(tx)

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.byUser[tx.UserID]
	// keep entries ordered by timestamp; equal timestamps keep insertion order
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].Timestamp.After(stored.Timestamp)
	})
	entries = append(entries, nil)
	copy(entries[i+1:], entries[i:])
	entries[i] = stored
	r.byUser[tx.UserID] = entries
	return nil
}

// ListByUserID returns a user's transactions, oldest first
func (r *TransactionRepository) ListByUserID(_ context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.byUser[userID]
	out := make([]*transaction.Transaction, len(entries))
	for i, tx := range entries {
		out[i] = clone(tx)
	}
	return out, nil
}

// CountByUserIDAndTimeRange counts transactions with start < timestamp <= end
func (r *TransactionRepository) CountByUserIDAndTimeRange(_ context.Context, userID uuid.UUID, start, end time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, tx := range r.byUser[userID] {
		if tx.Timestamp.After(start) && !tx.Timestamp.After(end) {
			n++
		}
	}
	return n, nil
}

// DeleteAll removes every stored transaction
func (r *TransactionRepository) DeleteAll(context.Context) error {
	r.mu.Lock()
	r.byUser = make(map[uuid.UUID][]*transaction.Transaction)
	r.mu.Unlock()
	return nil
}

// Ping always succeeds
func (r *TransactionRepository) Ping(context.Context) error {
	return nil
}

func clone(tx *transaction.Transaction) *transaction.Transaction {
	c := *tx
	if tx.FraudProbability != nil {
		p := *tx.FraudProbability
		c.FraudProbability = &p
	}
	if tx.FraudReasons != nil {
		c.FraudReasons = append([]string(nil), tx.FraudReasons...)
	}
	return &c
}
