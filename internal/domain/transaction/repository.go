package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the contract for transaction persistence.
// The scoring engine only reads from it; callers append scored transactions.
type Repository interface {
	// Create stores a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// ListByUserID retrieves every stored transaction for a user, oldest first
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)

	// CountByUserIDAndTimeRange counts transactions with start < timestamp <= end.
	// Used for the caller-side 24h velocity count.
	CountByUserIDAndTimeRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (int64, error)

	// DeleteAll removes every stored transaction
	DeleteAll(ctx context.Context) error

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}
