package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/domain/transaction"
)

var t0 = time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

func newTx(userID uuid.UUID, at time.Time, merchant string) *transaction.Transaction {
	return transaction.NewTransaction(userID, decimal.NewFromInt(15), at, merchant, transaction.CategoryGroceries)
}

func TestTransactionRepository_ListIsChronological(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	user := uuid.New()

	require.NoError(t, repo.Create(ctx, newTx(user, t0.Add(time.Hour), "second")))
	require.NoError(t, repo.Create(ctx, newTx(user, t0, "first")))
	require.NoError(t, repo.Create(ctx, newTx(user, t0.Add(2*time.Hour), "third")))
	require.NoError(t, repo.Create(ctx, newTx(uuid.New(), t0, "other user")))

	txs, err := repo.ListByUserID(ctx, user)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "first", txs[0].Merchant)
	assert.Equal(t, "second", txs[1].Merchant)
	assert.Equal(t, "third", txs[2].Merchant)
}

func TestTransactionRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	user := uuid.New()
	tx := newTx(user, t0, "shop")
	tx.FraudReasons = []string{"a"}
	require.NoError(t, repo.Create(ctx, tx))

	tx.Merchant = "changed after insert"
	txs, err := repo.ListByUserID(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "shop", txs[0].Merchant)

	txs[0].FraudReasons[0] = "mutated"
	again, err := repo.ListByUserID(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].FraudReasons[0])
}

func TestTransactionRepository_CountByUserIDAndTimeRange(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	user := uuid.New()
	for _, offset := range []time.Duration{-25 * time.Hour, -24 * time.Hour, -23 * time.Hour, -time.Minute, 0, time.Minute} {
		require.NoError(t, repo.Create(ctx, newTx(user, t0.Add(offset), "shop")))
	}

	n, err := repo.CountByUserIDAndTimeRange(ctx, user, t0.Add(-24*time.Hour), t0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTransactionRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	user := uuid.New()
	require.NoError(t, repo.Create(ctx, newTx(user, t0, "shop")))

	require.NoError(t, repo.DeleteAll(ctx))
	txs, err := repo.ListByUserID(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.NoError(t, repo.Ping(ctx))
}

func TestTransactionRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	user := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(ctx, newTx(user, t0.Add(time.Duration(i)*time.Second), "shop"))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.ListByUserID(ctx, user)
		}()
	}
	wg.Wait()

	txs, err := repo.ListByUserID(ctx, user)
	require.NoError(t, err)
	require.Len(t, txs, 50)
	for i := 1; i < len(txs); i++ {
		assert.False(t, txs[i].Timestamp.Before(txs[i-1].Timestamp))
	}
}
