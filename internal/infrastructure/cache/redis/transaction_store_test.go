package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/domain/transaction"
)

var t0 = time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*TransactionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewClient(Config{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewTransactionStore(client, "test"), mr
}

func newTx(userID uuid.UUID, at time.Time, merchant string) *transaction.Transaction {
	tx := transaction.NewTransaction(userID, decimal.RequireFromString("19.99"), at, merchant, transaction.CategoryShopping)
	tx.DeviceID = "dev-1"
	tx.Location = "Oslo, NO"
	return tx
}

func TestTransactionStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	user := uuid.New()

	later := newTx(user, t0.Add(time.Hour), "later")
	later.ApplyVerdict(true, decimal.RequireFromString("0.87"), "critical", []string{"Unfamiliar merchant"})
	require.NoError(t, store.Create(ctx, later))
	require.NoError(t, store.Create(ctx, newTx(user, t0, "earlier")))

	txs, err := store.ListByUserID(ctx, user)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "earlier", txs[0].Merchant)
	assert.Equal(t, "later", txs[1].Merchant)

	got := txs[1]
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("19.99")))
	assert.True(t, got.Timestamp.Equal(later.Timestamp))
	assert.True(t, got.IsFraud)
	require.NotNil(t, got.FraudProbability)
	assert.Equal(t, "0.87", got.FraudProbability.String())
	assert.Equal(t, []string{"Unfamiliar merchant"}, got.FraudReasons)
	assert.Equal(t, "dev-1", got.DeviceID)
}

func TestTransactionStore_ListUnknownUser(t *testing.T) {
	store, _ := newTestStore(t)

	txs, err := store.ListByUserID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestTransactionStore_CountByUserIDAndTimeRange(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	user := uuid.New()
	for _, offset := range []time.Duration{-25 * time.Hour, -24 * time.Hour, -23 * time.Hour, 0, time.Minute} {
		require.NoError(t, store.Create(ctx, newTx(user, t0.Add(offset), "shop")))
	}

	n, err := store.CountByUserIDAndTimeRange(ctx, user, t0.Add(-24*time.Hour), t0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTransactionStore_DeleteAll(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	a, b := uuid.New(), uuid.New()
	require.NoError(t, store.Create(ctx, newTx(a, t0, "shop")))
	require.NoError(t, store.Create(ctx, newTx(b, t0, "shop")))

	require.NoError(t, store.DeleteAll(ctx))

	for _, user := range []uuid.UUID{a, b} {
		txs, err := store.ListByUserID(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, txs)
	}
	assert.Empty(t, mr.Keys())
}

func TestTransactionStore_ErrorsAreWrapped(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.SetError("LOADING dataset in memory")
	_, err := store.ListByUserID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list transactions")
	assert.Error(t, store.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	host := mr.Host()
	mr.Close()

	_, err = NewClient(Config{Host: host, Port: port, DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, "localhost:6379", Config{Host: "localhost", Port: 6379}.Addr())
	assert.Equal(t, "[::1]:6380", Config{Host: "::1", Port: 6380}.Addr())
}
