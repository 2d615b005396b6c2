package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-risk-engine/internal/domain/transaction"
)

type flakyRepo struct {
	err   error
	calls int
}

func (f *flakyRepo) Create(context.Context, *transaction.Transaction) error {
	f.calls++
	return f.err
}

func (f *flakyRepo) ListByUserID(context.Context, uuid.UUID) ([]*transaction.Transaction, error) {
	f.calls++
	return []*transaction.Transaction{}, f.err
}

func (f *flakyRepo) CountByUserIDAndTimeRange(context.Context, uuid.UUID, time.Time, time.Time) (int64, error) {
	f.calls++
	return 3, f.err
}

func (f *flakyRepo) DeleteAll(context.Context) error {
	f.calls++
	return f.err
}

func (f *flakyRepo) Ping(context.Context) error { return f.err }

func testSettings() Settings {
	s := DefaultSettings("test-store")
	s.MinRequests = 3
	s.FailureRatio = 0.5
	s.OpenTimeout = time.Hour
	return s
}

func TestRepository_PassesThrough(t *testing.T) {
	next := &flakyRepo{}
	repo := NewRepository(next, testSettings(), nil)

	n, err := repo.CountByUserIDAndTimeRange(context.Background(), uuid.New(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	txs, err := repo.ListByUserID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Equal(t, gobreaker.StateClosed, repo.State())
}

func TestRepository_OpensAfterFailures(t *testing.T) {
	storeErr := errors.New("connection refused")
	next := &flakyRepo{err: storeErr}
	repo := NewRepository(next, testSettings(), nil)

	for i := 0; i < 3; i++ {
		err := repo.DeleteAll(context.Background())
		assert.ErrorIs(t, err, storeErr)
	}
	assert.Equal(t, gobreaker.StateOpen, repo.State())

	err := repo.Create(context.Background(), &transaction.Transaction{})
	assert.ErrorIs(t, err, transaction.ErrStoreUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls)
}

func TestRepository_CancellationDoesNotTrip(t *testing.T) {
	next := &flakyRepo{err: context.Canceled}
	repo := NewRepository(next, testSettings(), nil)

	for i := 0; i < 5; i++ {
		_, err := repo.ListByUserID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, repo.State())
}
