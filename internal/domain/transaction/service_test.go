package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	created    []*Transaction
	createErr  error
	listed     []*Transaction
	countStart time.Time
	countEnd   time.Time
	deleted    bool
}

func (r *fakeRepo) Create(_ context.Context, tx *Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, tx)
	return nil
}

func (r *fakeRepo) ListByUserID(context.Context, uuid.UUID) ([]*Transaction, error) {
	return r.listed, nil
}

func (r *fakeRepo) CountByUserIDAndTimeRange(_ context.Context, _ uuid.UUID, start, end time.Time) (int64, error) {
	r.countStart, r.countEnd = start, end
	return 7, nil
}

func (r *fakeRepo) DeleteAll(context.Context) error {
	r.deleted = true
	return nil
}

func (r *fakeRepo) Ping(context.Context) error { return nil }

func TestService_RecordTransaction(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	tx := NewTransaction(uuid.New(), decimal.NewFromInt(40), baseTime, "Fuel Stop", CategoryGas)
	tx.CreatedAt = time.Time{}

	require.NoError(t, svc.RecordTransaction(context.Background(), tx))
	require.Len(t, repo.created, 1)
	assert.False(t, tx.CreatedAt.IsZero())
}

func TestService_RecordTransaction_RejectsInvalid(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	tx := NewTransaction(uuid.New(), decimal.Zero, baseTime, "Fuel Stop", CategoryGas)

	assert.ErrorIs(t, svc.RecordTransaction(context.Background(), tx), ErrZeroAmount)
	assert.Empty(t, repo.created)
}

func TestService_RecordTransaction_WrapsStoreError(t *testing.T) {
	storeErr := errors.New("connection reset")
	svc := NewService(&fakeRepo{createErr: storeErr})
	tx := NewTransaction(uuid.New(), decimal.NewFromInt(40), baseTime, "Fuel Stop", CategoryGas)

	err := svc.RecordTransaction(context.Background(), tx)
	assert.ErrorIs(t, err, storeErr)
}

func TestService_History(t *testing.T) {
	repo := &fakeRepo{listed: []*Transaction{txAt(time.Minute, "later"), txAt(0, "earlier")}}
	svc := NewService(repo)

	h, err := svc.History(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "earlier", h.All()[0].Merchant)

	_, err = svc.History(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestService_CountTransactionsInWindow(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	count, err := svc.CountTransactionsInWindow(context.Background(), uuid.New(), baseTime, VelocityWindow)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.Equal(t, baseTime.Add(-24*time.Hour), repo.countStart)
	assert.Equal(t, baseTime, repo.countEnd)
}

func TestService_ClearAll(t *testing.T) {
	repo := &fakeRepo{}
	require.NoError(t, NewService(repo).ClearAll(context.Background()))
	assert.True(t, repo.deleted)
}
